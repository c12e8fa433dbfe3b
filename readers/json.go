//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2026 Dana Whitfield dana.whitfield@auroradata.io
//
// This file is part of i94etl.
//
// i94etl is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// i94etl is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with i94etl. If not, see https://www.gnu.org/licenses/.

package readers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aurora-data/i94etl"
)

// JSONReader implements DataSource for newline-delimited JSON input.
type JSONReader struct {
	decoder *json.Decoder
	closer  io.Closer
}

// NewJSONReader creates a reader over a stream of JSON objects.
func NewJSONReader(r io.ReadCloser) *JSONReader {
	return &JSONReader{
		decoder: json.NewDecoder(r),
		closer:  r,
	}
}

// Read implements the DataSource interface.
func (j *JSONReader) Read(ctx context.Context) (i94etl.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var record i94etl.Record
	if err := j.decoder.Decode(&record); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("json reader decode: %w", err)
	}
	return record, nil
}

// Close implements the DataSource interface.
func (j *JSONReader) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
