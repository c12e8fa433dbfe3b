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

// Package engine implements the batch transformation core: scalar codecs,
// the latest-measurement reducer, and case-insensitive entity joins over
// materialized tables.
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Scalar coercion helpers. Source files arrive with mixed dynamic types
// (schema-inferred CSV values, parquet primitives, SAS doubles), so every
// engine entry point coerces through these.

// AsString returns the string form of v. The second return is false for nil.
func AsString(v interface{}) (string, bool) {
	if v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", v), true
}

// AsFloat coerces numeric and numeric-string values to float64.
func AsFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsInt coerces numeric and numeric-string values to int, truncating
// fractional parts the way the source data's double-encoded integers expect.
func AsInt(v interface{}) (int, bool) {
	f, ok := AsFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// AsTime coerces time.Time values and ISO date strings ("2006-01-02", with
// or without a trailing time component) to a UTC date.
func AsTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if len(s) > 10 {
			s = s[:10]
		}
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}
