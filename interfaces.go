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

// Package i94etl defines the core record, table, source, and sink abstractions
// shared by every stage of the immigration analytics pipeline.
//
// The transformation engine operates on fully materialized Tables; the reader
// and writer layers stream Records through the DataSource/DataSink interfaces.
package i94etl

import (
	"context"
	"io"
)

// Record represents a single data record in the pipeline.
// Each record is a map from field names to values, supporting heterogeneous data.
type Record map[string]interface{}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an immutable, materialized, row-oriented table.
// Transforms never mutate a Table in place; each produces a new one.
type Table []Record

// DataSource defines the interface for data extraction.
// Implementations stream records from a source (e.g., CSV, Parquet, SAS, S3).
type DataSource interface {
	// Read returns the next record or io.EOF when no more records are available.
	Read(ctx context.Context) (Record, error)
	// Close releases any resources held by the data source.
	Close() error
}

// DataSink defines the interface for data loading.
// Implementations write records to a destination (e.g., Parquet, PostgreSQL).
type DataSink interface {
	// Write outputs a single record to the sink.
	Write(ctx context.Context, record Record) error
	// Flush ensures all buffered data is written to the sink.
	Flush() error
	// Close releases any resources held by the data sink.
	Close() error
}

// Transformer defines the interface for data transformation operations.
// Transformers modify or enrich records as they pass through the pipeline.
type Transformer interface {
	// Transform applies the transformation to a record and returns the result.
	Transform(ctx context.Context, record Record) (Record, error)
}

// TransformFunc is a function adapter for the Transformer interface.
// Allows ordinary functions to be used as Transformers.
type TransformFunc func(ctx context.Context, record Record) (Record, error)

// Transform implements the Transformer interface for TransformFunc.
func (f TransformFunc) Transform(ctx context.Context, record Record) (Record, error) {
	return f(ctx, record)
}

// Filter defines the interface for record filtering.
// Filters determine whether a record should be included in the output.
type Filter interface {
	// ShouldInclude returns true if the record should be included in the output.
	ShouldInclude(ctx context.Context, record Record) (bool, error)
}

// FilterFunc is a function adapter for the Filter interface.
// Allows ordinary functions to be used as Filters.
type FilterFunc func(ctx context.Context, record Record) (bool, error)

// ShouldInclude implements the Filter interface for FilterFunc.
func (f FilterFunc) ShouldInclude(ctx context.Context, record Record) (bool, error) {
	return f(ctx, record)
}

// ErrorStrategy defines how to handle transformation errors in the pipeline.
type ErrorStrategy int

const (
	// FailFast stops processing on the first error encountered.
	FailFast ErrorStrategy = iota
	// SkipErrors continues processing, skipping failed records.
	SkipErrors
	// CollectErrors continues processing, collecting all errors for later inspection.
	CollectErrors
)

// ErrorHandler defines how errors are handled during processing.
// Custom error handlers can be used to log, collect, or transform errors.
type ErrorHandler interface {
	// HandleError processes an error that occurred during transformation.
	// Returning a non-nil error will stop the pipeline; returning nil will continue.
	HandleError(ctx context.Context, record Record, err error) error
}

// ErrorHandlerFunc is a function adapter for the ErrorHandler interface.
// Allows ordinary functions to be used as error handlers.
type ErrorHandlerFunc func(ctx context.Context, record Record, err error) error

// HandleError implements the ErrorHandler interface for ErrorHandlerFunc.
func (f ErrorHandlerFunc) HandleError(ctx context.Context, record Record, err error) error {
	return f(ctx, record, err)
}

// tableSource replays a materialized Table through the DataSource interface.
type tableSource struct {
	rows Table
	pos  int
}

// NewTableSource returns a DataSource that yields the rows of t in order.
func NewTableSource(t Table) DataSource {
	return &tableSource{rows: t}
}

func (s *tableSource) Read(ctx context.Context) (Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	r := s.rows[s.pos]
	s.pos++
	return r, nil
}

func (s *tableSource) Close() error { return nil }

// TableSink accumulates records into a Table. It is the materialization
// point between the streaming reader layer and the batch engine.
type TableSink struct {
	rows Table
}

// NewTableSink returns an empty TableSink.
func NewTableSink() *TableSink { return &TableSink{} }

// Write implements the DataSink interface.
func (s *TableSink) Write(ctx context.Context, record Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.rows = append(s.rows, record)
	return nil
}

// Flush implements the DataSink interface.
func (s *TableSink) Flush() error { return nil }

// Close implements the DataSink interface.
func (s *TableSink) Close() error { return nil }

// Table returns the accumulated rows.
func (s *TableSink) Table() Table { return s.rows }
