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

// Package writers provides DataSink implementations for the pipeline's
// output tables: a single-file parquet sink, the partition-directory dataset
// writer built on it, and a PostgreSQL mirror sink.
package writers

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/aurora-data/i94etl"
)

// ParquetWriterError wraps parquet-specific write errors with context about
// the operation.
type ParquetWriterError struct {
	Op  string // Operation that failed (e.g., "write", "schema", "open_file")
	Err error  // Underlying error
}

func (e *ParquetWriterError) Error() string {
	return fmt.Sprintf("parquet writer %s: %v", e.Op, e.Err)
}

func (e *ParquetWriterError) Unwrap() error {
	return e.Err
}

// ParquetWriterOptions configures the parquet writer.
type ParquetWriterOptions struct {
	BatchSize   int64                // Records buffered before writing a row group
	Compression compress.Compression // Compression codec
	FieldOrder  []string             // Explicit column ordering; inferred when empty
}

// WriterOption represents a configuration function for ParquetWriterOptions.
type WriterOption func(*ParquetWriterOptions)

// WithBatchSize sets the number of records to buffer before writing a batch.
func WithBatchSize(size int64) WriterOption {
	return func(opts *ParquetWriterOptions) { opts.BatchSize = size }
}

// WithCompression sets the parquet compression codec.
func WithCompression(compression compress.Compression) WriterOption {
	return func(opts *ParquetWriterOptions) { opts.Compression = compression }
}

// WithFieldOrder sets the explicit column ordering for the parquet schema.
func WithFieldOrder(fields []string) WriterOption {
	return func(opts *ParquetWriterOptions) {
		opts.FieldOrder = make([]string, len(fields))
		copy(opts.FieldOrder, fields)
	}
}

// WriterStats holds statistics about the parquet writer's performance.
type WriterStats struct {
	RecordsWritten  int64
	BatchesWritten  int64
	FlushDuration   time.Duration
	LastFlushTime   time.Time
	NullValueCounts map[string]int64
}

// ParquetWriter implements DataSink for a single parquet file.
// The Arrow schema is inferred from the first buffered batch unless a field
// order is established beforehand.
type ParquetWriter struct {
	file         *os.File
	writer       *pqarrow.FileWriter
	schema       *arrow.Schema
	fieldOrder   []string
	builders     []array.Builder
	allocator    memory.Allocator
	recordBuffer []i94etl.Record
	batchSize    int64
	closed       bool
	stats        WriterStats
	opts         ParquetWriterOptions
}

// NewParquetWriter creates a parquet writer for a file, creating parent
// directories as needed.
func NewParquetWriter(filename string, options ...WriterOption) (*ParquetWriter, error) {
	opts := ParquetWriterOptions{
		BatchSize:   1000,
		Compression: compress.Codecs.Snappy,
	}
	for _, option := range options {
		option(&opts)
	}

	dir := filepath.Dir(filename)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &ParquetWriterError{Op: "create_directory", Err: err}
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, &ParquetWriterError{Op: "open_file", Err: err}
	}

	return &ParquetWriter{
		file:         file,
		fieldOrder:   opts.FieldOrder,
		allocator:    memory.NewGoAllocator(),
		recordBuffer: make([]i94etl.Record, 0, opts.BatchSize),
		batchSize:    opts.BatchSize,
		stats:        WriterStats{NullValueCounts: make(map[string]int64)},
		opts:         opts,
	}, nil
}

// Stats returns the current statistics of the parquet writer.
func (p *ParquetWriter) Stats() WriterStats {
	return p.stats
}

// Write implements the DataSink interface. Buffers records and writes in
// batches.
func (p *ParquetWriter) Write(ctx context.Context, record i94etl.Record) error {
	if p.closed {
		return &ParquetWriterError{Op: "write", Err: fmt.Errorf("parquet writer is closed")}
	}

	p.recordBuffer = append(p.recordBuffer, record)
	p.stats.RecordsWritten++

	if int64(len(p.recordBuffer)) >= p.batchSize {
		return p.flushBatch()
	}
	return nil
}

// Flush implements the DataSink interface.
func (p *ParquetWriter) Flush() error {
	if len(p.recordBuffer) > 0 {
		return p.flushBatch()
	}
	return nil
}

// Close implements the DataSink interface, flushing remaining records.
func (p *ParquetWriter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	if len(p.recordBuffer) > 0 {
		if err := p.flushBatch(); err != nil {
			return err
		}
	}

	for _, builder := range p.builders {
		if builder != nil {
			builder.Release()
		}
	}
	p.builders = nil

	if p.writer != nil {
		if err := p.writer.Close(); err != nil {
			return &ParquetWriterError{Op: "close_writer", Err: err}
		}
		p.writer = nil
		p.file = nil
		return nil
	}

	// Nothing was ever written; close the bare file handle.
	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		if err != nil {
			return &ParquetWriterError{Op: "close_file", Err: err}
		}
	}
	return nil
}

// initializeSchema creates the Arrow schema from the first buffered batch.
// Column types come from the first non-nil value across the batch, so a
// leading null does not force a column to string.
func (p *ParquetWriter) initializeSchema(records []i94etl.Record) error {
	fieldNames := p.fieldOrder
	if fieldNames == nil {
		fieldNames = make([]string, 0, len(records[0]))
		for name := range records[0] {
			fieldNames = append(fieldNames, name)
		}
		sort.Strings(fieldNames)
		p.fieldOrder = fieldNames
	}

	fields := make([]arrow.Field, 0, len(fieldNames))
	for _, name := range fieldNames {
		dataType, err := inferArrowType(firstNonNil(records, name))
		if err != nil {
			return &ParquetWriterError{Op: "schema", Err: fmt.Errorf("field %s: %w", name, err)}
		}
		fields = append(fields, arrow.Field{Name: name, Type: dataType, Nullable: true})
	}

	p.schema = arrow.NewSchema(fields, nil)

	props := parquet.NewWriterProperties(parquet.WithCompression(p.opts.Compression))
	writer, err := pqarrow.NewFileWriter(p.schema, p.file, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return &ParquetWriterError{Op: "create_writer", Err: err}
	}
	p.writer = writer

	p.builders = make([]array.Builder, len(fields))
	for i, field := range fields {
		p.builders[i] = array.NewBuilder(p.allocator, field.Type)
	}
	return nil
}

// firstNonNil returns the first non-nil value of the named column within
// the batch, or nil when the column is entirely null.
func firstNonNil(records []i94etl.Record, name string) interface{} {
	for _, record := range records {
		if value := record[name]; value != nil {
			return value
		}
	}
	return nil
}

// inferArrowType infers the Arrow data type from a Go value. Nil values
// default to string; every column is nullable.
func inferArrowType(value interface{}) (arrow.DataType, error) {
	switch value.(type) {
	case nil:
		return arrow.BinaryTypes.String, nil
	case bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case int, int32, int64:
		return arrow.PrimitiveTypes.Int64, nil
	case float32, float64:
		return arrow.PrimitiveTypes.Float64, nil
	case string:
		return arrow.BinaryTypes.String, nil
	case time.Time:
		return arrow.FixedWidthTypes.Date32, nil
	case []byte:
		return arrow.BinaryTypes.Binary, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}

// flushBatch writes the current buffer as one Arrow record batch.
func (p *ParquetWriter) flushBatch() error {
	if len(p.recordBuffer) == 0 {
		return nil
	}
	startTime := time.Now()

	if p.schema == nil {
		if err := p.initializeSchema(p.recordBuffer); err != nil {
			return err
		}
	}

	rec, err := p.createArrowRecord(p.recordBuffer)
	if err != nil {
		return err
	}
	defer rec.Release()

	if err := p.writer.Write(rec); err != nil {
		return &ParquetWriterError{Op: "write_batch", Err: err}
	}

	p.stats.BatchesWritten++
	p.stats.FlushDuration += time.Since(startTime)
	p.stats.LastFlushTime = time.Now()
	p.recordBuffer = p.recordBuffer[:0]
	return nil
}

// createArrowRecord converts buffered records to an Arrow record batch.
func (p *ParquetWriter) createArrowRecord(records []i94etl.Record) (arrow.Record, error) {
	for _, record := range records {
		for i, fieldName := range p.fieldOrder {
			value, exists := record[fieldName]
			if !exists || value == nil {
				p.builders[i].AppendNull()
				p.stats.NullValueCounts[fieldName]++
				continue
			}
			if err := appendValueToBuilder(p.builders[i], value); err != nil {
				return nil, &ParquetWriterError{Op: "append_value", Err: fmt.Errorf("field %s: %w", fieldName, err)}
			}
		}
	}

	arrays := make([]arrow.Array, len(p.builders))
	for i, builder := range p.builders {
		arrays[i] = builder.NewArray()
		defer arrays[i].Release()
	}
	return array.NewRecord(p.schema, arrays, int64(len(records))), nil
}

// appendValueToBuilder appends a value to the matching Arrow array builder,
// coercing compatible primitive widths.
func appendValueToBuilder(builder array.Builder, value interface{}) error {
	switch b := builder.(type) {
	case *array.BooleanBuilder:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		b.Append(v)
	case *array.Int64Builder:
		switch v := value.(type) {
		case int:
			b.Append(int64(v))
		case int32:
			b.Append(int64(v))
		case int64:
			b.Append(v)
		case float64:
			if v != math.Trunc(v) {
				return fmt.Errorf("non-integral value %v for int64 column", v)
			}
			b.Append(int64(v))
		default:
			return fmt.Errorf("expected integer, got %T", value)
		}
	case *array.Float64Builder:
		switch v := value.(type) {
		case float32:
			b.Append(float64(v))
		case float64:
			b.Append(v)
		case int:
			b.Append(float64(v))
		case int64:
			b.Append(float64(v))
		default:
			return fmt.Errorf("expected float, got %T", value)
		}
	case *array.StringBuilder:
		switch v := value.(type) {
		case string:
			b.Append(v)
		default:
			b.Append(fmt.Sprintf("%v", v))
		}
	case *array.Date32Builder:
		v, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", value)
		}
		b.Append(arrow.Date32FromTime(v))
	case *array.BinaryBuilder:
		v, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("expected []byte, got %T", value)
		}
		b.Append(v)
	default:
		return fmt.Errorf("unsupported builder type %T", builder)
	}
	return nil
}
