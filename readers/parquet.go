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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet/file"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/aurora-data/i94etl"
)

// ParquetReaderError wraps parquet-specific read errors with context about
// the operation.
type ParquetReaderError struct {
	Op  string // Operation that failed (e.g., "read", "load_batch", "open_file")
	Err error  // Underlying error
}

func (e *ParquetReaderError) Error() string {
	return fmt.Sprintf("parquet reader %s: %v", e.Op, e.Err)
}

func (e *ParquetReaderError) Unwrap() error {
	return e.Err
}

// ParquetReader implements DataSource for parquet files.
// Supports optional column projection and safe resource management.
type ParquetReader struct {
	fileHandle      *os.File
	reader          *file.Reader
	arrowReader     *pqarrow.FileReader
	recordReader    pqarrow.RecordReader
	currentBatch    arrow.Record
	currentBatchIdx int
	totalRows       int64
	batchSize       int64
	schema          *arrow.Schema
	stats           ParquetReaderStats
}

// ParquetReaderStats holds statistics about the parquet reader's performance.
type ParquetReaderStats struct {
	RecordsRead     int64
	BatchesRead     int64
	ReadDuration    time.Duration
	LastReadTime    time.Time
	NullValueCounts map[string]int64
}

// ParquetReaderOptions configures the parquet reader.
type ParquetReaderOptions struct {
	BatchSize int64    // rows per Arrow batch
	Columns   []string // optional column projection
}

// ReaderOption represents a configuration function for ParquetReader.
type ReaderOption func(*ParquetReaderOptions)

// WithBatchSize sets the number of rows fetched per Arrow batch.
func WithBatchSize(size int64) ReaderOption {
	return func(opts *ParquetReaderOptions) { opts.BatchSize = size }
}

// WithColumns restricts reading to the named columns.
func WithColumns(columns ...string) ReaderOption {
	return func(opts *ParquetReaderOptions) { opts.Columns = columns }
}

// NewParquetReader opens a parquet file and prepares an Arrow RecordReader.
func NewParquetReader(filename string, options ...ReaderOption) (*ParquetReader, error) {
	opts := &ParquetReaderOptions{BatchSize: 1000}
	for _, option := range options {
		option(opts)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, &ParquetReaderError{Op: "open_file", Err: err}
	}

	parquetReader, err := file.NewParquetReader(f)
	if err != nil {
		f.Close()
		return nil, &ParquetReaderError{Op: "create_reader", Err: err}
	}

	arrowReader, err := pqarrow.NewFileReader(parquetReader, pqarrow.ArrowReadProperties{BatchSize: opts.BatchSize}, memory.NewGoAllocator())
	if err != nil {
		f.Close()
		return nil, &ParquetReaderError{Op: "create_arrow_reader", Err: err}
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		f.Close()
		return nil, &ParquetReaderError{Op: "get_schema", Err: err}
	}

	var colIndices []int
	if len(opts.Columns) > 0 {
		for _, name := range opts.Columns {
			idx := -1
			for i, field := range schema.Fields() {
				if field.Name == name {
					idx = i
					break
				}
			}
			if idx < 0 {
				f.Close()
				return nil, &ParquetReaderError{Op: "column_projection", Err: fmt.Errorf("column %q not found in schema", name)}
			}
			colIndices = append(colIndices, idx)
		}
	}

	recordReader, err := arrowReader.GetRecordReader(context.Background(), colIndices, nil)
	if err != nil {
		f.Close()
		return nil, &ParquetReaderError{Op: "create_record_reader", Err: err}
	}

	return &ParquetReader{
		fileHandle:   f,
		reader:       parquetReader,
		arrowReader:  arrowReader,
		recordReader: recordReader,
		totalRows:    parquetReader.NumRows(),
		batchSize:    opts.BatchSize,
		schema:       schema,
		stats:        ParquetReaderStats{NullValueCounts: make(map[string]int64)},
	}, nil
}

// Read reads the next record from the parquet file, or io.EOF.
func (p *ParquetReader) Read(ctx context.Context) (i94etl.Record, error) {
	startTime := time.Now()
	defer func() {
		p.stats.ReadDuration += time.Since(startTime)
		p.stats.LastReadTime = time.Now()
	}()

	select {
	case <-ctx.Done():
		return nil, &ParquetReaderError{Op: "read", Err: ctx.Err()}
	default:
	}

	if p.currentBatch == nil || p.currentBatchIdx >= int(p.currentBatch.NumRows()) {
		if err := p.loadNextBatch(); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, &ParquetReaderError{Op: "load_batch", Err: err}
		}
	}

	if p.currentBatch.NumRows() == 0 {
		return nil, io.EOF
	}

	result := p.extractRecordFromBatch(p.currentBatch, p.currentBatchIdx)
	p.currentBatchIdx++
	p.stats.RecordsRead++

	return result, nil
}

// Close releases resources and closes the underlying file.
func (p *ParquetReader) Close() error {
	if p.currentBatch != nil {
		p.currentBatch.Release()
		p.currentBatch = nil
	}
	if p.recordReader != nil {
		p.recordReader.Release()
		p.recordReader = nil
	}
	if p.fileHandle != nil {
		return p.fileHandle.Close()
	}
	return nil
}

// Schema returns the Arrow schema of the parquet file.
func (p *ParquetReader) Schema() *arrow.Schema {
	return p.schema
}

// Stats returns statistics about the parquet reader's performance.
func (p *ParquetReader) Stats() ParquetReaderStats {
	return p.stats
}

func (p *ParquetReader) loadNextBatch() error {
	if p.currentBatch != nil {
		p.currentBatch.Release()
		p.currentBatch = nil
	}

	rec, err := p.recordReader.Read()
	if err != nil {
		return err
	}
	if rec == nil || rec.NumRows() == 0 {
		return io.EOF
	}

	rec.Retain()
	p.currentBatch = rec
	p.currentBatchIdx = 0
	p.stats.BatchesRead++
	return nil
}

// extractRecordFromBatch builds a Record from a row in an Arrow batch.
func (p *ParquetReader) extractRecordFromBatch(record arrow.Record, pos int) i94etl.Record {
	res := make(i94etl.Record)
	sch := record.Schema()
	for i := 0; i < int(record.NumCols()); i++ {
		field := sch.Field(i)
		res[field.Name] = p.extractValueFromColumn(record.Column(i), pos, field.Name)
	}
	return res
}

func (p *ParquetReader) extractValueFromColumn(col arrow.Array, rowIdx int, fieldName string) interface{} {
	if col.IsNull(rowIdx) {
		p.stats.NullValueCounts[fieldName]++
		return nil
	}

	switch arr := col.(type) {
	case *array.Boolean:
		return arr.Value(rowIdx)
	case *array.Int32:
		return arr.Value(rowIdx)
	case *array.Int64:
		return arr.Value(rowIdx)
	case *array.Float32:
		return arr.Value(rowIdx)
	case *array.Float64:
		return arr.Value(rowIdx)
	case *array.String:
		return arr.Value(rowIdx)
	case *array.Binary:
		return arr.Value(rowIdx)
	case *array.Timestamp:
		return arr.Value(rowIdx).ToTime(arrow.Microsecond)
	case *array.Date32:
		return arr.Value(rowIdx).ToTime()
	case *array.Date64:
		return arr.Value(rowIdx).ToTime()
	default:
		return fmt.Sprintf("%v", col.GetOneForMarshal(rowIdx))
	}
}
