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

package writers

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/aurora-data/i94etl"
)

// WriteMode controls how an existing dataset directory is treated.
type WriteMode int

const (
	// Overwrite removes the destination directory before writing.
	Overwrite WriteMode = iota
	// Append adds new part files next to whatever is already there.
	Append
)

func (m WriteMode) String() string {
	switch m {
	case Overwrite:
		return "overwrite"
	case Append:
		return "append"
	default:
		return fmt.Sprintf("WriteMode(%d)", int(m))
	}
}

// DatasetError wraps dataset-level write errors with context about the
// operation.
type DatasetError struct {
	Op  string // Operation that failed (e.g., "overwrite", "write_partition")
	Err error  // Underlying error
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("dataset writer %s: %v", e.Op, e.Err)
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}

// DatasetOptions configures a dataset write.
type DatasetOptions struct {
	Mode        WriteMode // Overwrite or Append
	PartitionBy []string  // Partition columns, encoded as Col=value/ directories
	FieldOrder  []string  // Column ordering within part files; inferred when empty
}

// DatasetOption represents a configuration function for DatasetOptions.
type DatasetOption func(*DatasetOptions)

// WithWriteMode sets the write mode. The default is Overwrite.
func WithWriteMode(mode WriteMode) DatasetOption {
	return func(opts *DatasetOptions) { opts.Mode = mode }
}

// WithPartitionBy sets the partition columns. Partition values become
// Col=value directory levels and the columns are dropped from the part
// file payloads.
func WithPartitionBy(columns ...string) DatasetOption {
	return func(opts *DatasetOptions) { opts.PartitionBy = columns }
}

// WithDatasetFieldOrder fixes the column ordering of the written part files.
func WithDatasetFieldOrder(fields []string) DatasetOption {
	return func(opts *DatasetOptions) { opts.FieldOrder = fields }
}

// partitionGroup collects the rows that share one set of partition values.
type partitionGroup struct {
	dir     string
	records []i94etl.Record
}

// WriteDataset materializes a table as a directory of snappy parquet part
// files, optionally split into Hive-style partition subdirectories. An empty
// table still produces the destination directory so downstream consumers see
// a valid, empty dataset.
func WriteDataset(ctx context.Context, table i94etl.Table, dest string, options ...DatasetOption) error {
	opts := DatasetOptions{Mode: Overwrite}
	for _, option := range options {
		option(&opts)
	}

	if opts.Mode == Overwrite {
		if err := os.RemoveAll(dest); err != nil {
			return &DatasetError{Op: "overwrite", Err: err}
		}
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return &DatasetError{Op: "create_directory", Err: err}
	}
	if len(table) == 0 {
		return nil
	}

	groups, err := partitionTable(table, opts.PartitionBy)
	if err != nil {
		return err
	}

	fieldOrder := opts.FieldOrder
	if fieldOrder != nil && len(opts.PartitionBy) > 0 {
		fieldOrder = withoutColumns(fieldOrder, opts.PartitionBy)
	}

	for _, group := range groups {
		select {
		case <-ctx.Done():
			return &DatasetError{Op: "write_partition", Err: ctx.Err()}
		default:
		}
		if err := writePartFile(ctx, group, dest, fieldOrder); err != nil {
			return err
		}
	}
	return nil
}

// partitionTable splits the table into groups keyed by the partition column
// values, preserving first-seen group order. With no partition columns the
// whole table is a single group.
func partitionTable(table i94etl.Table, partitionBy []string) ([]*partitionGroup, error) {
	if len(partitionBy) == 0 {
		return []*partitionGroup{{dir: "", records: table}}, nil
	}

	index := make(map[string]*partitionGroup)
	order := make([]*partitionGroup, 0)
	for _, record := range table {
		dir := ""
		for _, col := range partitionBy {
			value, exists := record[col]
			if !exists {
				return nil, &DatasetError{Op: "partition", Err: fmt.Errorf("record missing partition column %q", col)}
			}
			dir = filepath.Join(dir, col+"="+formatPartitionValue(value))
		}

		group, seen := index[dir]
		if !seen {
			group = &partitionGroup{dir: dir}
			index[dir] = group
			order = append(order, group)
		}

		payload := make(i94etl.Record, len(record))
		for k, v := range record {
			payload[k] = v
		}
		for _, col := range partitionBy {
			delete(payload, col)
		}
		group.records = append(group.records, payload)
	}
	return order, nil
}

// writePartFile writes one group's rows as a single part file.
func writePartFile(ctx context.Context, group *partitionGroup, dest string, fieldOrder []string) error {
	name := fmt.Sprintf("part-%s.snappy.parquet", uuid.NewString())
	path := filepath.Join(dest, group.dir, name)

	writerOpts := []WriterOption{}
	if fieldOrder != nil {
		writerOpts = append(writerOpts, WithFieldOrder(fieldOrder))
	}
	writer, err := NewParquetWriter(path, writerOpts...)
	if err != nil {
		return &DatasetError{Op: "write_partition", Err: err}
	}
	for _, record := range group.records {
		if err := writer.Write(ctx, record); err != nil {
			writer.Close()
			return &DatasetError{Op: "write_partition", Err: err}
		}
	}
	if err := writer.Close(); err != nil {
		return &DatasetError{Op: "write_partition", Err: err}
	}
	return nil
}

// formatPartitionValue renders a partition value as a directory component.
// Integral floats drop their fraction so Year=2016.0 and Year=2016 land in
// the same partition.
func formatPartitionValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "__HIVE_DEFAULT_PARTITION__"
	case string:
		if v == "" {
			return "__HIVE_DEFAULT_PARTITION__"
		}
		return v
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// withoutColumns returns fields minus the named columns, preserving order.
func withoutColumns(fields, drop []string) []string {
	dropped := make(map[string]bool, len(drop))
	for _, d := range drop {
		dropped[d] = true
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !dropped[f] {
			out = append(out, f)
		}
	}
	return out
}
