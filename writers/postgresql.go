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
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/aurora-data/i94etl"
)

// PostgresMirrorError wraps PostgreSQL mirror errors with context about the
// operation.
type PostgresMirrorError struct {
	Op  string // Operation that failed (e.g., "connect", "mirror_table")
	Err error  // Underlying error
}

func (e *PostgresMirrorError) Error() string {
	return fmt.Sprintf("postgres mirror %s: %v", e.Op, e.Err)
}

func (e *PostgresMirrorError) Unwrap() error {
	return e.Err
}

// PostgresMirrorOptions configures the PostgreSQL mirror.
type PostgresMirrorOptions struct {
	DSN          string        // PostgreSQL connection string
	BatchSize    int           // Rows per transaction
	QueryTimeout time.Duration // Per-statement timeout
}

// PostgresMirrorOption represents a configuration function for
// PostgresMirrorOptions.
type PostgresMirrorOption func(*PostgresMirrorOptions)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) PostgresMirrorOption {
	return func(opts *PostgresMirrorOptions) { opts.DSN = dsn }
}

// WithPostgresBatchSize sets the number of rows committed per transaction.
func WithPostgresBatchSize(size int) PostgresMirrorOption {
	return func(opts *PostgresMirrorOptions) { opts.BatchSize = size }
}

// WithPostgresQueryTimeout sets the per-statement timeout.
func WithPostgresQueryTimeout(timeout time.Duration) PostgresMirrorOption {
	return func(opts *PostgresMirrorOptions) { opts.QueryTimeout = timeout }
}

// PostgresMirror copies finished output tables into PostgreSQL so they can
// be inspected with plain SQL alongside the parquet datasets. It is an
// optional second destination; the parquet datasets remain authoritative.
type PostgresMirror struct {
	db      *sql.DB
	options PostgresMirrorOptions
}

// NewPostgresMirror opens a connection to PostgreSQL and verifies it.
func NewPostgresMirror(options ...PostgresMirrorOption) (*PostgresMirror, error) {
	opts := PostgresMirrorOptions{
		BatchSize:    1000,
		QueryTimeout: 30 * time.Second,
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.DSN == "" {
		return nil, &PostgresMirrorError{Op: "validate", Err: fmt.Errorf("dsn is required")}
	}

	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, &PostgresMirrorError{Op: "connect", Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.QueryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &PostgresMirrorError{Op: "connect", Err: err}
	}

	return &PostgresMirror{db: db, options: opts}, nil
}

// Close releases the database connection.
func (m *PostgresMirror) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// MirrorTable writes a table into PostgreSQL. Overwrite truncates the target
// first; Append inserts on top of existing rows. The target table is created
// from the first record if it does not exist.
func (m *PostgresMirror) MirrorTable(ctx context.Context, name string, table i94etl.Table, mode WriteMode, fieldOrder []string) error {
	if len(table) == 0 {
		return nil
	}

	columns := fieldOrder
	if columns == nil {
		columns = make([]string, 0, len(table[0]))
		for col := range table[0] {
			columns = append(columns, col)
		}
		sort.Strings(columns)
	}

	if err := m.createTable(ctx, name, columns, table[0]); err != nil {
		return &PostgresMirrorError{Op: "create_table", Err: err}
	}
	if mode == Overwrite {
		if _, err := m.db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", quoteIdent(name))); err != nil {
			return &PostgresMirrorError{Op: "truncate_table", Err: err}
		}
	}
	if err := m.insertRows(ctx, name, columns, table); err != nil {
		return &PostgresMirrorError{Op: "mirror_table", Err: err}
	}
	return nil
}

func (m *PostgresMirror) createTable(ctx context.Context, name string, columns []string, first i94etl.Record) error {
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		defs = append(defs, fmt.Sprintf("%s %s", quoteIdent(col), inferSQLType(first[col])))
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	_, err := m.db.ExecContext(ctx, query)
	return err
}

func (m *PostgresMirror) insertRows(ctx context.Context, name string, columns []string, table i94etl.Table) error {
	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, col := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		quoted[i] = quoteIdent(col)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	for start := 0; start < len(table); start += m.options.BatchSize {
		end := start + m.options.BatchSize
		if end > len(table) {
			end = len(table)
		}

		tx, err := m.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("prepare insert: %w", err)
		}

		for _, record := range table[start:end] {
			values := make([]interface{}, len(columns))
			for i, col := range columns {
				values[i] = convertSQLValue(record[col])
			}
			if _, err := stmt.ExecContext(ctx, values...); err != nil {
				stmt.Close()
				tx.Rollback()
				return fmt.Errorf("execute insert: %w", err)
			}
		}

		stmt.Close()
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}

// inferSQLType infers a PostgreSQL column type from a Go value.
func inferSQLType(value interface{}) string {
	switch value.(type) {
	case bool:
		return "BOOLEAN"
	case int, int32, int64:
		return "BIGINT"
	case float32, float64:
		return "DOUBLE PRECISION"
	case time.Time:
		return "DATE"
	case []byte:
		return "BYTEA"
	default:
		return "TEXT"
	}
}

// convertSQLValue converts pipeline values to driver-compatible types.
func convertSQLValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil, bool, int64, float64, string, time.Time, []byte:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
