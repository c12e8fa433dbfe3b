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

// Package loader resolves input locators to materialized tables. A locator
// is either a local path or an s3:// URL; the format is picked from the file
// extension unless set explicitly.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aurora-data/i94etl"
	"github.com/aurora-data/i94etl/readers"
)

// Format identifies the on-disk encoding of an input dataset.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
	FormatSAS     Format = "sas7bdat"
)

// LoaderError wraps loader errors with the locator that failed.
type LoaderError struct {
	Locator string
	Err     error
}

func (e *LoaderError) Error() string {
	return fmt.Sprintf("loader %s: %v", e.Locator, e.Err)
}

func (e *LoaderError) Unwrap() error {
	return e.Err
}

// Options configures how a locator is read.
type Options struct {
	Format      Format // Empty means detect from the file extension
	Delimiter   rune   // CSV delimiter; 0 means comma
	HasHeader   bool   // CSV header row
	InferSchema bool   // CSV numeric/bool type inference
	S3          []readers.OptionS3
}

// Option represents a configuration function for Options.
type Option func(*Options)

// WithFormat forces the input format instead of extension detection.
func WithFormat(format Format) Option {
	return func(opts *Options) { opts.Format = format }
}

// WithDelimiter sets the CSV field delimiter.
func WithDelimiter(delimiter rune) Option {
	return func(opts *Options) { opts.Delimiter = delimiter }
}

// WithHeader marks the first CSV row as a header row.
func WithHeader(hasHeader bool) Option {
	return func(opts *Options) { opts.HasHeader = hasHeader }
}

// WithInferSchema enables CSV value type inference.
func WithInferSchema(infer bool) Option {
	return func(opts *Options) { opts.InferSchema = infer }
}

// WithS3Options passes S3 access options through to remote reads.
func WithS3Options(s3opts ...readers.OptionS3) Option {
	return func(opts *Options) { opts.S3 = s3opts }
}

// DetectFormat picks the format from a locator's file extension.
func DetectFormat(locator string) (Format, error) {
	switch strings.ToLower(filepath.Ext(locator)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".json", ".ndjson":
		return FormatJSON, nil
	case ".parquet":
		return FormatParquet, nil
	case ".sas7bdat":
		return FormatSAS, nil
	default:
		return "", fmt.Errorf("cannot detect format from extension of %q", locator)
	}
}

// Load reads an entire dataset into memory as a Table.
func Load(ctx context.Context, locator string, options ...Option) (i94etl.Table, error) {
	source, cleanup, err := open(ctx, locator, options...)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	table, err := i94etl.Collect(ctx, source, nil, nil)
	if err != nil {
		return nil, &LoaderError{Locator: locator, Err: err}
	}
	return table, nil
}

// CountRows reads through a dataset and returns its row count without
// materializing it. Used as the post-write verification probe.
func CountRows(ctx context.Context, locator string, options ...Option) (int64, error) {
	source, cleanup, err := open(ctx, locator, options...)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	var count int64
	for {
		_, err := source.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return 0, &LoaderError{Locator: locator, Err: err}
		}
		count++
	}
}

// CountDatasetRows sums the rows of every part file under a dataset
// directory, descending into partition subdirectories.
func CountDatasetRows(ctx context.Context, dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(path, ".parquet") {
			return nil
		}
		n, err := CountRows(ctx, path, WithFormat(FormatParquet))
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	if err != nil {
		return 0, &LoaderError{Locator: dir, Err: err}
	}
	return total, nil
}

// open resolves a locator to a DataSource plus a cleanup function that
// closes the source and removes any temporary download.
func open(ctx context.Context, locator string, options ...Option) (i94etl.DataSource, func(), error) {
	opts := Options{HasHeader: true}
	for _, option := range options {
		option(&opts)
	}

	format := opts.Format
	if format == "" {
		detected, err := DetectFormat(locator)
		if err != nil {
			return nil, nil, &LoaderError{Locator: locator, Err: err}
		}
		format = detected
	}

	remote := strings.HasPrefix(locator, "s3://")
	path := locator
	var tempFile string

	switch format {
	case FormatCSV, FormatJSON:
		// Row-oriented formats stream straight from the object body.
		if remote {
			body, err := readers.OpenS3Object(ctx, locator, opts.S3...)
			if err != nil {
				return nil, nil, &LoaderError{Locator: locator, Err: err}
			}
			return newStreamSource(format, body, opts, locator)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, &LoaderError{Locator: locator, Err: err}
		}
		return newStreamSource(format, f, opts, locator)

	case FormatParquet, FormatSAS:
		// Columnar and paged formats need random access; remote objects are
		// staged to a temp file first.
		if remote {
			downloaded, err := readers.DownloadS3Object(ctx, locator, opts.S3...)
			if err != nil {
				return nil, nil, &LoaderError{Locator: locator, Err: err}
			}
			path = downloaded
			tempFile = downloaded
		}

		var source i94etl.DataSource
		var err error
		if format == FormatParquet {
			source, err = readers.NewParquetReader(path)
		} else {
			source, err = readers.NewSASReader(path)
		}
		if err != nil {
			if tempFile != "" {
				os.Remove(tempFile)
			}
			return nil, nil, &LoaderError{Locator: locator, Err: err}
		}
		cleanup := func() {
			source.Close()
			if tempFile != "" {
				os.Remove(tempFile)
			}
		}
		return source, cleanup, nil

	default:
		return nil, nil, &LoaderError{Locator: locator, Err: fmt.Errorf("unsupported format %q", format)}
	}
}

func newStreamSource(format Format, body io.ReadCloser, opts Options, locator string) (i94etl.DataSource, func(), error) {
	if format == FormatJSON {
		source := readers.NewJSONReader(body)
		return source, func() { source.Close() }, nil
	}

	csvOpts := []readers.ReaderOptionCSV{
		readers.WithCSVHasHeaders(opts.HasHeader),
		readers.WithCSVInferSchema(opts.InferSchema),
	}
	if opts.Delimiter != 0 {
		csvOpts = append(csvOpts, readers.WithCSVComma(opts.Delimiter))
	}
	source, err := readers.NewCSVReader(body, csvOpts...)
	if err != nil {
		body.Close()
		return nil, nil, &LoaderError{Locator: locator, Err: err}
	}
	return source, func() { source.Close() }, nil
}
