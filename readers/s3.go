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
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ReaderError provides structured error information for S3 operations.
type S3ReaderError struct {
	Op  string // Operation that failed (e.g., "parse_locator", "get_object")
	Err error  // Underlying error
}

func (e *S3ReaderError) Error() string {
	return fmt.Sprintf("s3 reader %s: %v", e.Op, e.Err)
}

func (e *S3ReaderError) Unwrap() error {
	return e.Err
}

// S3Options configures access to remote objects.
type S3Options struct {
	Region          string // AWS region; empty uses the SDK default chain
	AccessKeyID     string // Explicit credentials; empty uses the default chain
	SecretAccessKey string
}

// OptionS3 represents a configuration function for S3 access.
type OptionS3 func(*S3Options)

// WithS3Region sets the AWS region.
func WithS3Region(region string) OptionS3 {
	return func(opts *S3Options) { opts.Region = region }
}

// WithS3Credentials injects static credentials, as loaded from dl.cfg.
func WithS3Credentials(accessKeyID, secretAccessKey string) OptionS3 {
	return func(opts *S3Options) {
		opts.AccessKeyID = accessKeyID
		opts.SecretAccessKey = secretAccessKey
	}
}

// ParseS3Locator splits an "s3://bucket/key" locator into bucket and key.
func ParseS3Locator(locator string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(locator, "s3://")
	if trimmed == locator {
		return "", "", &S3ReaderError{Op: "parse_locator", Err: fmt.Errorf("not an s3 locator: %s", locator)}
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &S3ReaderError{Op: "parse_locator", Err: fmt.Errorf("malformed s3 locator: %s", locator)}
	}
	return parts[0], parts[1], nil
}

// newS3Client builds an S3 client from the options.
func newS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		provider := credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(provider))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, &S3ReaderError{Op: "load_config", Err: err}
	}
	return s3.NewFromConfig(cfg), nil
}

// OpenS3Object opens a remote object as a stream. The caller owns the
// returned ReadCloser.
func OpenS3Object(ctx context.Context, locator string, options ...OptionS3) (io.ReadCloser, error) {
	opts := S3Options{}
	for _, option := range options {
		option(&opts)
	}

	bucket, key, err := ParseS3Locator(locator)
	if err != nil {
		return nil, err
	}
	client, err := newS3Client(ctx, opts)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &S3ReaderError{Op: "get_object", Err: err}
	}
	return out.Body, nil
}

// DownloadS3Object copies a remote object to a temporary file and returns
// its path. Formats that need random access (parquet, sas7bdat) go through
// here. The caller removes the file when done.
func DownloadS3Object(ctx context.Context, locator string, options ...OptionS3) (string, error) {
	body, err := OpenS3Object(ctx, locator, options...)
	if err != nil {
		return "", err
	}
	defer body.Close()

	tmp, err := os.CreateTemp("", "i94etl-s3-*")
	if err != nil {
		return "", &S3ReaderError{Op: "create_temp", Err: err}
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", &S3ReaderError{Op: "download", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", &S3ReaderError{Op: "download", Err: err}
	}
	return tmp.Name(), nil
}
