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
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3UploaderError wraps S3 upload errors with context about the operation.
type S3UploaderError struct {
	Op  string // Operation that failed (e.g., "delete_prefix", "put_object")
	Err error  // Underlying error
}

func (e *S3UploaderError) Error() string {
	return fmt.Sprintf("s3 uploader %s: %v", e.Op, e.Err)
}

func (e *S3UploaderError) Unwrap() error {
	return e.Err
}

// S3Uploader pushes locally written dataset directories to S3. Datasets are
// always written to local disk first; this mirrors the finished directory
// under the remote prefix.
type S3Uploader struct {
	client *s3.Client
}

// S3UploaderOptions configures S3 access for uploads.
type S3UploaderOptions struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Uploader builds an uploader using static credentials when provided,
// otherwise the SDK default chain.
func NewS3Uploader(ctx context.Context, opts S3UploaderOptions) (*S3Uploader, error) {
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
		return nil, &S3UploaderError{Op: "load_config", Err: err}
	}
	return &S3Uploader{client: s3.NewFromConfig(cfg)}, nil
}

// SyncDir uploads every file under localDir to the "s3://bucket/prefix"
// locator, preserving relative paths. Overwrite mode deletes the remote
// prefix first so the upload replaces the previous run; Append leaves
// existing objects in place.
func (u *S3Uploader) SyncDir(ctx context.Context, localDir, locator string, mode WriteMode) error {
	bucket, prefix, err := parseS3Locator(locator)
	if err != nil {
		return err
	}

	if mode == Overwrite {
		if err := u.deletePrefix(ctx, bucket, prefix); err != nil {
			return err
		}
	}

	return filepath.WalkDir(localDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(localDir, path)
		if err != nil {
			return &S3UploaderError{Op: "put_object", Err: err}
		}
		key := prefix + "/" + filepath.ToSlash(rel)

		f, err := os.Open(path)
		if err != nil {
			return &S3UploaderError{Op: "put_object", Err: err}
		}
		defer f.Close()

		_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   f,
		})
		if err != nil {
			return &S3UploaderError{Op: "put_object", Err: err}
		}
		return nil
	})
}

// deletePrefix removes every object under the prefix.
func (u *S3Uploader) deletePrefix(ctx context.Context, bucket, prefix string) error {
	paginator := s3.NewListObjectsV2Paginator(u.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return &S3UploaderError{Op: "delete_prefix", Err: err}
		}
		if len(page.Contents) == 0 {
			continue
		}
		objects := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}
		_, err = u.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: objects},
		})
		if err != nil {
			return &S3UploaderError{Op: "delete_prefix", Err: err}
		}
	}
	return nil
}

// parseS3Locator splits an "s3://bucket/prefix" locator.
func parseS3Locator(locator string) (bucket, prefix string, err error) {
	trimmed := strings.TrimPrefix(locator, "s3://")
	if trimmed == locator {
		return "", "", &S3UploaderError{Op: "parse_locator", Err: fmt.Errorf("not an s3 locator: %s", locator)}
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &S3UploaderError{Op: "parse_locator", Err: fmt.Errorf("malformed s3 locator: %s", locator)}
	}
	return parts[0], strings.TrimSuffix(parts[1], "/"), nil
}
