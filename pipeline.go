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

package i94etl

import (
	"context"
	"fmt"
	"io"
)

// PipelineBuilder provides a fluent API for constructing transformation pipelines.
// Use NewPipeline() to create a new builder, then chain From, Transform, Filter,
// To, and configuration methods.
type PipelineBuilder struct {
	pipeline *Pipeline
}

// NewPipeline creates a new PipelineBuilder for constructing a pipeline.
func NewPipeline() *PipelineBuilder {
	return &PipelineBuilder{
		pipeline: &Pipeline{
			transformers: make([]Transformer, 0),
			filters:      make([]Filter, 0),
			strategy:     FailFast,
		},
	}
}

// From sets the DataSource for the pipeline.
func (pb *PipelineBuilder) From(source DataSource) *PipelineBuilder {
	pb.pipeline.source = source
	return pb
}

// Transform adds a Transformer to the pipeline.
func (pb *PipelineBuilder) Transform(transformer Transformer) *PipelineBuilder {
	pb.pipeline.transformers = append(pb.pipeline.transformers, transformer)
	return pb
}

// Filter adds a Filter to the pipeline.
func (pb *PipelineBuilder) Filter(filter Filter) *PipelineBuilder {
	pb.pipeline.filters = append(pb.pipeline.filters, filter)
	return pb
}

// Map adds a mapping transformation to the pipeline using a function.
func (pb *PipelineBuilder) Map(fn func(ctx context.Context, record Record) (Record, error)) *PipelineBuilder {
	return pb.Transform(TransformFunc(fn))
}

// Where adds a filtering condition to the pipeline using a function.
func (pb *PipelineBuilder) Where(fn func(ctx context.Context, record Record) (bool, error)) *PipelineBuilder {
	return pb.Filter(FilterFunc(fn))
}

// To sets the DataSink for the pipeline.
func (pb *PipelineBuilder) To(sink DataSink) *PipelineBuilder {
	pb.pipeline.sink = sink
	return pb
}

// WithErrorStrategy sets the error handling strategy for the pipeline.
func (pb *PipelineBuilder) WithErrorStrategy(strategy ErrorStrategy) *PipelineBuilder {
	pb.pipeline.strategy = strategy
	return pb
}

// WithErrorHandler sets a custom error handler for the pipeline.
func (pb *PipelineBuilder) WithErrorHandler(handler ErrorHandler) *PipelineBuilder {
	pb.pipeline.errorHandler = handler
	return pb
}

// Build validates and constructs the Pipeline from the builder.
func (pb *PipelineBuilder) Build() (*Pipeline, error) {
	if pb.pipeline.source == nil {
		return nil, fmt.Errorf("pipeline requires a data source")
	}
	if pb.pipeline.sink == nil {
		return nil, fmt.Errorf("pipeline requires a data sink")
	}
	return pb.pipeline, nil
}

// Pipeline represents a data processing pipeline for streaming operations.
//
// Use Execute to process all records from the DataSource through
// transformations and filters, writing to the DataSink.
type Pipeline struct {
	transformers []Transformer
	filters      []Filter
	source       DataSource
	sink         DataSink
	strategy     ErrorStrategy
	errorHandler ErrorHandler
}

// Execute runs the pipeline, processing all records from source to sink.
//
// The pipeline reads records from the DataSource, applies transformations and
// filters, and writes to the DataSink. Error handling is governed by the
// configured ErrorStrategy and ErrorHandler.
func (p *Pipeline) Execute(ctx context.Context) error {
	defer func() {
		if p.source != nil {
			p.source.Close()
		}
		if p.sink != nil {
			p.sink.Flush()
			p.sink.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		record, err := p.source.Read(ctx)

		if err == io.EOF {
			break
		}
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}

		// Skip empty records early
		if len(record) == 0 {
			continue
		}

		transformedRecord, err := p.applyTransformations(ctx, record)
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}

		if len(transformedRecord) == 0 {
			continue
		}

		shouldInclude, err := p.applyFilters(ctx, transformedRecord)
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}
		if !shouldInclude {
			continue
		}

		if err := p.sink.Write(ctx, transformedRecord); err != nil {
			if err := p.handleError(ctx, transformedRecord, err); err != nil {
				return err
			}
		}
	}

	return nil
}

// Collect materializes a DataSource into a Table, applying the given
// transformers and filters in order. The source is closed on return.
//
// This is the entry point used by the batch engine: every dataset is read
// once, materialized, and from then on shared as an immutable Table.
func Collect(ctx context.Context, source DataSource, transformers []Transformer, filters []Filter) (Table, error) {
	sink := NewTableSink()
	builder := NewPipeline().From(source).To(sink)
	for _, t := range transformers {
		builder.Transform(t)
	}
	for _, f := range filters {
		builder.Filter(f)
	}
	pipeline, err := builder.Build()
	if err != nil {
		return nil, err
	}
	if err := pipeline.Execute(ctx); err != nil {
		return nil, err
	}
	return sink.Table(), nil
}

// applyFilters applies all configured filters to a record.
func (p *Pipeline) applyFilters(ctx context.Context, record Record) (bool, error) {
	for _, filter := range p.filters {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return false, err
		}
		if !include {
			return false, nil
		}
	}
	return true, nil
}

// applyTransformations applies all configured transformers to a record in sequence.
func (p *Pipeline) applyTransformations(ctx context.Context, record Record) (Record, error) {
	current := record
	for _, transformer := range p.transformers {
		transformed, err := transformer.Transform(ctx, current)
		if err != nil {
			return nil, err
		}
		current = transformed
	}
	return current, nil
}

// handleError handles errors according to the pipeline's error strategy and handler.
func (p *Pipeline) handleError(ctx context.Context, record Record, err error) error {
	switch p.strategy {
	case FailFast:
		return err
	case SkipErrors, CollectErrors:
		if p.errorHandler != nil {
			return p.errorHandler.HandleError(ctx, record, err)
		}
		return nil
	default:
		return err
	}
}
