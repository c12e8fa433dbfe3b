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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectAppliesTransformsAndFilters(t *testing.T) {
	source := NewTableSource(Table{
		{"n": 1}, {"n": 2}, {"n": 3},
	})

	double := TransformFunc(func(ctx context.Context, r Record) (Record, error) {
		out := r.Clone()
		out["n"] = r["n"].(int) * 2
		return out, nil
	})
	even := FilterFunc(func(ctx context.Context, r Record) (bool, error) {
		return r["n"].(int) > 2, nil
	})

	got, err := Collect(context.Background(), source, []Transformer{double}, []Filter{even})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 4, got[0]["n"])
	assert.Equal(t, 6, got[1]["n"])
}

func TestCollectEmptySource(t *testing.T) {
	got, err := Collect(context.Background(), NewTableSource(Table{}), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCollectFailFastOnTransformError(t *testing.T) {
	source := NewTableSource(Table{{"n": 1}})
	boom := TransformFunc(func(ctx context.Context, r Record) (Record, error) {
		return nil, errors.New("boom")
	})

	_, err := Collect(context.Background(), source, []Transformer{boom}, nil)
	assert.EqualError(t, err, "boom")
}

func TestPipelineBuilderValidation(t *testing.T) {
	_, err := NewPipeline().To(NewTableSink()).Build()
	assert.Error(t, err)

	_, err = NewPipeline().From(NewTableSource(nil)).Build()
	assert.Error(t, err)
}

func TestPipelineSkipErrorsStrategy(t *testing.T) {
	source := NewTableSource(Table{{"n": 1}, {"n": 2}, {"n": 3}})
	sink := NewTableSink()

	flaky := TransformFunc(func(ctx context.Context, r Record) (Record, error) {
		if r["n"].(int) == 2 {
			return nil, errors.New("bad row")
		}
		return r, nil
	})

	pipeline, err := NewPipeline().
		From(source).
		Transform(flaky).
		To(sink).
		WithErrorStrategy(SkipErrors).
		Build()
	require.NoError(t, err)
	require.NoError(t, pipeline.Execute(context.Background()))

	assert.Len(t, sink.Table(), 2)
}

func TestRecordClone(t *testing.T) {
	original := Record{"a": 1}
	clone := original.Clone()
	clone["a"] = 2
	clone["b"] = 3

	assert.Equal(t, 1, original["a"])
	assert.NotContains(t, original, "b")
}
