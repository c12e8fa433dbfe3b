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

// Package transform provides reusable, composable record transformations for
// the dataset pipelines: projection, renaming, casting, string normalization,
// and derived fields.
package transform

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aurora-data/i94etl"
)

// Select creates a transformer that projects each record to exactly the
// specified fields. Fields absent from the input appear in the output with a
// nil value, so a projection after an outer join still yields a uniform
// schema.
func Select(fields ...string) i94etl.Transformer {
	return i94etl.TransformFunc(func(ctx context.Context, record i94etl.Record) (i94etl.Record, error) {
		result := make(i94etl.Record, len(fields))
		for _, field := range fields {
			if value, exists := record[field]; exists {
				result[field] = value
			} else {
				result[field] = nil
			}
		}
		return result, nil
	})
}

// Rename creates a transformer that renames fields according to the provided
// mapping. Keys are original field names, values are new field names.
func Rename(mapping map[string]string) i94etl.Transformer {
	return i94etl.TransformFunc(func(ctx context.Context, record i94etl.Record) (i94etl.Record, error) {
		result := make(i94etl.Record, len(record))
		for key, value := range record {
			if newKey, exists := mapping[key]; exists {
				result[newKey] = value
			} else {
				result[key] = value
			}
		}
		return result, nil
	})
}

// AddField creates a transformer that adds a computed field to each record.
// The value function receives the current record.
func AddField(field string, fn func(i94etl.Record) interface{}) i94etl.Transformer {
	return i94etl.TransformFunc(func(ctx context.Context, record i94etl.Record) (i94etl.Record, error) {
		result := record.Clone()
		result[field] = fn(record)
		return result, nil
	})
}

// AddFields creates a transformer that adds several computed fields at once.
// The value function receives the current record and returns the new fields.
func AddFields(fn func(i94etl.Record) map[string]interface{}) i94etl.Transformer {
	return i94etl.TransformFunc(func(ctx context.Context, record i94etl.Record) (i94etl.Record, error) {
		result := record.Clone()
		for field, value := range fn(record) {
			result[field] = value
		}
		return result, nil
	})
}

// TrimSpace creates a transformer that trims whitespace from the specified
// string fields.
func TrimSpace(fields ...string) i94etl.Transformer {
	return i94etl.TransformFunc(func(ctx context.Context, record i94etl.Record) (i94etl.Record, error) {
		result := record.Clone()
		for _, field := range fields {
			if str, ok := record[field].(string); ok {
				result[field] = strings.TrimSpace(str)
			}
		}
		return result, nil
	})
}

// ToUpper creates a transformer that upper-cases the specified string fields.
func ToUpper(fields ...string) i94etl.Transformer {
	return i94etl.TransformFunc(func(ctx context.Context, record i94etl.Record) (i94etl.Record, error) {
		result := record.Clone()
		for _, field := range fields {
			if str, ok := record[field].(string); ok {
				result[field] = strings.ToUpper(str)
			}
		}
		return result, nil
	})
}

// CastInt creates a transformer that casts a field to int, truncating
// fractional values. Nil values pass through unchanged; an unconvertible
// value is an error.
func CastInt(fields ...string) i94etl.Transformer {
	return i94etl.TransformFunc(func(ctx context.Context, record i94etl.Record) (i94etl.Record, error) {
		result := record.Clone()
		for _, field := range fields {
			value, exists := record[field]
			if !exists || value == nil {
				continue
			}
			converted, err := toInt(value)
			if err != nil {
				return nil, fmt.Errorf("failed to cast field %s: %w", field, err)
			}
			result[field] = converted
		}
		return result, nil
	})
}

// CastFloat creates a transformer that casts a field to float64. Nil values
// pass through unchanged; an unconvertible value is an error.
func CastFloat(fields ...string) i94etl.Transformer {
	return i94etl.TransformFunc(func(ctx context.Context, record i94etl.Record) (i94etl.Record, error) {
		result := record.Clone()
		for _, field := range fields {
			value, exists := record[field]
			if !exists || value == nil {
				continue
			}
			converted, err := toFloat(value)
			if err != nil {
				return nil, fmt.Errorf("failed to cast field %s: %w", field, err)
			}
			result[field] = converted
		}
		return result, nil
	})
}

// toInt attempts to convert a value to int.
func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float32:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

// toFloat attempts to convert a value to float64.
func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", value)
	}
}
