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

// Package filter provides reusable record predicates for the dataset
// pipelines. All functions return i94etl.Filter implementations.
package filter

import (
	"context"
	"reflect"

	"github.com/aurora-data/i94etl"
)

// NotNull creates a filter that excludes records where the specified field
// is missing, nil, or an empty string.
func NotNull(field string) i94etl.Filter {
	return i94etl.FilterFunc(func(ctx context.Context, record i94etl.Record) (bool, error) {
		value, exists := record[field]
		if !exists || value == nil {
			return false, nil
		}
		if str, ok := value.(string); ok && str == "" {
			return false, nil
		}
		return true, nil
	})
}

// Equals creates a filter that includes records where the field equals the
// specified value.
func Equals(field string, expectedValue interface{}) i94etl.Filter {
	return i94etl.FilterFunc(func(ctx context.Context, record i94etl.Record) (bool, error) {
		value, exists := record[field]
		if !exists {
			return false, nil
		}
		return reflect.DeepEqual(value, expectedValue), nil
	})
}

// NotEquals creates a filter that excludes records where the field equals
// the specified value. Records missing the field are included.
func NotEquals(field string, excludedValue interface{}) i94etl.Filter {
	return i94etl.FilterFunc(func(ctx context.Context, record i94etl.Record) (bool, error) {
		value, exists := record[field]
		if !exists {
			return true, nil
		}
		return !reflect.DeepEqual(value, excludedValue), nil
	})
}
