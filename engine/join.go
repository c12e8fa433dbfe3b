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

// join.go - case-insensitive hash joins between reference tables
package engine

import (
	"sort"
	"strings"

	"github.com/aurora-data/i94etl"
)

// NormalizeKey produces the canonical join key for a single field value:
// upper-cased and whitespace-trimmed. The second return is false for nil
// values and empty strings, which never participate in a match.
//
// Every join site goes through this one function so that the
// case-insensitivity contract is uniform across the pipeline.
func NormalizeKey(v interface{}) (string, bool) {
	s, ok := AsString(v)
	if !ok {
		return "", false
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	return s, true
}

// JoinOn names the key fields on each side of a join. The slices are
// positional: LeftFields[i] is matched against RightFields[i].
type JoinOn struct {
	LeftFields  []string
	RightFields []string
}

// InnerJoin returns the rows of left merged with every matching row of
// right, matching on the normalized composite key. Rows with a nil or empty
// key component are dropped. Left-side fields win on a name conflict.
//
// A join with zero matches yields an empty table, never an error.
func InnerJoin(left, right i94etl.Table, on JoinOn) i94etl.Table {
	return hashJoin(left, right, on, false)
}

// LeftJoin returns every row of left, merged with matching rows of right
// where a match exists. Unmatched left rows are retained unchanged, so no
// reference data is lost.
func LeftJoin(left, right i94etl.Table, on JoinOn) i94etl.Table {
	return hashJoin(left, right, on, true)
}

func hashJoin(left, right i94etl.Table, on JoinOn, keepUnmatched bool) i94etl.Table {
	index := make(map[string][]i94etl.Record, len(right))
	for _, row := range right {
		key, ok := compositeKey(row, on.RightFields)
		if !ok {
			continue
		}
		index[key] = append(index[key], row)
	}

	var result i94etl.Table
	for _, row := range left {
		key, ok := compositeKey(row, on.LeftFields)
		if !ok {
			if keepUnmatched {
				result = append(result, row.Clone())
			}
			continue
		}
		matches, found := index[key]
		if !found {
			if keepUnmatched {
				result = append(result, row.Clone())
			}
			continue
		}
		for _, match := range matches {
			result = append(result, mergeRecords(row, match))
		}
	}
	return result
}

// compositeKey builds the normalized composite key for the given fields.
// Any unmatchable component invalidates the whole key.
func compositeKey(row i94etl.Record, fields []string) (string, bool) {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		part, ok := NormalizeKey(row[field])
		if !ok {
			return "", false
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "\x1f"), true
}

// mergeRecords combines a left and right row; the left side wins when both
// carry the same field name.
func mergeRecords(left, right i94etl.Record) i94etl.Record {
	result := make(i94etl.Record, len(left)+len(right))
	for k, v := range right {
		result[k] = v
	}
	for k, v := range left {
		result[k] = v
	}
	return result
}

// Distinct deduplicates a table by the listed fields, or by every field
// present when none are listed. The first occurrence wins and input order
// is preserved.
func Distinct(t i94etl.Table, fields ...string) i94etl.Table {
	seen := make(map[string]bool, len(t))
	var result i94etl.Table
	for _, row := range t {
		key := distinctKey(row, fields)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, row)
	}
	return result
}

func distinctKey(row i94etl.Record, fields []string) string {
	if len(fields) == 0 {
		fields = make([]string, 0, len(row))
		for k := range row {
			fields = append(fields, k)
		}
		sort.Strings(fields)
	}
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(field)
		b.WriteByte('=')
		if s, ok := AsString(row[field]); ok {
			b.WriteString(s)
		} else {
			b.WriteString("\x00")
		}
	}
	return b.String()
}
