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

package etl

import (
	"context"

	"github.com/aurora-data/i94etl"
	"github.com/aurora-data/i94etl/engine"
	"github.com/aurora-data/i94etl/transform"
)

// TimeColumns is the output schema of the time dimension. Day of month is
// derived during construction but not part of the published schema.
var TimeColumns = []string{
	"sas_date", "year", "month", "weekofyear", "quarter", "dayofweek",
}

// BuildTimeTable derives the calendar dimension from every arrival and
// departure day offset in the raw immigration extract. Null offsets are
// skipped, the two date columns are unioned, and duplicates collapse so each
// offset appears once.
func BuildTimeTable(ctx context.Context, raw i94etl.Table) (i94etl.Table, error) {
	var rows i94etl.Table
	for _, record := range raw {
		for _, field := range []string{"arrdate", "depdate"} {
			row, ok := calendarRow(record[field])
			if !ok {
				continue
			}
			rows = append(rows, row)
		}
	}

	return apply(ctx, engine.Distinct(rows),
		[]i94etl.Transformer{transform.Select(TimeColumns...)}, nil)
}

// calendarRow expands one day offset into a calendar dimension row. The
// sas_date column carries the decoded date, not the raw offset.
func calendarRow(offset interface{}) (i94etl.Record, bool) {
	date, ok := engine.DecodeEpochOffset(offset)
	if !ok {
		return nil, false
	}
	parts := engine.CalendarParts(date)
	return i94etl.Record{
		"sas_date":   date,
		"year":       parts.Year,
		"month":      parts.Month,
		"day":        parts.Day,
		"weekofyear": parts.WeekOfYear,
		"quarter":    parts.Quarter,
		"dayofweek":  parts.DayOfWeek,
	}, true
}
