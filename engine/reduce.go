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

package engine

import (
	"sort"
	"time"

	"github.com/aurora-data/i94etl"
)

// DefaultMeasurementCutoff is the exclusive lower bound applied to
// time-series rows before reduction. Measurements on or before this date
// are discarded.
var DefaultMeasurementCutoff = time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC)

// LatestSpec configures a latest-measurement reduction.
type LatestSpec struct {
	GroupField string    // grouping key (country or city)
	DateField  string    // measurement date column
	ValueField string    // measurement value; rows with a nil value are skipped
	After      time.Time // exclusive date threshold; zero means DefaultMeasurementCutoff
}

// LatestMeasurement reduces a time series to one row per group: the most
// recent qualifying measurement. Qualifying rows have a parseable date
// strictly after the threshold and a non-nil value.
//
// When several rows in a group share the maximum date, the first one
// encountered in input order wins, so the result is deterministic and holds
// exactly one row per group.
//
// The output is sorted by group key ascending. Empty input yields an empty
// table, not an error.
func LatestMeasurement(t i94etl.Table, spec LatestSpec) i94etl.Table {
	after := spec.After
	if after.IsZero() {
		after = DefaultMeasurementCutoff
	}

	type latest struct {
		row  i94etl.Record
		date time.Time
	}
	best := make(map[string]latest)

	for _, row := range t {
		date, ok := AsTime(row[spec.DateField])
		if !ok || !date.After(after) {
			continue
		}
		if row[spec.ValueField] == nil {
			continue
		}
		key, ok := NormalizeKey(row[spec.GroupField])
		if !ok {
			continue
		}
		current, exists := best[key]
		if !exists || date.After(current.date) {
			best[key] = latest{row: row, date: date}
		}
	}

	ordered := make([]string, 0, len(best))
	for key := range best {
		ordered = append(ordered, key)
	}
	sort.Strings(ordered)

	result := make(i94etl.Table, 0, len(ordered))
	for _, key := range ordered {
		result = append(result, best[key].row)
	}
	return result
}
