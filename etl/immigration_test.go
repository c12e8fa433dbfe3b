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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-data/i94etl"
	"github.com/aurora-data/i94etl/engine"
)

// rawArrival mimics one decoded sas7bdat row: every numeric column arrives
// as a float64.
func rawArrival() i94etl.Record {
	return i94etl.Record{
		"cicid":   5748881.0,
		"i94yr":   2016.0,
		"i94mon":  4.0,
		"i94cit":  245.0,
		"i94port": "LOS",
		"i94mode": 1.0,
		"i94visa": 2.0,
		"biryear": 1976.0,
		"airline": "QF",
		"fltno":   "00011",
		"arrdate": 20574.0,
		"depdate": 20582.0,
	}
}

func TestBuildImmigrationTable(t *testing.T) {
	got, err := BuildImmigrationTable(context.Background(), i94etl.Table{rawArrival()})
	require.NoError(t, err)
	require.Len(t, got, 1)

	row := got[0]
	assert.ElementsMatch(t, ImmigrationColumns, keys(row))
	assert.Equal(t, 5748881, row["immigration_id"])
	assert.Equal(t, 2016, row["Year"])
	assert.Equal(t, 4, row["Month"])
	assert.Equal(t, 245, row["country_of_citizenship"])
	assert.Equal(t, "LOS", row["port_code"])
	assert.Equal(t, "Air", row["mode_of_travel"])
	assert.Equal(t, "Pleasure", row["visa_type"])
	assert.Equal(t, 1976, row["birth_year"])
	assert.Equal(t, "QF", row["arrival_airline"])
	assert.Equal(t, "00011", row["arrival_flightnumber"])
	assert.Equal(t, engine.EpochDate.AddDate(0, 0, 20574), row["arrival_date"])
	assert.Equal(t, engine.EpochDate.AddDate(0, 0, 20582), row["departure_date"])
}

func TestBuildImmigrationTableNullFields(t *testing.T) {
	row := rawArrival()
	row["depdate"] = nil
	row["i94mode"] = nil
	row["i94visa"] = nil
	row["biryear"] = nil

	got, err := BuildImmigrationTable(context.Background(), i94etl.Table{row})
	require.NoError(t, err)
	require.Len(t, got, 1)

	out := got[0]
	assert.Nil(t, out["departure_date"])
	assert.Equal(t, "Unknown", out["mode_of_travel"])
	assert.Equal(t, "Not Reported", out["visa_type"])
	assert.Nil(t, out["birth_year"])
}

func TestBuildTimeTable(t *testing.T) {
	raw := i94etl.Table{
		{"arrdate": 20574.0, "depdate": 20582.0},
		{"arrdate": 20574.0, "depdate": nil}, // duplicate arrival, null departure
	}

	got, err := BuildTimeTable(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, got, 2)

	bySASDate := map[interface{}]i94etl.Record{}
	for _, row := range got {
		assert.ElementsMatch(t, TimeColumns, keys(row))
		bySASDate[row["sas_date"]] = row
	}

	arrivalDate := engine.EpochDate.AddDate(0, 0, 20574)
	arrival := bySASDate[arrivalDate]
	require.NotNil(t, arrival)
	expected := engine.CalendarParts(arrivalDate)
	assert.Equal(t, expected.Year, arrival["year"])
	assert.Equal(t, expected.Month, arrival["month"])
	assert.Equal(t, expected.WeekOfYear, arrival["weekofyear"])
	assert.Equal(t, expected.Quarter, arrival["quarter"])
	assert.Equal(t, expected.DayOfWeek, arrival["dayofweek"])
	assert.NotContains(t, arrival, "day")
}

func TestBuildTimeTableDayOfWeekConvention(t *testing.T) {
	// Offset 20574 is 2016-04-30, a Saturday: dayofweek must be 7.
	date := engine.EpochDate.AddDate(0, 0, 20574)
	require.Equal(t, time.Saturday, date.Weekday())

	got, err := BuildTimeTable(context.Background(), i94etl.Table{{"arrdate": 20574.0, "depdate": nil}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, date, got[0]["sas_date"])
	assert.Equal(t, 7, got[0]["dayofweek"])
}
