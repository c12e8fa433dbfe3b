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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalendarParts(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		year      int
		month     int
		day       int
		quarter   int
		dayOfWeek int
	}{
		// 2016-04-30 was a Saturday.
		{"saturday", time.Date(2016, 4, 30, 0, 0, 0, 0, time.UTC), 2016, 4, 30, 2, 7},
		// 2016-01-03 was a Sunday.
		{"sunday", time.Date(2016, 1, 3, 0, 0, 0, 0, time.UTC), 2016, 1, 3, 1, 1},
		// 2016-07-04 was a Monday.
		{"monday", time.Date(2016, 7, 4, 0, 0, 0, 0, time.UTC), 2016, 7, 4, 3, 2},
		{"year end", time.Date(2015, 12, 31, 0, 0, 0, 0, time.UTC), 2015, 12, 31, 4, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalendarParts(tt.date)
			assert.Equal(t, tt.year, got.Year)
			assert.Equal(t, tt.month, got.Month)
			assert.Equal(t, tt.day, got.Day)
			assert.Equal(t, tt.quarter, got.Quarter)
			assert.Equal(t, tt.dayOfWeek, got.DayOfWeek)
		})
	}
}

func TestCalendarPartsISOWeek(t *testing.T) {
	// 2016-01-01 falls in ISO week 53 of 2015.
	got := CalendarParts(time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 53, got.WeekOfYear)

	got = CalendarParts(time.Date(2016, 1, 4, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, got.WeekOfYear)
}
