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

import "time"

// Calendar holds the dimensional attributes derived from a single date.
// DayOfWeek follows the source warehouse convention: 1=Sunday through
// 7=Saturday.
type Calendar struct {
	Date       time.Time
	Year       int
	Month      int
	Day        int
	WeekOfYear int
	Quarter    int
	DayOfWeek  int
}

// CalendarParts derives the calendar dimension attributes from a date.
func CalendarParts(d time.Time) Calendar {
	_, week := d.ISOWeek()
	return Calendar{
		Date:       d,
		Year:       d.Year(),
		Month:      int(d.Month()),
		Day:        d.Day(),
		WeekOfYear: week,
		Quarter:    (int(d.Month())-1)/3 + 1,
		DayOfWeek:  int(d.Weekday()) + 1,
	}
}
