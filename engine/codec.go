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

// Scalar codecs for the I94 encoded fields. All of these are total: any
// input, including nil, maps to a defined result and never to an error.

// EpochDate is the reference date of the SAS numeric date encoding.
// Day offsets in the immigration extracts count from here.
var EpochDate = time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC)

// DecodeEpochOffset interprets v as a day count from EpochDate and returns
// the corresponding date. The second return is false when v is nil or not
// convertible to a number; callers treat that as a null date.
func DecodeEpochOffset(v interface{}) (time.Time, bool) {
	days, ok := AsFloat(v)
	if !ok {
		return time.Time{}, false
	}
	return EpochDate.AddDate(0, 0, int(days)), true
}

// DecodeTravelMode translates an I94 travel mode code to its description.
func DecodeTravelMode(v interface{}) string {
	mode, ok := AsInt(v)
	if !ok {
		return "Unknown"
	}
	switch mode {
	case 1:
		return "Air"
	case 2:
		return "Sea"
	case 3:
		return "Land"
	default:
		return "Unknown"
	}
}

// DecodeVisaType translates an I94 visa category code to its description.
// A missing code is reported as such rather than unknown.
func DecodeVisaType(v interface{}) string {
	if v == nil {
		return "Not Reported"
	}
	visa, ok := AsInt(v)
	if !ok {
		return "Unknown"
	}
	switch visa {
	case 1:
		return "Business"
	case 2:
		return "Pleasure"
	case 3:
		return "Student"
	default:
		return "Unknown"
	}
}
