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

// ImmigrationColumns is the output schema of the immigration fact table.
var ImmigrationColumns = []string{
	"immigration_id", "Year", "Month", "country_of_citizenship",
	"port_code", "mode_of_travel", "visa_type", "birth_year",
	"arrival_airline", "arrival_flightnumber",
	"arrival_date", "departure_date",
}

// BuildImmigrationTable decodes the raw I94 arrival records into the fact
// table. The SAS extract stores every numeric column as a double; identifiers
// and years are cast back to integers, and the coded fields go through the
// scalar codecs. Decoding is total: malformed codes become "Unknown" or null
// dates rather than errors.
func BuildImmigrationTable(ctx context.Context, raw i94etl.Table) (i94etl.Table, error) {
	return apply(ctx, raw,
		[]i94etl.Transformer{
			transform.Rename(map[string]string{
				"cicid":   "immigration_id",
				"i94yr":   "Year",
				"i94mon":  "Month",
				"i94cit":  "country_of_citizenship",
				"i94port": "port_code",
				"biryear": "birth_year",
				"airline": "arrival_airline",
				"fltno":   "arrival_flightnumber",
			}),
			transform.AddFields(func(r i94etl.Record) map[string]interface{} {
				out := map[string]interface{}{
					"mode_of_travel": engine.DecodeTravelMode(r["i94mode"]),
					"visa_type":      engine.DecodeVisaType(r["i94visa"]),
					"arrival_date":   nil,
					"departure_date": nil,
				}
				if arrival, ok := engine.DecodeEpochOffset(r["arrdate"]); ok {
					out["arrival_date"] = arrival
				}
				if departure, ok := engine.DecodeEpochOffset(r["depdate"]); ok {
					out["departure_date"] = departure
				}
				return out
			}),
			transform.CastInt("immigration_id", "Year", "Month", "country_of_citizenship", "birth_year"),
			transform.Select(ImmigrationColumns...),
		}, nil)
}
