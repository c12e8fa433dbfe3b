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
	"math"
	"strings"

	"github.com/aurora-data/i94etl"
	"github.com/aurora-data/i94etl/engine"
	"github.com/aurora-data/i94etl/filter"
	"github.com/aurora-data/i94etl/transform"
)

// AirportsColumns is the output schema of the airports dimension.
var AirportsColumns = []string{
	"Port_Code", "Port_City", "State_Code", "name", "type",
	"elevation_feet", "elevation_metres", "continent", "iso_country",
	"iso_region", "municipality", "gps_code", "iata_code",
	"longitude", "latitude",
}

const feetToMetres = 0.3048

// BuildAirportsTable filters the worldwide airport extract down to open US
// airports that are I94 ports of entry. The port match requires both the
// IATA code and the state embedded in the ISO region to line up.
func BuildAirportsTable(ctx context.Context, airports, ports i94etl.Table) (i94etl.Table, error) {
	airports, err := apply(ctx, airports,
		[]i94etl.Transformer{
			splitCoordinates(),
			transform.AddField("elevation_feet", func(r i94etl.Record) interface{} {
				feet, ok := engine.AsInt(r["elevation_ft"])
				if !ok {
					return 0
				}
				return feet
			}),
			transform.AddField("elevation_metres", func(r i94etl.Record) interface{} {
				feet, ok := engine.AsFloat(r["elevation_ft"])
				if !ok {
					return 0
				}
				return int(math.Ceil(feet * feetToMetres))
			}),
		},
		[]i94etl.Filter{
			filter.Equals("iso_country", "US"),
			filter.NotEquals("type", "closed"),
		})
	if err != nil {
		return nil, err
	}

	// The region key "US-XX" is derived on the port side so the join engine
	// can treat it as an ordinary field pair.
	ports, err = apply(ctx, ports,
		[]i94etl.Transformer{
			transform.AddField("port_region", func(r i94etl.Record) interface{} {
				state, ok := engine.AsString(r["State_Code"])
				if !ok {
					return nil
				}
				return "US-" + strings.TrimSpace(state)
			}),
		}, nil)
	if err != nil {
		return nil, err
	}

	joined := engine.InnerJoin(airports, ports, engine.JoinOn{
		LeftFields:  []string{"iata_code", "iso_region"},
		RightFields: []string{"Port_Code", "port_region"},
	})

	return apply(ctx, joined,
		[]i94etl.Transformer{transform.Select(AirportsColumns...)}, nil)
}

// splitCoordinates splits the "longitude, latitude" coordinate string into
// two float columns. Unparseable coordinates become nulls.
func splitCoordinates() i94etl.Transformer {
	return transform.AddFields(func(r i94etl.Record) map[string]interface{} {
		out := map[string]interface{}{"longitude": nil, "latitude": nil}
		raw, ok := engine.AsString(r["coordinates"])
		if !ok {
			return out
		}
		parts := strings.SplitN(raw, ",", 2)
		if len(parts) != 2 {
			return out
		}
		if lon, ok := engine.AsFloat(strings.TrimSpace(parts[0])); ok {
			out["longitude"] = lon
		}
		if lat, ok := engine.AsFloat(strings.TrimSpace(parts[1])); ok {
			out["latitude"] = lat
		}
		return out
	})
}
