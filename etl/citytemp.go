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
	"github.com/aurora-data/i94etl/filter"
	"github.com/aurora-data/i94etl/transform"
)

// CityTemperatureColumns is the output schema of the city temperature table.
var CityTemperatureColumns = []string{
	"Port_Code", "Port_City", "LastMeasuredDate",
	"AverageTemperature", "AverageTemperatureUncertainty",
}

// BuildCityTemperatureTable reduces the US city temperature series to the
// latest measurement per city and anchors each city to its I94 port. Cities
// that are not ports drop out through the inner join.
func BuildCityTemperatureTable(ctx context.Context, temperatures, ports i94etl.Table) (i94etl.Table, error) {
	temperatures, err := apply(ctx, temperatures, nil,
		[]i94etl.Filter{filter.Equals("Country", "United States")})
	if err != nil {
		return nil, err
	}

	latest := engine.LatestMeasurement(temperatures, engine.LatestSpec{
		GroupField: "City",
		DateField:  "dt",
		ValueField: "AverageTemperature",
	})
	latest, err = apply(ctx, latest,
		[]i94etl.Transformer{
			transform.Rename(map[string]string{"dt": "LastMeasuredDate"}),
		}, nil)
	if err != nil {
		return nil, err
	}

	joined := engine.InnerJoin(latest, ports, engine.JoinOn{
		LeftFields:  []string{"City"},
		RightFields: []string{"Port_City"},
	})

	return apply(ctx, engine.Distinct(joined, CityTemperatureColumns...),
		[]i94etl.Transformer{transform.Select(CityTemperatureColumns...)}, nil)
}
