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

// CountryColumns is the output schema of the country dimension.
var CountryColumns = []string{
	"Country_Code", "Country", "LastMeasuredDate",
	"AverageTemperature", "AverageTemperatureUncertainty",
}

// BuildCountryTable joins the I94 country reference list with the latest
// temperature measurement per country. The join is a left join so countries
// with no usable measurement are kept with null temperature columns.
func BuildCountryTable(ctx context.Context, countries, temperatures i94etl.Table) (i94etl.Table, error) {
	countries, err := apply(ctx, countries,
		[]i94etl.Transformer{
			transform.Rename(map[string]string{"Code": "Country_Code"}),
		}, nil)
	if err != nil {
		return nil, err
	}

	latest := engine.LatestMeasurement(temperatures, engine.LatestSpec{
		GroupField: "Country",
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

	joined := engine.LeftJoin(countries, latest, engine.JoinOn{
		LeftFields:  []string{"Country"},
		RightFields: []string{"Country"},
	})

	return apply(ctx, engine.Distinct(joined, CountryColumns...),
		[]i94etl.Transformer{transform.Select(CountryColumns...)}, nil)
}
