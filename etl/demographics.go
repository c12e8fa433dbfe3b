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

// DemographicsColumns is the output schema of the demographics dimension.
var DemographicsColumns = []string{
	"Port_Code", "Port_City", "State_Code", "State", "Median_Age",
	"Male_Population", "Female_Population", "Total_Population",
	"Number_of_Veterans", "Foreign_born", "Avg_Household_Size",
	"Race", "Count",
}

// BuildDemographicsTable attaches port codes to the US city demographics
// extract. Cities that are not I94 ports drop out through the inner join;
// the city/state match is case-insensitive on both components.
func BuildDemographicsTable(ctx context.Context, demographics, ports i94etl.Table) (i94etl.Table, error) {
	demographics, err := apply(ctx, demographics,
		[]i94etl.Transformer{
			transform.Rename(map[string]string{
				"Median Age":             "Median_Age",
				"Male Population":        "Male_Population",
				"Female Population":      "Female_Population",
				"Total Population":       "Total_Population",
				"Number of Veterans":     "Number_of_Veterans",
				"Foreign-born":           "Foreign_born",
				"Average Household Size": "Avg_Household_Size",
				"State Code":             "State_Code",
			}),
		}, nil)
	if err != nil {
		return nil, err
	}

	joined := engine.InnerJoin(demographics, ports, engine.JoinOn{
		LeftFields:  []string{"City", "State_Code"},
		RightFields: []string{"Port_City", "State_Code"},
	})

	return apply(ctx, engine.Distinct(joined, DemographicsColumns...),
		[]i94etl.Transformer{transform.Select(DemographicsColumns...)}, nil)
}
