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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-data/i94etl"
)

func testPorts(t *testing.T) i94etl.Table {
	t.Helper()
	ports, err := BuildPortTable(context.Background(), i94etl.Table{
		{"Code": "ATL", "City": "ATLANTA", "State": "GA"},
		{"Code": "CHI", "City": "CHICAGO", "State": "IL"},
		{"Code": "NYC", "City": "NEW YORK", "State": "NY"},
	})
	require.NoError(t, err)
	return ports
}

func TestBuildPortTable(t *testing.T) {
	ports := testPorts(t)

	require.Len(t, ports, 3)
	assert.Equal(t, i94etl.Record{
		"Port_Code": "ATL", "Port_City": "ATLANTA", "State_Code": "GA",
	}, ports[0])
}

func TestBuildCountryTable(t *testing.T) {
	countries := i94etl.Table{
		{"Code": 687, "Country": "ARGENTINA"},
		{"Code": 151, "Country": "ATLANTIS"},
	}
	temperatures := i94etl.Table{
		{"dt": "2013-09-01", "AverageTemperature": 17.4, "AverageTemperatureUncertainty": 0.3, "Country": "Argentina"},
		{"dt": "2012-02-01", "AverageTemperature": 24.1, "AverageTemperatureUncertainty": 0.2, "Country": "Argentina"},
		{"dt": "1998-07-01", "AverageTemperature": 9.9, "AverageTemperatureUncertainty": 0.1, "Country": "Atlantis"},
	}

	got, err := BuildCountryTable(context.Background(), countries, temperatures)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byCode := map[interface{}]i94etl.Record{}
	for _, row := range got {
		byCode[row["Country_Code"]] = row
		assert.ElementsMatch(t, CountryColumns, keys(row))
	}

	argentina := byCode[687]
	assert.Equal(t, "2013-09-01", argentina["LastMeasuredDate"])
	assert.Equal(t, 17.4, argentina["AverageTemperature"])

	// No post-1999 measurement: kept with null temperature columns.
	atlantis := byCode[151]
	assert.Nil(t, atlantis["AverageTemperature"])
	assert.Nil(t, atlantis["LastMeasuredDate"])
}

func TestBuildCountryTableDeduplicates(t *testing.T) {
	row := i94etl.Record{"Code": 687, "Country": "ARGENTINA"}
	temperatures := i94etl.Table{
		{"dt": "2013-09-01", "AverageTemperature": 17.4, "AverageTemperatureUncertainty": 0.3, "Country": "Argentina"},
	}

	got, err := BuildCountryTable(context.Background(), i94etl.Table{row, row.Clone()}, temperatures)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestBuildDemographicsTable(t *testing.T) {
	demographics := i94etl.Table{
		{
			"City": "Atlanta", "State": "Georgia", "Median Age": 33.2,
			"Male Population": 228398, "Female Population": 235622,
			"Total Population": 464020, "Number of Veterans": 20219,
			"Foreign-born": 35062, "Average Household Size": 2.29,
			"State Code": "GA", "Race": "Asian", "Count": 21735,
		},
		{
			"City": "Nowhere", "State": "Kansas", "Median Age": 40.0,
			"Male Population": 10, "Female Population": 10,
			"Total Population": 20, "Number of Veterans": 1,
			"Foreign-born": 2, "Average Household Size": 2.0,
			"State Code": "KS", "Race": "White", "Count": 18,
		},
	}

	got, err := BuildDemographicsTable(context.Background(), demographics, testPorts(t))
	require.NoError(t, err)
	require.Len(t, got, 1)

	row := got[0]
	assert.ElementsMatch(t, DemographicsColumns, keys(row))
	assert.Equal(t, "ATL", row["Port_Code"])
	assert.Equal(t, "ATLANTA", row["Port_City"])
	assert.Equal(t, "Georgia", row["State"])
	assert.Equal(t, 33.2, row["Median_Age"])
	assert.Equal(t, 35062, row["Foreign_born"])
	assert.Equal(t, 2.29, row["Avg_Household_Size"])
}

func TestBuildDemographicsTableDeduplicates(t *testing.T) {
	row := i94etl.Record{
		"City": "Atlanta", "State": "Georgia", "Median Age": 33.2,
		"Male Population": 1, "Female Population": 1, "Total Population": 2,
		"Number of Veterans": 0, "Foreign-born": 0, "Average Household Size": 2.0,
		"State Code": "GA", "Race": "Asian", "Count": 1,
	}
	got, err := BuildDemographicsTable(context.Background(), i94etl.Table{row, row.Clone()}, testPorts(t))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestBuildAirportsTable(t *testing.T) {
	airports := i94etl.Table{
		{
			"ident": "KATL", "type": "large_airport", "name": "Hartsfield Jackson",
			"elevation_ft": 1026, "continent": nil, "iso_country": "US",
			"iso_region": "US-GA", "municipality": "Atlanta", "gps_code": "KATL",
			"iata_code": "ATL", "coordinates": "-84.428101, 33.6367",
		},
		{
			"ident": "XCLO", "type": "closed", "name": "Closed Field",
			"elevation_ft": 100, "continent": nil, "iso_country": "US",
			"iso_region": "US-GA", "municipality": "Atlanta", "gps_code": nil,
			"iata_code": "ATL", "coordinates": "-84.0, 33.0",
		},
		{
			"ident": "YSSY", "type": "large_airport", "name": "Sydney",
			"elevation_ft": 21, "continent": "OC", "iso_country": "AU",
			"iso_region": "AU-NSW", "municipality": "Sydney", "gps_code": "YSSY",
			"iata_code": "SYD", "coordinates": "151.177, -33.946",
		},
	}

	got, err := BuildAirportsTable(context.Background(), airports, testPorts(t))
	require.NoError(t, err)
	require.Len(t, got, 1)

	row := got[0]
	assert.ElementsMatch(t, AirportsColumns, keys(row))
	assert.Equal(t, "ATL", row["Port_Code"])
	assert.Equal(t, "Hartsfield Jackson", row["name"])
	assert.Equal(t, 1026, row["elevation_feet"])
	// ceil(1026 * 0.3048) = ceil(312.72) = 313
	assert.Equal(t, 313, row["elevation_metres"])
	assert.Equal(t, -84.428101, row["longitude"])
	assert.Equal(t, 33.6367, row["latitude"])
}

func TestBuildAirportsTableNullElevation(t *testing.T) {
	airports := i94etl.Table{
		{
			"ident": "KATL", "type": "small_airport", "name": "X",
			"elevation_ft": nil, "continent": nil, "iso_country": "US",
			"iso_region": "US-GA", "municipality": "Atlanta", "gps_code": nil,
			"iata_code": "ATL", "coordinates": "-84.0, 33.0",
		},
	}

	got, err := BuildAirportsTable(context.Background(), airports, testPorts(t))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0]["elevation_feet"])
	assert.Equal(t, 0, got[0]["elevation_metres"])
}

func TestBuildCityTemperatureTable(t *testing.T) {
	temperatures := i94etl.Table{
		{"dt": "2013-09-01", "AverageTemperature": 20.1, "AverageTemperatureUncertainty": 0.3, "City": "Chicago", "Country": "United States"},
		{"dt": "2015-06-01", "AverageTemperature": 18.9, "AverageTemperatureUncertainty": 0.2, "City": "Chicago", "Country": "United States"},
		{"dt": "2015-06-01", "AverageTemperature": 30.0, "AverageTemperatureUncertainty": 0.1, "City": "Chicago", "Country": "Mexico"},
		{"dt": "1998-07-01", "AverageTemperature": 25.0, "AverageTemperatureUncertainty": 0.4, "City": "New York", "Country": "United States"},
		{"dt": "2015-06-01", "AverageTemperature": 22.0, "AverageTemperatureUncertainty": 0.2, "City": "Elsewhere", "Country": "United States"},
	}

	got, err := BuildCityTemperatureTable(context.Background(), temperatures, testPorts(t))
	require.NoError(t, err)
	require.Len(t, got, 1)

	row := got[0]
	assert.ElementsMatch(t, CityTemperatureColumns, keys(row))
	assert.Equal(t, "CHI", row["Port_Code"])
	assert.Equal(t, "CHICAGO", row["Port_City"])
	assert.Equal(t, "2015-06-01", row["LastMeasuredDate"])
	assert.Equal(t, 18.9, row["AverageTemperature"])
}

func keys(r i94etl.Record) []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	return out
}
