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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-data/i94etl"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
		ok       bool
	}{
		{"upper cases", "Atlanta", "ATLANTA", true},
		{"trims whitespace", "  atlanta  ", "ATLANTA", true},
		{"already canonical", "ATL", "ATL", true},
		{"numeric value", 42, "42", true},
		{"nil", nil, "", false},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeKey(tt.input)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestInnerJoinCaseInsensitive(t *testing.T) {
	demographics := i94etl.Table{
		{"City": "Atlanta", "State_Code": "ga", "Median_Age": 33.2},
		{"City": "CHICAGO", "State_Code": "IL", "Median_Age": 34.7},
		{"City": "Springfield", "State_Code": "XX", "Median_Age": 40.0},
	}
	ports := i94etl.Table{
		{"Port_Code": "ATL", "Port_City": "ATLANTA", "State_Code": "GA"},
		{"Port_Code": "CHI", "Port_City": "Chicago", "State_Code": "il"},
	}

	joined := InnerJoin(demographics, ports, JoinOn{
		LeftFields:  []string{"City", "State_Code"},
		RightFields: []string{"Port_City", "State_Code"},
	})

	require.Len(t, joined, 2)
	assert.Equal(t, "ATL", joined[0]["Port_Code"])
	assert.Equal(t, "Atlanta", joined[0]["City"])
	// Left side wins on the shared State_Code field.
	assert.Equal(t, "ga", joined[0]["State_Code"])
	assert.Equal(t, "CHI", joined[1]["Port_Code"])
}

func TestInnerJoinNilKeysNeverMatch(t *testing.T) {
	left := i94etl.Table{
		{"City": nil, "Value": 1},
		{"City": "", "Value": 2},
		{"City": "Boston", "Value": 3},
	}
	right := i94etl.Table{
		{"Port_City": nil, "Port_Code": "XXX"},
		{"Port_City": "", "Port_Code": "YYY"},
		{"Port_City": "BOSTON", "Port_Code": "BOS"},
	}

	joined := InnerJoin(left, right, JoinOn{
		LeftFields:  []string{"City"},
		RightFields: []string{"Port_City"},
	})

	require.Len(t, joined, 1)
	assert.Equal(t, "BOS", joined[0]["Port_Code"])
	assert.Equal(t, 3, joined[0]["Value"])
}

func TestInnerJoinEmptyResult(t *testing.T) {
	left := i94etl.Table{{"City": "Nowhere"}}
	right := i94etl.Table{{"Port_City": "Boston"}}

	joined := InnerJoin(left, right, JoinOn{
		LeftFields:  []string{"City"},
		RightFields: []string{"Port_City"},
	})
	assert.Empty(t, joined)
}

func TestLeftJoinKeepsUnmatched(t *testing.T) {
	countries := i94etl.Table{
		{"Country_Code": 101, "Country": "ALBANIA"},
		{"Country_Code": 102, "Country": "ATLANTIS"},
	}
	measurements := i94etl.Table{
		{"Country": "Albania", "AverageTemperature": 12.5},
	}

	joined := LeftJoin(countries, measurements, JoinOn{
		LeftFields:  []string{"Country"},
		RightFields: []string{"Country"},
	})

	require.Len(t, joined, 2)
	assert.Equal(t, 12.5, joined[0]["AverageTemperature"])
	// Left display form survives the merge.
	assert.Equal(t, "ALBANIA", joined[0]["Country"])
	_, has := joined[1]["AverageTemperature"]
	assert.False(t, has)
}

func TestLeftJoinMultipleMatchesFanOut(t *testing.T) {
	left := i94etl.Table{{"City": "Portland"}}
	right := i94etl.Table{
		{"Port_City": "PORTLAND", "State_Code": "OR"},
		{"Port_City": "portland", "State_Code": "ME"},
	}

	joined := LeftJoin(left, right, JoinOn{
		LeftFields:  []string{"City"},
		RightFields: []string{"Port_City"},
	})
	require.Len(t, joined, 2)
	assert.Equal(t, "OR", joined[0]["State_Code"])
	assert.Equal(t, "ME", joined[1]["State_Code"])
}

func TestDistinct(t *testing.T) {
	table := i94etl.Table{
		{"Port_Code": "ATL", "Race": "Asian", "Count": 100},
		{"Port_Code": "ATL", "Race": "Asian", "Count": 100},
		{"Port_Code": "ATL", "Race": "White", "Count": 200},
	}

	t.Run("by listed fields", func(t *testing.T) {
		got := Distinct(table, "Port_Code", "Race")
		require.Len(t, got, 2)
		assert.Equal(t, "Asian", got[0]["Race"])
		assert.Equal(t, "White", got[1]["Race"])
	})

	t.Run("by all fields when none listed", func(t *testing.T) {
		got := Distinct(table)
		assert.Len(t, got, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Distinct(i94etl.Table{}))
	})
}
