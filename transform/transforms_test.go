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

package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-data/i94etl"
)

func TestSelect(t *testing.T) {
	record := i94etl.Record{"a": 1, "b": "two", "c": 3.0}

	got, err := Select("a", "c").Transform(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, i94etl.Record{"a": 1, "c": 3.0}, got)
}

func TestSelectFillsMissingFieldsWithNil(t *testing.T) {
	record := i94etl.Record{"Country": "ALBANIA"}

	got, err := Select("Country", "AverageTemperature").Transform(context.Background(), record)
	require.NoError(t, err)
	require.Contains(t, got, "AverageTemperature")
	assert.Nil(t, got["AverageTemperature"])
}

func TestRename(t *testing.T) {
	record := i94etl.Record{"Code": "ATL", "City": "Atlanta"}

	got, err := Rename(map[string]string{"Code": "Port_Code"}).Transform(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "ATL", got["Port_Code"])
	assert.Equal(t, "Atlanta", got["City"])
	assert.NotContains(t, got, "Code")
}

func TestAddField(t *testing.T) {
	record := i94etl.Record{"elevation_ft": 1026}

	got, err := AddField("doubled", func(r i94etl.Record) interface{} {
		return r["elevation_ft"].(int) * 2
	}).Transform(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, 2052, got["doubled"])
	// Input record is untouched.
	assert.NotContains(t, record, "doubled")
}

func TestAddFields(t *testing.T) {
	record := i94etl.Record{"coordinates": "-84.4, 33.6"}

	got, err := AddFields(func(r i94etl.Record) map[string]interface{} {
		return map[string]interface{}{"longitude": -84.4, "latitude": 33.6}
	}).Transform(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, -84.4, got["longitude"])
	assert.Equal(t, 33.6, got["latitude"])
}

func TestTrimSpaceAndToUpper(t *testing.T) {
	record := i94etl.Record{"code": "  atl  ", "count": 5}

	got, err := TrimSpace("code", "count").Transform(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "atl", got["code"])
	assert.Equal(t, 5, got["count"])

	got, err = ToUpper("code").Transform(context.Background(), got)
	require.NoError(t, err)
	assert.Equal(t, "ATL", got["code"])
}

func TestCastInt(t *testing.T) {
	t.Run("truncates doubles", func(t *testing.T) {
		record := i94etl.Record{"cicid": 5748881.0, "i94yr": 2016.0}
		got, err := CastInt("cicid", "i94yr").Transform(context.Background(), record)
		require.NoError(t, err)
		assert.Equal(t, 5748881, got["cicid"])
		assert.Equal(t, 2016, got["i94yr"])
	})

	t.Run("nil passes through", func(t *testing.T) {
		record := i94etl.Record{"biryear": nil}
		got, err := CastInt("biryear").Transform(context.Background(), record)
		require.NoError(t, err)
		assert.Nil(t, got["biryear"])
	})

	t.Run("missing field ignored", func(t *testing.T) {
		got, err := CastInt("absent").Transform(context.Background(), i94etl.Record{"x": 1})
		require.NoError(t, err)
		assert.Equal(t, 1, got["x"])
	})

	t.Run("unconvertible errors", func(t *testing.T) {
		_, err := CastInt("x").Transform(context.Background(), i94etl.Record{"x": []int{1}})
		assert.Error(t, err)
	})
}

func TestCastFloat(t *testing.T) {
	record := i94etl.Record{"temp": "18.9", "count": 3}
	got, err := CastFloat("temp", "count").Transform(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, 18.9, got["temp"])
	assert.Equal(t, 3.0, got["count"])
}
