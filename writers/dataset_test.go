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

package writers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-data/i94etl"
)

func partFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && strings.HasSuffix(path, ".snappy.parquet") {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestWriteDatasetFlat(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "Country_table")
	table := i94etl.Table{
		{"Country_Code": 101, "Country": "ALBANIA"},
		{"Country_Code": 102, "Country": "ARGENTINA"},
	}

	require.NoError(t, WriteDataset(context.Background(), table, dest,
		WithDatasetFieldOrder([]string{"Country_Code", "Country"})))

	files := partFiles(t, dest)
	require.Len(t, files, 1)

	rows := readParquet(t, filepath.Join(dest, files[0]))
	require.Len(t, rows, 2)
	assert.Equal(t, "ALBANIA", rows[0]["Country"])
}

func TestWriteDatasetPartitioned(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "immigrations_table")
	table := i94etl.Table{
		{"immigration_id": 1, "Year": 2016, "Month": 4, "port_code": "LOS"},
		{"immigration_id": 2, "Year": 2016, "Month": 4, "port_code": "NYC"},
		{"immigration_id": 3, "Year": 2016, "Month": 5, "port_code": "ATL"},
	}

	require.NoError(t, WriteDataset(context.Background(), table, dest,
		WithPartitionBy("Year", "Month"),
		WithDatasetFieldOrder([]string{"immigration_id", "Year", "Month", "port_code"})))

	files := partFiles(t, dest)
	require.Len(t, files, 2)
	assert.Contains(t, files[0], filepath.Join("Year=2016", "Month=4"))

	april := readParquet(t, filepath.Join(dest, files[0]))
	require.Len(t, april, 2)
	// Partition columns are directories, not row fields.
	assert.NotContains(t, april[0], "Year")
	assert.NotContains(t, april[0], "Month")
	assert.Equal(t, "LOS", april[0]["port_code"])
}

func TestWriteDatasetOverwriteClearsPreviousRun(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "airports_table")
	ctx := context.Background()

	first := i94etl.Table{{"iata_code": "ATL"}, {"iata_code": "CHI"}}
	require.NoError(t, WriteDataset(ctx, first, dest))
	second := i94etl.Table{{"iata_code": "NYC"}}
	require.NoError(t, WriteDataset(ctx, second, dest))

	files := partFiles(t, dest)
	require.Len(t, files, 1)
	rows := readParquet(t, filepath.Join(dest, files[0]))
	require.Len(t, rows, 1)
	assert.Equal(t, "NYC", rows[0]["iata_code"])
}

func TestWriteDatasetAppendAccumulates(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "time_table")
	ctx := context.Background()

	require.NoError(t, WriteDataset(ctx, i94etl.Table{{"sas_date": 20574}}, dest,
		WithWriteMode(Append)))
	require.NoError(t, WriteDataset(ctx, i94etl.Table{{"sas_date": 20575}}, dest,
		WithWriteMode(Append)))

	assert.Len(t, partFiles(t, dest), 2)
}

func TestWriteDatasetEmptyTableCreatesDirectory(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "city_temperatures")

	require.NoError(t, WriteDataset(context.Background(), i94etl.Table{}, dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Empty(t, partFiles(t, dest))
}

func TestWriteDatasetPartitionValueFormatting(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"integral float drops fraction", 2016.0, "2016"},
		{"int", 4, "4"},
		{"string", "GA", "GA"},
		{"nil", nil, "__HIVE_DEFAULT_PARTITION__"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatPartitionValue(tt.value))
		})
	}
}

func TestWriteDatasetMissingPartitionColumn(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "bad")
	err := WriteDataset(context.Background(), i94etl.Table{{"a": 1}}, dest,
		WithPartitionBy("Year"))
	assert.Error(t, err)
}
