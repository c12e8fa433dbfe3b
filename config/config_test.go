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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `[AWS]
AWS_ACCESS_KEY_ID=AKIAEXAMPLE
AWS_SECRET_ACCESS_KEY=secret
AWS_REGION=us-west-2

[LOCAL]
I94_INPUT_PATH=/data/i94_apr16_sub.sas7bdat
AIRPORTS_INPUT_PATH=/data/airport-codes.csv
PORTS_INPUT_PATH=/data/i94_ports.csv
COUNTRY_INPUT_PATH=/data/i94_countries.csv
COUNTRY_TEMPERATURE_INPUT_PATH=/data/country_temps.csv
CITY_TEMPERATURE_INPUT_PATH=/data/city_temps.csv
DEMO_INPUT_PATH=/data/us-cities-demographics.csv
OUTPUT_PATH=/data/out
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dl.cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "AKIAEXAMPLE", cfg.AWS.AccessKeyID)
	assert.Equal(t, "us-west-2", cfg.AWS.Region)
	assert.Equal(t, "/data/i94_apr16_sub.sas7bdat", cfg.Paths.I94Input)
	assert.Equal(t, "/data/out", cfg.Paths.Output)
	assert.Empty(t, cfg.PostgresDSN)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("OUTPUT_PATH", "s3://warehouse/capstone")

	cfg, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.Equal(t, "s3://warehouse/capstone", cfg.Paths.Output)
}

func TestLoadMissingRequiredKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "[LOCAL]\nOUTPUT_PATH=/data/out\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "I94_INPUT_PATH")
	assert.Contains(t, err.Error(), "DEMO_INPUT_PATH")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.cfg"))
	assert.Error(t, err)
}

func TestUsesS3(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.False(t, cfg.UsesS3())

	cfg.Paths.Output = "s3://warehouse/capstone"
	assert.True(t, cfg.UsesS3())
}
