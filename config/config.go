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

// Package config loads pipeline settings from a dl.cfg INI file and the
// environment. Environment variables take precedence over the file, so a
// deployment can override individual paths without editing the config.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// AWS holds credentials for reading from and writing to S3.
type AWS struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// Paths holds the input dataset locators and the output root. Each locator
// is a local path or an s3:// URL.
type Paths struct {
	I94Input                string
	AirportsInput           string
	PortsInput              string
	CountryInput            string
	CountryTemperatureInput string
	CityTemperatureInput    string
	DemographicsInput       string
	Output                  string
}

// Config is the full pipeline configuration.
type Config struct {
	AWS         AWS
	Paths       Paths
	PostgresDSN string // Optional mirror database; empty disables mirroring
}

// Load reads configuration from the given file (dl.cfg format) merged with
// environment variables. An empty configFile skips the file and reads the
// environment only.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Viper dropped its INI decoder in v1.20, so the dl.cfg file is parsed
	// directly and viper only layers the environment on top.
	var file *ini.File
	if configFile != "" {
		parsed, err := ini.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
		file = parsed
	}

	cfg := &Config{
		AWS: AWS{
			AccessKeyID:     lookup(v, file, "AWS", "AWS_ACCESS_KEY_ID"),
			SecretAccessKey: lookup(v, file, "AWS", "AWS_SECRET_ACCESS_KEY"),
			Region:          lookup(v, file, "AWS", "AWS_REGION"),
		},
		Paths: Paths{
			I94Input:                lookup(v, file, "LOCAL", "I94_INPUT_PATH"),
			AirportsInput:           lookup(v, file, "LOCAL", "AIRPORTS_INPUT_PATH"),
			PortsInput:              lookup(v, file, "LOCAL", "PORTS_INPUT_PATH"),
			CountryInput:            lookup(v, file, "LOCAL", "COUNTRY_INPUT_PATH"),
			CountryTemperatureInput: lookup(v, file, "LOCAL", "COUNTRY_TEMPERATURE_INPUT_PATH"),
			CityTemperatureInput:    lookup(v, file, "LOCAL", "CITY_TEMPERATURE_INPUT_PATH"),
			DemographicsInput:       lookup(v, file, "LOCAL", "DEMO_INPUT_PATH"),
			Output:                  lookup(v, file, "LOCAL", "OUTPUT_PATH"),
		},
		PostgresDSN: lookup(v, file, "POSTGRES", "POSTGRES_DSN"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// lookup reads a key from the environment first, then from the named INI
// section of the config file.
func lookup(v *viper.Viper, file *ini.File, section, key string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	if file == nil {
		return ""
	}
	return file.Section(section).Key(key).String()
}

func (c *Config) validate() error {
	missing := []string{}
	checks := []struct {
		key   string
		value string
	}{
		{"I94_INPUT_PATH", c.Paths.I94Input},
		{"AIRPORTS_INPUT_PATH", c.Paths.AirportsInput},
		{"PORTS_INPUT_PATH", c.Paths.PortsInput},
		{"COUNTRY_INPUT_PATH", c.Paths.CountryInput},
		{"COUNTRY_TEMPERATURE_INPUT_PATH", c.Paths.CountryTemperatureInput},
		{"CITY_TEMPERATURE_INPUT_PATH", c.Paths.CityTemperatureInput},
		{"DEMO_INPUT_PATH", c.Paths.DemographicsInput},
		{"OUTPUT_PATH", c.Paths.Output},
	}
	for _, check := range checks {
		if check.value == "" {
			missing = append(missing, check.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// UsesS3 reports whether any configured path is a remote S3 locator.
func (c *Config) UsesS3() bool {
	for _, p := range []string{
		c.Paths.I94Input, c.Paths.AirportsInput, c.Paths.PortsInput,
		c.Paths.CountryInput, c.Paths.CountryTemperatureInput,
		c.Paths.CityTemperatureInput, c.Paths.DemographicsInput, c.Paths.Output,
	} {
		if strings.HasPrefix(p, "s3://") {
			return true
		}
	}
	return false
}
