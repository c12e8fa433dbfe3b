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
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/aurora-data/i94etl"
	"github.com/aurora-data/i94etl/config"
	"github.com/aurora-data/i94etl/loader"
	"github.com/aurora-data/i94etl/readers"
	"github.com/aurora-data/i94etl/writers"
)

// TableSpec declares where and how one output table is written.
type TableSpec struct {
	Name       string
	Suffix     string // path under the output root
	Mode       writers.WriteMode
	Partitions []string
	Columns    []string
}

// OutputTables is the full write policy, in execution order. Dimension
// tables are rebuilt every run; the fact tables and the calendar accumulate
// across monthly runs.
var OutputTables = []TableSpec{
	{Name: "Country", Suffix: "/parquet/Country_table", Mode: writers.Overwrite, Columns: CountryColumns},
	{Name: "Demographics", Suffix: "/parquet/Demographics_table", Mode: writers.Overwrite, Columns: DemographicsColumns},
	{Name: "Airports", Suffix: "/parquet/airports_table", Mode: writers.Overwrite, Partitions: []string{"State_Code"}, Columns: AirportsColumns},
	{Name: "Immigration", Suffix: "/parquet/immigrations_table", Mode: writers.Append, Partitions: []string{"Year", "Month"}, Columns: ImmigrationColumns},
	{Name: "Time", Suffix: "/parquet/time_table", Mode: writers.Append, Partitions: []string{"year", "month"}, Columns: TimeColumns},
	{Name: "CityTemperature", Suffix: "/parquet/city_temperatures", Mode: writers.Append, Columns: CityTemperatureColumns},
}

// Runner executes one full batch run: load inputs, build the output tables
// in fixed order, write each to its parquet destination. The first error
// aborts the run.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	mirror *writers.PostgresMirror
}

// NewRunner builds a runner. The PostgreSQL mirror is attached only when the
// config carries a DSN.
func NewRunner(cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	r := &Runner{cfg: cfg, logger: logger}
	if cfg.PostgresDSN != "" {
		mirror, err := writers.NewPostgresMirror(writers.WithPostgresDSN(cfg.PostgresDSN))
		if err != nil {
			return nil, fmt.Errorf("attach postgres mirror: %w", err)
		}
		r.mirror = mirror
	}
	return r, nil
}

// Close releases the runner's resources.
func (r *Runner) Close() error {
	if r.mirror != nil {
		return r.mirror.Close()
	}
	return nil
}

// Run executes the batch in fixed order: country, ports, demographics,
// airports, immigration with its time dimension, city temperatures.
func (r *Runner) Run(ctx context.Context) error {
	spec := specByName()

	countries, err := r.load(ctx, "countries", r.cfg.Paths.CountryInput)
	if err != nil {
		return err
	}
	countryTemps, err := r.load(ctx, "country_temperatures", r.cfg.Paths.CountryTemperatureInput)
	if err != nil {
		return err
	}
	country, err := BuildCountryTable(ctx, countries, countryTemps)
	if err != nil {
		return fmt.Errorf("build country table: %w", err)
	}
	if err := r.writeTable(ctx, spec["Country"], country); err != nil {
		return err
	}

	rawPorts, err := r.load(ctx, "ports", r.cfg.Paths.PortsInput)
	if err != nil {
		return err
	}
	ports, err := BuildPortTable(ctx, rawPorts)
	if err != nil {
		return fmt.Errorf("build port table: %w", err)
	}
	r.logger.Info("built anchor table", "dataset", "ports", "rows", len(ports))

	demographics, err := r.load(ctx, "demographics", r.cfg.Paths.DemographicsInput, loader.WithDelimiter(';'))
	if err != nil {
		return err
	}
	demographicsTable, err := BuildDemographicsTable(ctx, demographics, ports)
	if err != nil {
		return fmt.Errorf("build demographics table: %w", err)
	}
	if err := r.writeTable(ctx, spec["Demographics"], demographicsTable); err != nil {
		return err
	}

	airports, err := r.load(ctx, "airports", r.cfg.Paths.AirportsInput)
	if err != nil {
		return err
	}
	airportsTable, err := BuildAirportsTable(ctx, airports, ports)
	if err != nil {
		return fmt.Errorf("build airports table: %w", err)
	}
	if err := r.writeTable(ctx, spec["Airports"], airportsTable); err != nil {
		return err
	}

	rawImmigration, err := r.load(ctx, "immigration", r.cfg.Paths.I94Input)
	if err != nil {
		return err
	}
	immigration, err := BuildImmigrationTable(ctx, rawImmigration)
	if err != nil {
		return fmt.Errorf("build immigration table: %w", err)
	}
	if err := r.writeTable(ctx, spec["Immigration"], immigration); err != nil {
		return err
	}
	timeTable, err := BuildTimeTable(ctx, rawImmigration)
	if err != nil {
		return fmt.Errorf("build time table: %w", err)
	}
	if err := r.writeTable(ctx, spec["Time"], timeTable); err != nil {
		return err
	}

	cityTemps, err := r.load(ctx, "city_temperatures", r.cfg.Paths.CityTemperatureInput)
	if err != nil {
		return err
	}
	cityTempTable, err := BuildCityTemperatureTable(ctx, cityTemps, ports)
	if err != nil {
		return fmt.Errorf("build city temperature table: %w", err)
	}
	return r.writeTable(ctx, spec["CityTemperature"], cityTempTable)
}

// load reads one input dataset and logs its row count. S3 credentials are
// plumbed through only when the configuration points at remote locators.
func (r *Runner) load(ctx context.Context, name, locator string, extra ...loader.Option) (i94etl.Table, error) {
	opts := []loader.Option{loader.WithInferSchema(true)}
	if r.cfg.UsesS3() {
		opts = append(opts, loader.WithS3Options(r.s3Options()...))
	}
	opts = append(opts, extra...)

	table, err := loader.Load(ctx, locator, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	r.logger.Info("loaded dataset", "dataset", name, "locator", locator, "rows", len(table))
	return table, nil
}

// writeTable writes one output table per its spec, logging the row count
// before the write and the dataset total after it.
func (r *Runner) writeTable(ctx context.Context, spec TableSpec, table i94etl.Table) error {
	r.logger.Info("writing table",
		"table", spec.Name, "rows", len(table),
		"mode", spec.Mode.String(), "dest", spec.Suffix)

	dest := strings.TrimSuffix(r.cfg.Paths.Output, "/") + spec.Suffix
	datasetOpts := []writers.DatasetOption{
		writers.WithWriteMode(spec.Mode),
		writers.WithPartitionBy(spec.Partitions...),
		writers.WithDatasetFieldOrder(spec.Columns),
	}

	if strings.HasPrefix(dest, "s3://") {
		if err := r.writeRemote(ctx, spec, table, dest, datasetOpts); err != nil {
			return err
		}
	} else {
		if err := writers.WriteDataset(ctx, table, dest, datasetOpts...); err != nil {
			return fmt.Errorf("write %s: %w", spec.Name, err)
		}
		written, err := loader.CountDatasetRows(ctx, dest)
		if err != nil {
			return fmt.Errorf("verify %s: %w", spec.Name, err)
		}
		r.logger.Info("wrote table", "table", spec.Name, "dataset_rows", written)
	}

	if r.mirror != nil {
		if err := r.mirror.MirrorTable(ctx, path.Base(spec.Suffix), table, spec.Mode, spec.Columns); err != nil {
			return fmt.Errorf("mirror %s: %w", spec.Name, err)
		}
	}
	return nil
}

// writeRemote stages the dataset on local disk, verifies it, then syncs the
// directory to S3.
func (r *Runner) writeRemote(ctx context.Context, spec TableSpec, table i94etl.Table, dest string, datasetOpts []writers.DatasetOption) error {
	stage, err := os.MkdirTemp("", "i94etl-stage-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", spec.Name, err)
	}
	defer os.RemoveAll(stage)

	// The staging directory is always fresh; the remote prefix carries the
	// overwrite-vs-append semantics.
	stageOpts := append([]writers.DatasetOption{}, datasetOpts...)
	stageOpts = append(stageOpts, writers.WithWriteMode(writers.Overwrite))
	if err := writers.WriteDataset(ctx, table, stage, stageOpts...); err != nil {
		return fmt.Errorf("write %s: %w", spec.Name, err)
	}

	written, err := loader.CountDatasetRows(ctx, stage)
	if err != nil {
		return fmt.Errorf("verify %s: %w", spec.Name, err)
	}
	r.logger.Info("staged table", "table", spec.Name, "dataset_rows", written)

	uploader, err := writers.NewS3Uploader(ctx, writers.S3UploaderOptions{
		Region:          r.cfg.AWS.Region,
		AccessKeyID:     r.cfg.AWS.AccessKeyID,
		SecretAccessKey: r.cfg.AWS.SecretAccessKey,
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", spec.Name, err)
	}
	if err := uploader.SyncDir(ctx, stage, dest, spec.Mode); err != nil {
		return fmt.Errorf("write %s: %w", spec.Name, err)
	}
	return nil
}

func (r *Runner) s3Options() []readers.OptionS3 {
	opts := []readers.OptionS3{}
	if r.cfg.AWS.Region != "" {
		opts = append(opts, readers.WithS3Region(r.cfg.AWS.Region))
	}
	if r.cfg.AWS.AccessKeyID != "" {
		opts = append(opts, readers.WithS3Credentials(r.cfg.AWS.AccessKeyID, r.cfg.AWS.SecretAccessKey))
	}
	return opts
}

func specByName() map[string]TableSpec {
	out := make(map[string]TableSpec, len(OutputTables))
	for _, spec := range OutputTables {
		out[spec.Name] = spec
	}
	return out
}
