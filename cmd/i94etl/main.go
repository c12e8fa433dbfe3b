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

// Command i94etl runs one batch of the immigration warehouse build: it
// loads the configured input datasets, derives the six output tables, and
// writes them as parquet datasets under the output root.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aurora-data/i94etl/config"
	"github.com/aurora-data/i94etl/etl"
)

func main() {
	configFile := flag.String("config", "dl.cfg", "path to the configuration file; empty reads the environment only")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := etl.NewRunner(cfg, logger)
	if err != nil {
		logger.Error("startup error", "error", err)
		os.Exit(1)
	}
	defer runner.Close()

	if err := runner.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("run complete")
}
