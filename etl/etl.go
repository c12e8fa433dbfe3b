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

// Package etl builds the warehouse output tables from the raw input
// datasets: one constructor per table, all pure functions from materialized
// input Tables to a materialized output Table. Reading and writing live in
// loader/ and writers/; the runner ties the stages together.
package etl

import (
	"context"

	"github.com/aurora-data/i94etl"
)

// apply runs a transformer and filter chain over a materialized table and
// returns the resulting table.
func apply(ctx context.Context, t i94etl.Table, transformers []i94etl.Transformer, filters []i94etl.Filter) (i94etl.Table, error) {
	return i94etl.Collect(ctx, i94etl.NewTableSource(t), transformers, filters)
}
