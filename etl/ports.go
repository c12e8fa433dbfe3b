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
	"github.com/aurora-data/i94etl/transform"
)

// PortColumns is the schema of the ports anchor table.
var PortColumns = []string{"Port_Code", "Port_City", "State_Code"}

// BuildPortTable normalizes the I94 port reference extract into the shared
// anchor table. Every city-level dataset joins against this table, so it is
// built once per run and passed around read-only.
func BuildPortTable(ctx context.Context, ports i94etl.Table) (i94etl.Table, error) {
	return apply(ctx, ports,
		[]i94etl.Transformer{
			transform.Rename(map[string]string{
				"Code":  "Port_Code",
				"City":  "Port_City",
				"State": "State_Code",
			}),
			transform.Select(PortColumns...),
		}, nil)
}
