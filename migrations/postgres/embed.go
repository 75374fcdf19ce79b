// Package migrations embeds SQL migration files.
package migrations

import "embed"

// ControlPlaneFS contains the control-plane migrations (tenants + config).
//
//go:embed controlplane/*.sql
var ControlPlaneFS embed.FS

// ControlPlaneDir is the directory within ControlPlaneFS where migrations live.
const ControlPlaneDir = "controlplane"
