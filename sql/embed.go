package sql

import "embed"

// MigrationsFS holds the numbered schema migrations applied at startup.
//
//go:embed schema/*.sql
var MigrationsFS embed.FS
