// Package migrations embeds the SQL migration files for the HOS Logbook
// schema so goose can apply them programmatically at startup and in tests.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time, so the server
// binary never depends on a migrations directory being present at runtime.
//
//go:embed *.sql
var FS embed.FS
