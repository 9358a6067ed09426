package migrations

import "embed"

// FS contains embedded SQLite migrations for assembly audit storage.
//
//go:embed *.sql
var FS embed.FS
