package migrations

import "embed"

// FS holds the goose migrations for the SQL storage backends.
//
//go:embed *.sql
var FS embed.FS
