package migrations

import "embed"

// FS contains the golang-migrate SQL files for the SQLite backend.
//
//go:embed *.sql
var FS embed.FS
