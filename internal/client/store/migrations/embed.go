// Package migrations embeds the SQLite migration files for the client
// replica store. Both scope files (owned, shared) run the same schema.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
