// Package migrations embeds the Postgres migration files for the server.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
