// Package db embeds the goose SQL migrations so they can be applied
// both at application startup and from tests.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
