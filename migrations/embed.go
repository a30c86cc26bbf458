// Package migrations embeds the schema so the binaries carry their own DDL.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
