// Package migrations embeds the bootstrap schema files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
