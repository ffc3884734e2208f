// Package migrations embeds the goose SQL migrations so the migrate binary
// runs standalone, without the source tree alongside it.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
