// Package migrations embeds the SQLite schema for the key-value store.
package migrations

import "embed"

//go:embed *.sql
var SQLite embed.FS
