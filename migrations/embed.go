// Package migrations embeds the versioned SQL schema for the journal,
// user and weekly profile tables.
package migrations

import "embed"

// FS holds the embedded migration files, applied in version order.
//
//go:embed *.sql
var FS embed.FS
