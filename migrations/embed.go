// Package migrations holds the versioned database schema.
package migrations

import "embed"

// FS contains every *.up.sql and *.down.sql migration, applied in version order.
//
//go:embed *.sql
var FS embed.FS
