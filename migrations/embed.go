// Package migrations embeds the SQL schema migration files.
//
// Files follow the naming convention <version>.up.sql / <version>.down.sql
// where version is YYYYMMDD_HHMMSS_description. The database package applies
// them in lexicographic version order.
package migrations

import "embed"

// FS contains all migration files embedded at build time.
//
//go:embed *.sql
var FS embed.FS
