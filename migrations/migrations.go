// Package migrations embeds the SQL schema applied by cmd/migrate and the
// postgres test container.
package migrations

import "embed"

// FS holds every NNNNNN_name.{up,down}.sql file.
//
//go:embed *.sql
var FS embed.FS
