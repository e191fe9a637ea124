// Package migrations embeds the SQL schema applied by goose on startup.
package migrations

import "embed"

// FS holds one directory of goose migrations per SQL dialect: postgres/ and sqlite/.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
