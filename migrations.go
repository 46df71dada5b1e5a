// Package glowguide embeds the SQL migrations applied by the migrate command.
package glowguide

import "embed"

//go:embed migrations/postgres/*.sql migrations/mysql/*.sql
var Migrations embed.FS
