// Package migrations embeds SQL migration files into the binary.
//
// The rundown service runs migrations without needing the SQL files on the
// filesystem; they are compiled into the executable.
package migrations

import (
	"embed"

	"github.com/nerrad567/rundown-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
