package postgres

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// MigrationsFS returns the embedded goose migration files. Callers pass
// this to goose.SetBaseFS and run migrations against the "migrations"
// directory.
func MigrationsFS() fs.FS {
	return embeddedMigrations
}

// MigrationsDir is the directory inside MigrationsFS holding the SQL files.
const MigrationsDir = "migrations"
