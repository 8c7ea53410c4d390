package database

import (
	"embed"
	"errors"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var dbMigrations embed.FS

func migrateDB(db *DB) error {
	dir, err := fs.Sub(dbMigrations, "migrations/"+string(db.Dialect))
	if err != nil {
		return err
	}
	src, err := iofs.New(dir, ".")
	if err != nil {
		return err
	}

	var dst migratedb.Driver
	switch db.Dialect {
	case Postgres:
		dst, err = postgres.WithInstance(db.DB, &postgres.Config{})
	default:
		dst, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	}
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithInstance("iofs", src, string(db.Dialect), dst)
	if err != nil {
		return err
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		// db already up to date
		break
	case err != nil:
		return err
	}
	return nil
}
