package database

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/mbolis/survey-publisher/config"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

// DB is the local store behind the handoff slots and the submission
// receiver.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// DialectOf picks the driver from the URL: postgres:// and postgresql://
// go to lib/pq, anything else is a SQLite file path.
func DialectOf(url string) Dialect {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return Postgres
	}
	return SQLite
}

func Open(cfg config.Config) (*DB, error) {
	dialect := DialectOf(cfg.DBUrl)

	sqlDB, err := sql.Open(string(dialect), cfg.DBUrl)
	if err != nil {
		return nil, errors.Wrap(err, "db.open")
	}
	db := &DB{DB: sqlDB, Dialect: dialect}

	if dialect == SQLite {
		_, err = db.Exec("PRAGMA foreign_keys = ON")
		if err != nil {
			db.Close()
			return nil, errors.Wrap(err, "db.pragma")
		}
		// one writer at a time keeps SQLite away from "database is locked"
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "db.migrate")
	}

	return db, nil
}

// rebind turns ? placeholders into $n for Postgres.
func (db *DB) rebind(query string) string {
	if db.Dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
