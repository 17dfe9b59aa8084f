package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Open opens the SQLite file at path and brings its schema up to date.
func Open(path string) (db *sql.DB, err error) {
	db, err = sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, errors.Wrapf(err, "database: open %s", path)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "database: ping %s", path)
	}

	// sqlite serializes writers anyway; keep a small pool for readers
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if err = migrateDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database: migrate")
	}

	return db, nil
}

// dsn enables full fsync on commit and waits on a busy writer instead of
// failing with SQLITE_BUSY.
func dsn(path string) string {
	return "file:" + path + "?_busy_timeout=5000&_synchronous=FULL&_foreign_keys=on"
}
