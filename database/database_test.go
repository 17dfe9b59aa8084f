package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MigratesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intakes.sqlite3")

	db, err := Open(path)
	require.NoError(t, err)

	var n int
	err = db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'intakes'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'index' AND tbl_name = 'intakes'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, db.Close())

	// second open hits ErrNoChange
	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "x.sqlite3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database:")
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "file:a.db?_busy_timeout=5000&_synchronous=FULL&_foreign_keys=on", dsn("a.db"))
}
