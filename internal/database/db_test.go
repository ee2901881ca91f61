package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    "file:" + t.Name() + "?mode=memory&cache=shared",
		Profile: ProfileMemory,
		Name:    "rebalancer",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBuildConnectionString(t *testing.T) {
	std := buildConnectionString("/data/rebalancer.db", ProfileStandard)
	assert.Contains(t, std, "/data/rebalancer.db?_pragma=journal_mode(WAL)")
	assert.Contains(t, std, "&_pragma=foreign_keys(1)")

	mem := buildConnectionString("file:x?mode=memory", ProfileMemory)
	assert.Contains(t, mem, "file:x?mode=memory&_pragma=journal_mode(MEMORY)")
	assert.NotContains(t, mem, "WAL")
}

func TestMigrate_CreatesTables(t *testing.T) {
	db := newMemoryDB(t)
	require.NoError(t, db.Migrate())
	// Idempotent
	require.NoError(t, db.Migrate())

	for _, table := range []string{"target_states", "positions", "fixed_income_items"} {
		var name string
		err := db.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db, err := New(Config{Path: "file:unknown_schema?mode=memory&cache=shared", Profile: ProfileMemory, Name: "unknown"})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Migrate())
}

func TestNew_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rebalancer.db")
	db, err := New(Config{Path: path, Name: "rebalancer"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())
	assert.Equal(t, "rebalancer", db.Name())
	require.NoError(t, db.Migrate())
	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestWithTransaction(t *testing.T) {
	db := newMemoryDB(t)
	_, err := db.Conn().Exec("CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)")
	require.NoError(t, err)

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO kv VALUES ('a', '1')")
		return err
	})
	require.NoError(t, err)

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO kv VALUES ('b', '2')"); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		panic("kaboom")
	})
	require.Error(t, err)

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM kv").Scan(&count))
	assert.Equal(t, 1, count)

	assert.Error(t, WithTransaction(nil, func(tx *sql.Tx) error { return nil }))
}
