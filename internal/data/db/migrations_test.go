package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func openRawConn(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), FileName)
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", dbPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestMigrateUp_FreshDB(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	migrations, err := loadMigrations()
	require.NoError(t, err)

	version, err := SchemaVersion(ctx, database.Conn())
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)

	_, err = database.Conn().ExecContext(ctx, "SELECT 1 FROM kv_store LIMIT 0")
	require.NoError(t, err, "kv_store table should exist")
}

func TestMigrateUp_Idempotent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, migrateUp(ctx, database.Conn()))

	version, err := SchemaVersion(ctx, database.Conn())
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestMigrateUp_NewerSchemaRejected(t *testing.T) {
	conn := openRawConn(t)
	ctx := context.Background()

	_, err := conn.ExecContext(ctx, "PRAGMA user_version = 99")
	require.NoError(t, err)

	err = migrateUp(ctx, conn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than this build")
}

func TestMigrateDown(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	conn := database.Conn()

	_, err := conn.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, created_at, updated_at)
		VALUES ('snapshot:state', '{}', 1, 1)
	`)
	require.NoError(t, err)

	require.NoError(t, MigrateDown(ctx, conn, 1))

	_, err = conn.ExecContext(ctx, "SELECT 1 FROM kv_store LIMIT 0")
	require.Error(t, err, "kv_store should not exist after down migration")

	version, err := SchemaVersion(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, 0, version)

	// Migrating up again recreates the table.
	require.NoError(t, migrateUp(ctx, conn))
	_, err = conn.ExecContext(ctx, "SELECT 1 FROM kv_store LIMIT 0")
	require.NoError(t, err)
}

func TestMigrateDown_InvalidN(t *testing.T) {
	conn := openRawConn(t)
	ctx := context.Background()

	require.Error(t, MigrateDown(ctx, conn, 0))
	require.Error(t, MigrateDown(ctx, conn, -1))
}

func TestMigrateDown_TooMany(t *testing.T) {
	database := openTestDB(t)

	err := MigrateDown(context.Background(), database.Conn(), 2)
	assert.Error(t, err)
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.UpSQL)
		assert.NotEmpty(t, m.DownSQL)
	}
	assert.Equal(t, "kv_store", migrations[0].Name)
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion int
		wantName    string
		wantErr     bool
	}{
		{"0001_kv_store.up.sql", 1, "kv_store", false},
		{"0007_add_item_index.up.sql", 7, "add_item_index", false},
		{"0001_kv_store.down.sql", 0, "", true},
		{"bad.sql", 0, "", true},
		{"0000_zero.up.sql", 0, "", true},
		{"abc_notnumber.up.sql", 0, "", true},
		{"0001_.up.sql", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, err := parseMigrationName(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
			assert.Equal(t, tt.wantName, name)
		})
	}
}
