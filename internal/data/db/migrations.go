package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/colonyops/shoplist/internal/core/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration is one schema step. The applied version is stored in
// PRAGMA user_version.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// loadMigrations reads every NNNN_name.up.sql with its matching .down.sql,
// ordered by version. Versions must be contiguous from 1.
func loadMigrations() ([]Migration, error) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(ups))
	for _, up := range ups {
		version, name, err := parseMigrationName(path.Base(up))
		if err != nil {
			return nil, fmt.Errorf("migration %s: %w", path.Base(up), err)
		}

		upSQL, err := fs.ReadFile(migrationsFS, up)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", up, err)
		}

		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		downSQL, err := fs.ReadFile(migrationsFS, down)
		if err != nil {
			return nil, fmt.Errorf("migration %04d has no down file: %w", version, err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    name,
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
	}

	slices.SortFunc(migrations, func(a, b Migration) int { return a.Version - b.Version })

	for i, m := range migrations {
		if m.Version != i+1 {
			return nil, fmt.Errorf("migration versions must be contiguous from 1, found %04d at position %d", m.Version, i+1)
		}
	}

	return migrations, nil
}

// parseMigrationName splits "NNNN_name.up.sql" into its version and name.
func parseMigrationName(filename string) (int, string, error) {
	base, ok := strings.CutSuffix(filename, ".up.sql")
	if !ok {
		return 0, "", fmt.Errorf("expected .up.sql suffix")
	}

	num, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return 0, "", fmt.Errorf("expected NNNN_name.up.sql")
	}

	version, err := strconv.Atoi(num)
	if err != nil || version <= 0 {
		return 0, "", fmt.Errorf("version %q must be a positive integer", num)
	}

	return version, name, nil
}

// SchemaVersion returns the applied schema version.
func SchemaVersion(ctx context.Context, conn *sql.DB) (int, error) {
	var version int
	if err := conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}

// migrateUp applies every migration newer than the stored schema version.
func migrateUp(ctx context.Context, conn *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	current, err := SchemaVersion(ctx, conn)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this build (%d)", current, len(migrations))
	}

	for _, m := range migrations[current:] {
		logging.Component("db").Debug().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")
		if err := step(ctx, conn, m.UpSQL, m.Version); err != nil {
			return fmt.Errorf("migration %04d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// MigrateDown reverts the last n applied migrations, newest first.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	if n <= 0 {
		return fmt.Errorf("n must be positive, got %d", n)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	current, err := SchemaVersion(ctx, conn)
	if err != nil {
		return err
	}
	if n > current {
		return fmt.Errorf("requested %d down migrations but only %d are applied", n, current)
	}

	for v := current; v > current-n; v-- {
		m := migrations[v-1]
		logging.Component("db").Info().Int("version", m.Version).Str("name", m.Name).Msg("reverting migration")
		if err := step(ctx, conn, m.DownSQL, v-1); err != nil {
			return fmt.Errorf("revert migration %04d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// step runs stmt and records version in one transaction.
func step(ctx context.Context, conn *sql.DB, stmt string, version int) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return tx.Commit()
}
