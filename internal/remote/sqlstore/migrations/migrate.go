// Package migrations holds the embedded schema for the self-hosted data
// service and applies it in version order.
package migrations

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
)

//go:embed *.sql
var files embed.FS

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// Migration is one numbered schema step with its revert script.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Placeholder renders the n-th (1-based) bind parameter for a driver.
type Placeholder func(n int) string

// QuestionMark is the SQLite placeholder style.
func QuestionMark(int) string { return "?" }

// Dollar is the Postgres placeholder style.
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// RunMigrations applies every embedded migration not yet recorded in
// schema_migrations, each in its own transaction.
func RunMigrations(ctx context.Context, db *sql.DB, ph Placeholder) error {
	const ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	pending, applied, err := plan(ctx, db)
	if err != nil {
		return err
	}
	record := "INSERT INTO schema_migrations (version) VALUES (" + ph(1) + ")"
	for _, m := range pending {
		if applied[m.Version] {
			continue
		}
		if err := step(ctx, db, m.Up, record, m.Version); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.Name, err)
		}
	}
	return nil
}

// Rollback reverts the newest applied migration. It is a no-op when nothing
// has been applied.
func Rollback(ctx context.Context, db *sql.DB, ph Placeholder) error {
	all, applied, err := plan(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range slices.Backward(all) {
		if !applied[m.Version] {
			continue
		}
		forget := "DELETE FROM schema_migrations WHERE version = " + ph(1)
		if err := step(ctx, db, m.Down, forget, m.Version); err != nil {
			return fmt.Errorf("failed to revert migration %s: %w", m.Name, err)
		}
		return nil
	}
	return nil
}

func plan(ctx context.Context, db *sql.DB) ([]Migration, map[int]bool, error) {
	all, err := Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	return all, applied, nil
}

// step runs script and the bookkeeping statement atomically.
func step(ctx context.Context, db *sql.DB, script, bookkeeping string, version int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, version); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the embedded migrations ordered by version. Every up script
// must have a matching down script.
func Load() ([]Migration, error) {
	names, err := fs.Glob(files, "*"+upSuffix)
	if err != nil {
		return nil, err
	}

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		version := extractVersion(name)
		if version == 0 {
			continue
		}
		base := strings.TrimSuffix(name, upSuffix)
		up, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		down, err := files.ReadFile(base + downSuffix)
		if err != nil {
			return nil, fmt.Errorf("migration %s has no down script: %w", base, err)
		}
		out = append(out, Migration{Version: version, Name: base, Up: string(up), Down: string(down)})
	}

	slices.SortFunc(out, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return out, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		seen[v] = true
	}
	return seen, rows.Err()
}

// extractVersion parses the numeric prefix of "000001_name.up.sql"; 0 means
// the file is not a migration.
func extractVersion(filename string) int {
	prefix, _, ok := strings.Cut(filename, "_")
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(prefix)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
