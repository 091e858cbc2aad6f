package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const ledgerDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Run applies every embedded migration not yet recorded in the
// schema_migrations ledger, each inside its own transaction. Against an
// up-to-date database it is a no-op, so it is safe on every start.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "migrations")

	if _, err := db.ExecContext(ctx, ledgerDDL); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	versions, err := embeddedVersions()
	if err != nil {
		return err
	}

	for _, version := range versions {
		if applied[version] {
			continue
		}
		if err := applyOne(ctx, db, logger, version); err != nil {
			return err
		}
	}
	return nil
}

// appliedVersions loads the ledger into a set.
func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// embeddedVersions lists the embedded migration versions in apply order. The
// version is the file name without its .sql suffix, so the lexical order
// fs.Glob returns is the apply order.
func embeddedVersions() ([]string, error) {
	paths, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	versions := make([]string, 0, len(paths))
	for _, path := range paths {
		name := strings.TrimPrefix(path, "migrations/")
		versions = append(versions, strings.TrimSuffix(name, ".sql"))
	}
	return versions, nil
}

// applyOne executes one migration and records it in the ledger, both inside
// the same transaction so a failed migration leaves no trace.
func applyOne(ctx context.Context, db *sql.DB, logger *slog.Logger, version string) error {
	ddl, err := migrationFiles.ReadFile("migrations/" + version + ".sql")
	if err != nil {
		return fmt.Errorf("read migration %s: %w", version, err)
	}

	logger.InfoContext(ctx, "applying migration", "version", version)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, string(ddl)); err != nil {
		rollback(ctx, logger, tx, version)
		return fmt.Errorf("apply migration %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		rollback(ctx, logger, tx, version)
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", version, err)
	}
	return nil
}

func rollback(ctx context.Context, logger *slog.Logger, tx *sql.Tx, version string) {
	if err := tx.Rollback(); err != nil {
		logger.ErrorContext(ctx, "rollback migration", "version", version, "error", err)
	}
}
