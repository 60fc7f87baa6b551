package repository

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every embedded migration in file name order. The scripts
// are idempotent, so Migrate is safe to run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool, retries int) error {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := execWithRetry(ctx, pool, string(script), retries); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		slog.Info("migration applied", "file", name)
	}
	return nil
}

func execWithRetry(ctx context.Context, pool *pgxpool.Pool, script string, retries int) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		// no arguments, so pgx sends the script over the simple protocol
		if _, err = pool.Exec(ctx, script); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return err
}
