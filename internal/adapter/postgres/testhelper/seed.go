package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedLog inserts a log record directly, bypassing the repository.
// Optional fields are nil.
func SeedLog(t *testing.T, pool *pgxpool.Pool, id string, startAt, updatedAt time.Time) {
	t.Helper()

	const sql = `
INSERT INTO logs (id, start_at, end_at, note, updated_at_server, deleted_at_server)
VALUES ($1, $2, NULL, NULL, $3, NULL)`

	if _, err := pool.Exec(context.Background(), sql, id, startAt, updatedAt); err != nil {
		t.Fatalf("testhelper: seed log %s: %v", id, err)
	}
}

// SeedTombstone inserts an already-deleted log record directly.
func SeedTombstone(t *testing.T, pool *pgxpool.Pool, id string, startAt, updatedAt, deletedAt time.Time) {
	t.Helper()

	const sql = `
INSERT INTO logs (id, start_at, end_at, note, updated_at_server, deleted_at_server)
VALUES ($1, $2, NULL, NULL, $3, $4)`

	if _, err := pool.Exec(context.Background(), sql, id, startAt, updatedAt, deletedAt); err != nil {
		t.Fatalf("testhelper: seed tombstone %s: %v", id, err)
	}
}
