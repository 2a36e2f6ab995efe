// Package logstore implements the synchronized log record store using
// PostgreSQL. Point lookups and writes use raw SQL; the change-feed scan
// builds its composite cursor predicate with squirrel.
package logstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/wildlings-backend/internal/adapter/postgres"
	"github.com/heartmarshall/wildlings-backend/internal/domain"
)

// Repo provides log record persistence backed by PostgreSQL.
// Records are soft-deleted only: a delete sets deleted_at_server and the
// row stays in place so pulls can observe the tombstone.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new log record repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const getSQL = `
SELECT id, start_at, end_at, note, updated_at_server, deleted_at_server
FROM logs
WHERE id = $1`

const saveSQL = `
INSERT INTO logs (id, start_at, end_at, note, updated_at_server, deleted_at_server)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    start_at          = EXCLUDED.start_at,
    end_at            = EXCLUDED.end_at,
    note              = EXCLUDED.note,
    updated_at_server = EXCLUDED.updated_at_server,
    deleted_at_server = EXCLUDED.deleted_at_server`

// Get returns the log record with the given id.
// Returns domain.ErrNotFound if no such record exists (tombstones are found).
func (r *Repo) Get(ctx context.Context, id string) (*domain.LogRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getSQL, id)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, postgres.MapError(err, "log", id)
	}

	return rec, nil
}

// Save writes the record, inserting it or overwriting the existing row.
// The caller owns updated_at_server/deleted_at_server; Save stores them as-is.
func (r *Repo) Save(ctx context.Context, rec *domain.LogRecord) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, saveSQL,
		rec.ID, rec.StartAt, rec.EndAt, rec.Note, rec.UpdatedAtServer, rec.DeletedAtServer)
	if err != nil {
		return postgres.MapError(err, "log", rec.ID)
	}

	return nil
}

// ListChanges returns up to limit records changed strictly after the cursor
// position (since, sinceID), ordered by (updated_at_server ASC, id ASC).
//
// The id tie-break matters: all records written by one push share a
// timestamp, so a purely time-based boundary would skip or repeat rows.
// A zero since means "from the beginning". An empty sinceID restricts the
// predicate to the time component only.
func (r *Repo) ListChanges(ctx context.Context, since time.Time, sinceID string, limit int) ([]*domain.LogRecord, error) {
	q := psql.
		Select("id", "start_at", "end_at", "note", "updated_at_server", "deleted_at_server").
		From("logs").
		OrderBy("updated_at_server ASC", "id ASC").
		Limit(uint64(limit))

	if !since.IsZero() {
		if sinceID != "" {
			q = q.Where(squirrel.Or{
				squirrel.Gt{"updated_at_server": since},
				squirrel.And{
					squirrel.Eq{"updated_at_server": since},
					squirrel.Gt{"id": sinceID},
				},
			})
		} else {
			q = q.Where(squirrel.Gt{"updated_at_server": since})
		}
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build changes query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list log changes: %w", err)
	}
	defer rows.Close()

	var recs []*domain.LogRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan log change: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list log changes: %w", err)
	}

	return recs, nil
}

func scanRecord(row pgx.Row) (*domain.LogRecord, error) {
	var rec domain.LogRecord
	err := row.Scan(
		&rec.ID,
		&rec.StartAt,
		&rec.EndAt,
		&rec.Note,
		&rec.UpdatedAtServer,
		&rec.DeletedAtServer,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
