package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"pickpath/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// NewPostgresFromDB wraps an existing handle.
func NewPostgresFromDB(db *sqlx.DB) *Postgres { return &Postgres{db: db} }

// Migrate applies the embedded schema files in name order. Each file is
// idempotent, so running it on every start is safe.
func (p *Postgres) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := p.db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
	}
	return nil
}

func (p *Postgres) SaveRun(ctx context.Context, rec model.RunRecord) error {
	const query = `
		INSERT INTO optimize_runs (
			id, warehouse, strategy, stops_count, missing_count,
			distance_meters, time_seconds, efficiency, degraded_segments,
			duration_ms, created_at
		) VALUES (
			:id, :warehouse, :strategy, :stops_count, :missing_count,
			:distance_meters, :time_seconds, :efficiency, :degraded_segments,
			:duration_ms, :created_at
		)
		ON CONFLICT (id) DO NOTHING`
	_, err := p.db.NamedExecContext(ctx, query, rec)
	return err
}

const runColumns = `id::text AS id, warehouse, strategy, stops_count, missing_count,
	distance_meters, time_seconds, efficiency, degraded_segments, duration_ms, created_at`

func (p *Postgres) GetRun(ctx context.Context, id string) (model.RunRecord, error) {
	var rec model.RunRecord
	err := p.db.GetContext(ctx, &rec, `SELECT `+runColumns+` FROM optimize_runs WHERE id::text = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RunRecord{}, ErrNotFound
	}
	return rec, err
}

func (p *Postgres) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	out := []model.RunRecord{}
	err := p.db.SelectContext(ctx, &out,
		`SELECT `+runColumns+` FROM optimize_runs ORDER BY created_at DESC LIMIT $1`, clampLimit(limit))
	return out, err
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) Close() error { return p.db.Close() }
