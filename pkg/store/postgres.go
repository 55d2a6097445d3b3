package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/stateflow/pkg/io"
	"github.com/matzehuels/stateflow/pkg/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS diagrams (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	doc        JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS diagrams_updated_at_idx ON diagrams (updated_at DESC, id);
`

// Postgres stores each record as jsonb in the diagrams table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL and creates the table if needed.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, unavailable(err, "create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable(err, "database unreachable")
	}

	s := &Postgres{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, unavailable(err, "migrate")
	}
	return s, nil
}

func (s *Postgres) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return err
}

// Truncate removes every row. Used by tests.
func (s *Postgres) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE diagrams`)
	return err
}

func (s *Postgres) Get(ctx context.Context, id string) (*model.Diagram, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM diagrams WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, NotFound(id)
		}
		return nil, unavailable(err, "get diagram %s", id)
	}
	return io.UnmarshalRecord(doc)
}

func (s *Postgres) Put(ctx context.Context, d *model.Diagram) error {
	if err := checkPut(d); err != nil {
		return err
	}
	doc, err := io.MarshalRecord(d)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO diagrams (id, name, updated_at, doc) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at, doc = EXCLUDED.doc`,
		d.ID, d.Name, d.UpdatedAt, string(doc))
	if err != nil {
		return unavailable(err, "put diagram %s", d.ID)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM diagrams WHERE id = $1`, id); err != nil {
		return unavailable(err, "delete diagram %s", id)
	}
	return nil
}

func (s *Postgres) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM diagrams ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, unavailable(err, "list diagrams")
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, unavailable(err, "scan diagram")
		}
		d, err := io.UnmarshalRecord(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, Summarize(d))
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, "list diagrams")
	}
	SortSummaries(out)
	return out, nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*Postgres)(nil)
