package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"trendhire/internal/logger"
	"trendhire/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS listings (
	id          BIGSERIAL PRIMARY KEY,
	source_name TEXT NOT NULL,
	origin_url  TEXT NOT NULL UNIQUE,
	page_number INT NOT NULL,
	title       TEXT,
	company     TEXT,
	location    TEXT,
	fields      JSONB NOT NULL,
	fetched_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS listings_source_idx ON listings (source_name);
`

// Postgres persists listing records, deduplicated on origin_url.
type Postgres struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPostgres connects, verifies the connection and ensures the schema.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Postgres{pool: pool, log: logger.New("Store")}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) HealthCheck(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// SaveListings upserts records, skipping ones whose origin_url is already
// known. Returns how many rows were actually inserted.
func (p *Postgres) SaveListings(ctx context.Context, records []model.ListingRecord) (int, error) {
	inserted := 0
	for _, r := range records {
		fields, err := json.Marshal(r.Fields)
		if err != nil {
			return inserted, fmt.Errorf("marshal fields: %w", err)
		}
		tag, err := p.pool.Exec(ctx, `
			INSERT INTO listings (source_name, origin_url, page_number, title, company, location, fields, fetched_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (origin_url) DO NOTHING`,
			r.SourceName, r.OriginURL, r.PageNumber,
			r.Fields["title"], r.Fields["company"], r.Fields["location"],
			fields, r.FetchedAt,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert listing %s: %w", r.OriginURL, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
