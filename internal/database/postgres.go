package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

var ratingsSchema = []string{`
create table if not exists tree_ratings (
	id                      bigserial primary key,
	image_url               text not null,
	aesthetics_score        double precision not null default 0,
	aesthetics_explanation  text not null default '',
	originality_score       double precision not null default 0,
	originality_explanation text not null default '',
	great_features          text not null default '',
	improvements            jsonb not null default '[]'::jsonb,
	created_at              timestamptz not null default now()
)`,
	`create index if not exists tree_ratings_aesthetics_idx on tree_ratings (aesthetics_score desc, id)`,
}

// OpenPostgres opens a pgx-backed *sql.DB, pings it and ensures the
// tree_ratings table exists.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	for _, stmt := range ratingsSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return db, nil
}
