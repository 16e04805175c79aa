package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS favorites (
	id         BIGSERIAL PRIMARY KEY,
	type       TEXT NOT NULL DEFAULT 'video',
	title      TEXT NOT NULL,
	url        TEXT UNIQUE NOT NULL,
	image      TEXT NOT NULL DEFAULT '',
	channel    TEXT NOT NULL DEFAULT '',
	video_id   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS history (
	id         BIGSERIAL PRIMARY KEY,
	type       TEXT NOT NULL DEFAULT 'video',
	title      TEXT NOT NULL,
	url        TEXT NOT NULL,
	image      TEXT NOT NULL DEFAULT '',
	channel    TEXT NOT NULL DEFAULT '',
	video_id   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// PostgresStore is the pgx-backed gateway.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a pgx pool, pings it and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	slog.Info("postgres store connected", slog.String("host", config.ConnConfig.Host))
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) AddFavorite(ctx context.Context, f Favorite) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO favorites (type, title, url, image, channel, video_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (url) DO NOTHING`,
		f.Type, f.Title, f.URL, f.Image, f.Channel, f.VideoID)
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListFavorites(ctx context.Context) ([]Favorite, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, type, title, url, image, channel, video_id, created_at
		 FROM favorites ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.Type, &f.Title, &f.URL, &f.Image, &f.Channel, &f.VideoID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

func (s *PostgresStore) DeleteFavorite(ctx context.Context, url string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM favorites WHERE url = $1`, url)
	if err != nil {
		return 0, fmt.Errorf("delete favorite: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) AddHistory(ctx context.Context, h HistoryEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO history (type, title, url, image, channel, video_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		h.Type, h.Title, h.URL, h.Image, h.Channel, h.VideoID)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, type, title, url, image, channel, video_id, created_at
		 FROM history ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.Type, &h.Title, &h.URL, &h.Image, &h.Channel, &h.VideoID, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) DeleteHistory(ctx context.Context, url string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM history WHERE url = $1`, url)
	if err != nil {
		return 0, fmt.Errorf("delete history: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) ClearHistory(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
