package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS favorites (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	type       TEXT NOT NULL DEFAULT 'video',
	title      TEXT NOT NULL,
	url        TEXT UNIQUE NOT NULL,
	image      TEXT NOT NULL DEFAULT '',
	channel    TEXT NOT NULL DEFAULT '',
	video_id   TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	type       TEXT NOT NULL DEFAULT 'video',
	title      TEXT NOT NULL,
	url        TEXT NOT NULL,
	image      TEXT NOT NULL DEFAULT '',
	channel    TEXT NOT NULL DEFAULT '',
	video_id   TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);`

// SQLiteStore is the local-file gateway used when no DATABASE_URL is set.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database. An empty path defaults
// to ~/.msxtube/msxtube.db.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		dir := filepath.Join(os.Getenv("HOME"), ".msxtube")
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
		}
		path = filepath.Join(dir, "msxtube.db")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}

	slog.Info("sqlite store opened", slog.String("path", path))
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		slog.Warn("sqlite close", slog.Any("error", err))
	}
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseRFC3339(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *SQLiteStore) AddFavorite(ctx context.Context, f Favorite) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (type, title, url, image, channel, video_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.Type, f.Title, f.URL, f.Image, f.Channel, f.VideoID, nowRFC3339())
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListFavorites(ctx context.Context) ([]Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, title, url, image, channel, video_id, created_at
		 FROM favorites ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []Favorite
	for rows.Next() {
		var f Favorite
		var created string
		if err := rows.Scan(&f.ID, &f.Type, &f.Title, &f.URL, &f.Image, &f.Channel, &f.VideoID, &created); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		f.CreatedAt = parseRFC3339(created)
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

func (s *SQLiteStore) DeleteFavorite(ctx context.Context, url string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE url = ?`, url)
	if err != nil {
		return 0, fmt.Errorf("delete favorite: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) AddHistory(ctx context.Context, h HistoryEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (type, title, url, image, channel, video_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.Type, h.Title, h.URL, h.Image, h.Channel, h.VideoID, nowRFC3339())
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, title, url, image, channel, video_id, created_at
		 FROM history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		var created string
		if err := rows.Scan(&h.ID, &h.Type, &h.Title, &h.URL, &h.Image, &h.Channel, &h.VideoID, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		h.CreatedAt = parseRFC3339(created)
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) DeleteHistory(ctx context.Context, url string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE url = ?`, url)
	if err != nil {
		return 0, fmt.Errorf("delete history: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
