// Package store persists favorites and watch history. Two backends implement
// the same interface: Postgres (pgx) when DATABASE_URL is configured, and a
// local SQLite file otherwise.
package store

import (
	"context"
	"log/slog"
	"time"
)

// Favorite is a user-saved video or channel. URL is the dedup key: inserting
// the same url twice is a no-op, not an error.
type Favorite struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"` // video | channel
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Image     string    `json:"image,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	VideoID   string    `json:"video_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryEntry is one watched video. Every play appends; there is no
// uniqueness.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Image     string    `json:"image,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	VideoID   string    `json:"video_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the persistence gateway. Every operation uses a short-lived
// connection from the backend's pool; there are no cross-request
// transactions.
type Store interface {
	AddFavorite(ctx context.Context, f Favorite) error
	ListFavorites(ctx context.Context) ([]Favorite, error)
	// DeleteFavorite removes by url and reports rows affected; deleting a
	// nonexistent url is not an error.
	DeleteFavorite(ctx context.Context, url string) (int64, error)

	AddHistory(ctx context.Context, h HistoryEntry) error
	// ListHistory returns entries newest-first, capped at limit.
	ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error)
	DeleteHistory(ctx context.Context, url string) (int64, error)
	ClearHistory(ctx context.Context) error

	Close()
}

// Open selects a backend: Postgres when databaseURL is set, SQLite at
// sqlitePath otherwise.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		return OpenPostgres(ctx, databaseURL)
	}
	slog.Info("DATABASE_URL not set, using local sqlite store")
	return OpenSQLite(sqlitePath)
}
