package engine

import (
	"net/http"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Config holds all service configuration, built once in main and injected
// into the fetcher, store and server constructors. Request handlers never
// read ambient state.
type Config struct {
	Port           string
	BaseURL        string // optional override for self-referencing action URIs; empty = request Host
	DatabaseURL    string // Postgres; empty = local SQLite
	SQLitePath     string // empty = ~/.msxtube/msxtube.db
	AllowedOrigins []string

	MaxResults   int // scrape cap per search request
	PageSize     int // cards per MSX page
	HistoryLimit int // newest-first cap on history listings

	FetchTimeout time.Duration
	FetchRate    float64 // outbound fetches per second
	FetchBurst   int

	HTTPClient    *http.Client
	BrowserClient *stealth.BrowserClient // nil = plain HTTP fetch
}
