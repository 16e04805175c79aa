// Package server exposes the MSX-facing HTTP surface: the search/suggest/
// video pipeline endpoints and the favorites/history CRUD.
package server

import (
	"context"
	"net/http"
	"strings"

	"msxtube/internal/engine"
	"msxtube/internal/store"
)

// PageFetcher retrieves upstream pages. Satisfied by *engine.Fetcher; tests
// substitute a canned fetcher.
type PageFetcher interface {
	SearchPage(ctx context.Context, query string) ([]byte, error)
	WatchPage(ctx context.Context, id string) ([]byte, error)
	SuggestPayload(ctx context.Context, query string) ([]byte, error)
}

// Server routes MSX client requests. All dependencies are injected; handlers
// read no ambient state.
type Server struct {
	cfg     engine.Config
	store   store.Store
	fetch   PageFetcher
	handler http.Handler
}

// New builds the router with CORS applied to every route.
func New(cfg engine.Config, st store.Store, fetch PageFetcher) *Server {
	s := &Server{cfg: cfg, store: st, fetch: fetch}

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/msx_search", s.handleSearch)
	mux.HandleFunc("/msx_suggest", s.handleSuggest)
	mux.HandleFunc("/msx_video", s.handleVideo)
	mux.HandleFunc("/favorites", s.handleFavorites)
	mux.HandleFunc("/favorites/delete", s.handleFavoriteDelete)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/history/clear", s.handleHistoryClear)
	mux.HandleFunc("/metrics", s.handleMetrics)

	s.handler = corsMiddleware(cfg.AllowedOrigins, mux)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// corsMiddleware applies the configured origin policy to every response and
// short-circuits OPTIONS preflight with 204.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[r.Header.Get("Origin")]:
			w.Header().Set("Access-Control-Allow-Origin", r.Header.Get("Origin"))
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// baseURL is the prefix for self-referencing action URIs.
func (s *Server) baseURL(r *http.Request) string {
	if s.cfg.BaseURL != "" {
		return strings.TrimRight(s.cfg.BaseURL, "/")
	}
	return "http://" + r.Host
}
