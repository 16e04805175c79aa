package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"msxtube/internal/engine"
	"msxtube/internal/msx"
	"msxtube/internal/scrape"
	"msxtube/internal/store"
)

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(engine.FormatMetrics()))
}

// handleSearch runs the scrape → normalize → format → paginate pipeline.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	engine.IncrSearch()

	query := strings.TrimSpace(r.URL.Query().Get("input"))
	layout := msx.ParseLayout(r.URL.Query().Get("view"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	if query == "" {
		writeJSON(w, http.StatusOK, msx.NewPage("YouTube Search", layout))
		return
	}

	body, err := s.fetch.SearchPage(r.Context(), query)
	if err != nil {
		slog.Error("search fetch failed", slog.String("query", query), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, msx.ErrorPage("Error", err.Error()))
		return
	}

	videos, err := scrape.ExtractVideos(body, s.cfg.MaxResults)
	if err != nil {
		engine.IncrExtractionError()
		slog.Error("extraction failed", slog.String("query", query), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, msx.ErrorPage("Error", err.Error()))
		return
	}
	if len(videos) == 0 {
		engine.IncrEmptyExtraction()
	}

	now := time.Now()
	items := make([]msx.Item, 0, len(videos))
	for _, v := range videos {
		exact := scrape.NormalizeDate(v.Published, now, nil)
		items = append(items, msx.VideoCard(v, layout, exact))
	}

	base := s.baseURL(r)
	slice := msx.Paginate(items, page, s.cfg.PageSize)

	out := msx.NewPage("YouTube: "+query, layout)
	out.Actions = viewActions(base, query, page)
	out.Items = msx.WithPageLinks(slice, base, query, page, layout)
	writeJSON(w, http.StatusOK, out)
}

func viewActions(base, query string, page int) []msx.PageAction {
	return []msx.PageAction{
		{Title: "Grid View", Action: msx.SearchReplaceAction(base, query, page, msx.LayoutGrid)},
		{Title: "List View", Action: msx.SearchReplaceAction(base, query, page, msx.LayoutList)},
		{Title: "Compact View", Action: msx.SearchReplaceAction(base, query, page, msx.LayoutCompact)},
	}
}

// handleSuggest turns the upstream completion list into cards that re-enter
// the search endpoint.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	engine.IncrSuggest()

	query := strings.TrimSpace(r.URL.Query().Get("input"))
	layout := msx.LayoutList
	if query == "" {
		writeJSON(w, http.StatusOK, msx.NewPage("Suggestions", layout))
		return
	}

	body, err := s.fetch.SuggestPayload(r.Context(), query)
	if err != nil {
		slog.Error("suggest fetch failed", slog.String("query", query), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, msx.ErrorPage("Error", err.Error()))
		return
	}
	completions, err := scrape.ParseSuggestions(body)
	if err != nil {
		slog.Error("suggest parse failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, msx.ErrorPage("Error", err.Error()))
		return
	}

	base := s.baseURL(r)
	out := msx.NewPage("Suggestions: "+query, layout)
	for _, c := range completions {
		out.Items = append(out.Items, msx.Item{
			Title:  c,
			Action: msx.SearchContentAction(base, c, 1, msx.LayoutGrid),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleVideo serves a single detail card built from the watch page.
func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	engine.IncrVideo()

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	body, err := s.fetch.WatchPage(r.Context(), id)
	if err != nil {
		slog.Error("watch fetch failed", slog.String("id", id), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, msx.ErrorPage("Error", err.Error()))
		return
	}
	info, err := scrape.ExtractWatchInfo(body)
	if err != nil {
		slog.Error("watch parse failed", slog.String("id", id), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, msx.ErrorPage("Error", err.Error()))
		return
	}

	out := msx.NewPage(info.Title, msx.LayoutGrid)
	if info.ChannelID != "" {
		title := info.Channel
		if title == "" {
			title = "Channel"
		}
		out.Actions = []msx.PageAction{{
			Title:  title,
			Action: msx.ChannelAction(info.ChannelID),
		}}
	}
	out.Items = []msx.Item{{
		Title:       info.Title,
		PlayerLabel: info.Title,
		Label:       info.Channel,
		Image:       info.Thumbnail,
		Action:      msx.VideoAction(id),
		Style:       &msx.Style{Height: "medium"},
	}}
	writeJSON(w, http.StatusOK, out)
}

type favoritePayload struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Image   string `json:"image"`
	Channel string `json:"channel"`
	VideoID string `json:"video_id"`
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listFavorites(w, r)
	case http.MethodPost:
		s.addFavorite(w, r)
	case http.MethodDelete:
		s.deleteFavorite(w, r, r.URL.Query().Get("url"))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	var p favoritePayload
	if err := decodeBody(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// A bare video_id is enough: the action URI doubles as the dedup url.
	if p.URL == "" && p.VideoID != "" {
		p.URL = msx.VideoAction(p.VideoID)
	}
	if p.Title == "" || p.URL == "" {
		writeError(w, http.StatusBadRequest, "title and url (or video_id) are required")
		return
	}
	if p.Type == "" {
		p.Type = "video"
	}

	err := s.store.AddFavorite(r.Context(), store.Favorite{
		Type:    p.Type,
		Title:   p.Title,
		URL:     p.URL,
		Image:   p.Image,
		Channel: p.Channel,
		VideoID: p.VideoID,
	})
	if err != nil {
		engine.IncrPersistenceError()
		slog.Error("add favorite", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	engine.IncrFavoriteWrite()
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := s.store.ListFavorites(r.Context())
	if err != nil {
		engine.IncrPersistenceError()
		slog.Error("list favorites", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := msx.NewPage("Favorites", msx.LayoutGrid)
	for _, f := range favorites {
		out.Items = append(out.Items, msx.StoredCard(f.Title, f.URL, f.Image, f.Channel, f.CreatedAt))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFavoriteDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var p struct {
		URL string `json:"url"`
	}
	if err := decodeBody(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.deleteFavorite(w, r, p.URL)
}

func (s *Server) deleteFavorite(w http.ResponseWriter, r *http.Request, url string) {
	if url == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}
	deleted, err := s.store.DeleteFavorite(r.Context(), url)
	if err != nil {
		engine.IncrPersistenceError()
		slog.Error("delete favorite", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Deleted: deleted})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listHistory(w, r)
	case http.MethodPost:
		s.addHistory(w, r)
	case http.MethodDelete:
		s.deleteHistory(w, r, r.URL.Query().Get("url"))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) addHistory(w http.ResponseWriter, r *http.Request) {
	var p favoritePayload
	if err := decodeBody(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.URL == "" && p.VideoID != "" {
		p.URL = msx.VideoAction(p.VideoID)
	}
	if p.Title == "" || p.URL == "" {
		writeError(w, http.StatusBadRequest, "title and url (or video_id) are required")
		return
	}
	if p.Type == "" {
		p.Type = "video"
	}

	err := s.store.AddHistory(r.Context(), store.HistoryEntry{
		Type:    p.Type,
		Title:   p.Title,
		URL:     p.URL,
		Image:   p.Image,
		Channel: p.Channel,
		VideoID: p.VideoID,
	})
	if err != nil {
		engine.IncrPersistenceError()
		slog.Error("add history", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	engine.IncrHistoryWrite()
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListHistory(r.Context(), s.cfg.HistoryLimit)
	if err != nil {
		engine.IncrPersistenceError()
		slog.Error("list history", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := msx.NewPage("History", msx.LayoutGrid)
	for _, h := range entries {
		out.Items = append(out.Items, msx.StoredCard(h.Title, h.URL, h.Image, h.Channel, h.CreatedAt))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteHistory(w http.ResponseWriter, r *http.Request, url string) {
	if url == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}
	deleted, err := s.store.DeleteHistory(r.Context(), url)
	if err != nil {
		engine.IncrPersistenceError()
		slog.Error("delete history", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Deleted: deleted})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.store.ClearHistory(r.Context()); err != nil {
		engine.IncrPersistenceError()
		slog.Error("clear history", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
