package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"msxtube/internal/engine"
	"msxtube/internal/msx"
	"msxtube/internal/store"
)

type fakeFetcher struct {
	searchBody  []byte
	searchErr   error
	watchBody   []byte
	watchErr    error
	suggestBody []byte
	suggestErr  error
}

func (f *fakeFetcher) SearchPage(ctx context.Context, query string) ([]byte, error) {
	return f.searchBody, f.searchErr
}

func (f *fakeFetcher) WatchPage(ctx context.Context, id string) ([]byte, error) {
	return f.watchBody, f.watchErr
}

func (f *fakeFetcher) SuggestPayload(ctx context.Context, query string) ([]byte, error) {
	return f.suggestBody, f.suggestErr
}

// resultsPage embeds n videoRenderer items in a ytInitialData payload.
func resultsPage(n int) []byte {
	var items []string
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(
			`{"videoRenderer":{"videoId":"vid%d","title":{"runs":[{"text":"Video %d"}]},"ownerText":{"runs":[{"text":"Chan"}]},"publishedTimeText":{"simpleText":"2 years ago"}}}`, i, i))
	}
	blob := fmt.Sprintf(`{"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[{"itemSectionRenderer":{"contents":[%s]}}]}}}}}`,
		strings.Join(items, ","))
	return []byte("<html><script>var ytInitialData = " + blob + ";</script></html>")
}

func newTestServer(t *testing.T, fetch PageFetcher) *Server {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(st.Close)

	cfg := engine.Config{
		MaxResults:   20,
		PageSize:     8,
		HistoryLimit: 50,
	}
	return New(cfg, st, fetch)
}

func doJSON[T any](t *testing.T, h http.Handler, method, target string, body any) (*httptest.ResponseRecorder, T) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out T
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestPing(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})
	rec, out := doJSON[map[string]string](t, s.Handler(), http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pong", out["message"])
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})

	t.Run("headers on every response", func(t *testing.T) {
		rec, _ := doJSON[map[string]string](t, s.Handler(), http.MethodGet, "/ping", nil)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "OPTIONS")
	})

	t.Run("preflight returns 204", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/favorites", nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Zero(t, rec.Body.Len())
	})

	t.Run("origin allow-list", func(t *testing.T) {
		st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		t.Cleanup(st.Close)
		strict := New(engine.Config{AllowedOrigins: []string{"http://tv.local"}}, st, &fakeFetcher{})

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://tv.local")
		rec := httptest.NewRecorder()
		strict.Handler().ServeHTTP(rec, req)
		require.Equal(t, "http://tv.local", rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec = httptest.NewRecorder()
		strict.Handler().ServeHTTP(rec, req)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSearchEmptyInput(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})
	rec, page := doJSON[msx.Page](t, s.Handler(), http.MethodGet, "/msx_search?input=", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pages", page.Type)
	require.Empty(t, page.Items)
}

func TestSearchSingleResult(t *testing.T) {
	body := []byte(strings.Replace(string(resultsPage(1)), "vid0", "abc123", 1))
	body = []byte(strings.Replace(string(body), "Video 0", "Test Video", 1))
	s := newTestServer(t, &fakeFetcher{searchBody: body})

	rec, page := doJSON[msx.Page](t, s.Handler(), http.MethodGet, "/msx_search?input=test", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, page.Items, 1)

	card := page.Items[0]
	require.Equal(t, "Test Video", card.Title)
	require.Contains(t, card.Action, "id=abc123")
	require.Equal(t, "abc123", msx.VideoIDFromAction(card.Action))

	// "2 years ago" normalizes against the wall clock.
	wantDate := time.Now().Add(-2 * 365 * 24 * time.Hour).Format("02/01/2006")
	require.Contains(t, card.Label, wantDate)
	require.Contains(t, card.Label, "2 years ago")

	require.Len(t, page.Actions, 3) // view switchers
}

func TestSearchPagination(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{searchBody: resultsPage(10)})

	rec, page := doJSON[msx.Page](t, s.Handler(), http.MethodGet, "/msx_search?input=test&page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// 2 cards remain on page 2 of 10 at size 8, plus the previous-page link.
	require.Len(t, page.Items, 3)
	require.Contains(t, page.Items[0].Action, "msx_search")
	require.NotContains(t, page.Items[0].Action, "page=")
	require.Equal(t, "Video 8", page.Items[1].Title)
	for _, item := range page.Items {
		require.NotContains(t, item.Action, "page=3", "no next link on the last page")
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{searchErr: &engine.UpstreamError{URL: "u", StatusCode: 503}})

	rec, page := doJSON[msx.Page](t, s.Handler(), http.MethodGet, "/msx_search?input=test", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Error", page.Items[0].Title)
	require.Contains(t, page.Items[0].Label, "503")
}

func TestSearchMarkerAbsent(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{searchBody: []byte("<html>consent wall</html>")})

	rec, page := doJSON[msx.Page](t, s.Handler(), http.MethodGet, "/msx_search?input=test", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, page.Items)
}

func TestSearchMalformedPayload(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{searchBody: []byte(`<script>var ytInitialData = {"broken";</script>`)})

	rec, page := doJSON[msx.Page](t, s.Handler(), http.MethodGet, "/msx_search?input=test", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Error", page.Items[0].Title)
}

func TestSuggest(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{suggestBody: []byte(`["lo",["lofi","low poly"]]`)})

	rec, page := doJSON[msx.Page](t, s.Handler(), http.MethodGet, "/msx_suggest?input=lo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, page.Items, 2)
	require.Equal(t, "lofi", page.Items[0].Title)
	require.Contains(t, page.Items[1].Action, "input=low+poly")
}

func TestVideoDetail(t *testing.T) {
	watch := []byte(`<html><head><meta property="og:title" content="One Video"><meta property="og:image" content="https://i.ytimg.com/t.jpg"><meta itemprop="channelId" content="UCdocs"><span itemprop="author"><link itemprop="name" content="Docu Channel"></span></head></html>`)
	s := newTestServer(t, &fakeFetcher{watchBody: watch})

	t.Run("detail card", func(t *testing.T) {
		rec, page := doJSON[msx.Page](t, s.Handler(), http.MethodGet, "/msx_video?id=abc123", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, page.Items, 1)
		require.Equal(t, "One Video", page.Items[0].Title)
		require.Equal(t, "abc123", msx.VideoIDFromAction(page.Items[0].Action))
	})

	t.Run("channel action", func(t *testing.T) {
		_, page := doJSON[msx.Page](t, s.Handler(), http.MethodGet, "/msx_video?id=abc123", nil)
		require.Len(t, page.Actions, 1)
		require.Equal(t, "Docu Channel", page.Actions[0].Title)
		require.Equal(t, "link:https://www.youtube.com/channel/UCdocs", page.Actions[0].Action)
	})

	t.Run("missing id", func(t *testing.T) {
		rec, _ := doJSON[map[string]string](t, s.Handler(), http.MethodGet, "/msx_video", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFavoritesLifecycle(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})
	h := s.Handler()

	payload := map[string]string{"title": "X", "url": "https://y/1"}
	rec, _ := doJSON[map[string]any](t, h, http.MethodPost, "/favorites", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	// Duplicate insert is a no-op.
	rec, _ = doJSON[map[string]any](t, h, http.MethodPost, "/favorites", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, page := doJSON[msx.Page](t, h, http.MethodGet, "/favorites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, page.Items, 1)
	require.Equal(t, "X", page.Items[0].Title)
	require.Equal(t, "https://y/1", page.Items[0].Action)

	rec, _ = doJSON[map[string]any](t, h, http.MethodPost, "/favorites/delete", map[string]string{"url": "https://y/1"})
	require.Equal(t, http.StatusOK, rec.Code)

	_, page = doJSON[msx.Page](t, h, http.MethodGet, "/favorites", nil)
	require.Empty(t, page.Items)
}

func TestFavoriteValidation(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})
	h := s.Handler()

	t.Run("missing title", func(t *testing.T) {
		rec, out := doJSON[map[string]string](t, h, http.MethodPost, "/favorites", map[string]string{"url": "u"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotEmpty(t, out["error"])
	})

	t.Run("video_id substitutes for url", func(t *testing.T) {
		rec, _ := doJSON[map[string]any](t, h, http.MethodPost, "/favorites",
			map[string]string{"title": "V", "video_id": "abc123"})
		require.Equal(t, http.StatusOK, rec.Code)

		_, page := doJSON[msx.Page](t, h, http.MethodGet, "/favorites", nil)
		require.Len(t, page.Items, 1)
		require.Equal(t, "abc123", msx.VideoIDFromAction(page.Items[0].Action))
	})

	t.Run("delete requires url", func(t *testing.T) {
		rec, _ := doJSON[map[string]string](t, h, http.MethodPost, "/favorites/delete", map[string]string{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHistoryLifecycle(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})
	h := s.Handler()

	for i := 0; i < 3; i++ {
		rec, _ := doJSON[map[string]any](t, h, http.MethodPost, "/history",
			map[string]string{"title": fmt.Sprintf("V%d", i), "url": fmt.Sprintf("u%d", i)})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, page := doJSON[msx.Page](t, h, http.MethodGet, "/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, page.Items, 3)
	require.Equal(t, "V2", page.Items[0].Title, "newest first")

	rec, _ = doJSON[map[string]any](t, h, http.MethodPost, "/history/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, page = doJSON[msx.Page](t, h, http.MethodGet, "/history", nil)
	require.Empty(t, page.Items)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeFetcher{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "search_requests")
}
