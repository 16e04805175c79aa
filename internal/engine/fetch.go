package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/time/rate"
)

const (
	ytSearchBase  = "https://www.youtube.com/results"
	ytWatchBase   = "https://www.youtube.com/watch"
	ytSuggestBase = "https://suggestqueries.google.com/complete/search"
	ytVideoFilter = "EgIQAQ%3D%3D" // videos-only filter param

	maxBodyBytes = 4 * 1024 * 1024
)

// UpstreamError reports a failed fetch from the scrape upstream: either a
// transport error or a non-2xx status that survived retries.
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("upstream %s: status %d", e.URL, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Fetcher performs the single outbound fetch of a request, rate-limited
// across requests. With a browser client configured, requests carry a Chrome
// TLS fingerprint; otherwise a plain bounded http.Client is used.
type Fetcher struct {
	client  *http.Client
	browser *stealth.BrowserClient
	limiter *rate.Limiter
	timeout time.Duration
	retry   RetryConfig
}

// NewFetcher builds a Fetcher from config.
func NewFetcher(cfg Config) *Fetcher {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.FetchTimeout}
	}
	rps := cfg.FetchRate
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.FetchBurst
	if burst <= 0 {
		burst = 4
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client:  client,
		browser: cfg.BrowserClient,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		timeout: timeout,
		retry:   DefaultRetryConfig,
	}
}

// SearchPage fetches the results page for query, videos-only filtered.
func (f *Fetcher) SearchPage(ctx context.Context, query string) ([]byte, error) {
	u := ytSearchBase + "?search_query=" + url.QueryEscape(query) + "&sp=" + ytVideoFilter
	return f.get(ctx, u)
}

// WatchPage fetches the watch page for a video id.
func (f *Fetcher) WatchPage(ctx context.Context, id string) ([]byte, error) {
	return f.get(ctx, ytWatchBase+"?v="+url.QueryEscape(id))
}

// SuggestPayload fetches the search-suggestion JSON for query.
func (f *Fetcher) SuggestPayload(ctx context.Context, query string) ([]byte, error) {
	params := url.Values{}
	params.Set("client", "firefox")
	params.Set("ds", "yt")
	params.Set("q", query)
	return f.get(ctx, ytSuggestBase+"?"+params.Encode())
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (body []byte, err error) {
	IncrFetch()
	defer func() {
		if err != nil {
			IncrFetchError()
		}
	}()

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{URL: rawURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if f.browser != nil {
		return f.getBrowser(ctx, rawURL)
	}
	return f.getPlain(ctx, rawURL)
}

func (f *Fetcher) getPlain(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := RetryHTTP(ctx, f.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", stealth.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return f.client.Do(req)
	})
	if err != nil {
		return nil, &UpstreamError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &UpstreamError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func (f *Fetcher) getBrowser(ctx context.Context, rawURL string) ([]byte, error) {
	headers := stealth.ChromeHeaders()
	headers["Accept-Language"] = "en-US,en;q=0.9"

	type result struct {
		body   []byte
		status int
	}
	res, err := RetryDo(ctx, f.retry, func() (result, error) {
		body, _, status, err := f.browser.Do(http.MethodGet, rawURL, headers, nil)
		if err != nil {
			return result{}, err
		}
		if isRetryableStatus(status) {
			return result{}, &httpStatusError{StatusCode: status}
		}
		return result{body: body, status: status}, nil
	})
	if err != nil {
		return nil, &UpstreamError{URL: rawURL, Err: err}
	}
	if res.status != http.StatusOK {
		return nil, &UpstreamError{URL: rawURL, StatusCode: res.status}
	}
	if len(res.body) > maxBodyBytes {
		res.body = res.body[:maxBodyBytes]
	}
	return res.body, nil
}
