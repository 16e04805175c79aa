package engine

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

var testRetry = RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: 10 * time.Millisecond, Multiplier: 2}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"http 429", &httpStatusError{429}, true},
		{"http 503", &httpStatusError{503}, true},
		{"regular error", errors.New("marker not found"), false},
		{"dns timeout", &net.DNSError{IsTimeout: true}, true},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryDo(t *testing.T) {
	t.Run("first try succeeds", func(t *testing.T) {
		calls := 0
		got, err := RetryDo(context.Background(), testRetry, func() (string, error) {
			calls++
			return "ok", nil
		})
		if err != nil || got != "ok" || calls != 1 {
			t.Errorf("got (%q, %v) after %d calls", got, err, calls)
		}
	})

	t.Run("transient then success", func(t *testing.T) {
		calls := 0
		got, err := RetryDo(context.Background(), testRetry, func() (string, error) {
			calls++
			if calls < 2 {
				return "", &httpStatusError{503}
			}
			return "ok", nil
		})
		if err != nil || got != "ok" || calls != 2 {
			t.Errorf("got (%q, %v) after %d calls", got, err, calls)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		calls := 0
		_, err := RetryDo(context.Background(), testRetry, func() (string, error) {
			calls++
			return "", &httpStatusError{502}
		})
		if err == nil {
			t.Fatal("expected error after exhausting retries")
		}
		if calls != 3 { // initial + 2 retries
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("non-retryable returns immediately", func(t *testing.T) {
		calls := 0
		_, err := RetryDo(context.Background(), testRetry, func() (string, error) {
			calls++
			return "", errors.New("permanent error")
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := RetryDo(ctx, testRetry, func() (string, error) {
			return "", &httpStatusError{503}
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestNewFetcherDefaults(t *testing.T) {
	f := NewFetcher(Config{})
	if f.client == nil {
		t.Fatal("expected default HTTP client")
	}
	if f.limiter.Burst() != 4 {
		t.Errorf("default burst = %d, want 4", f.limiter.Burst())
	}
	if f.timeout != 10*time.Second {
		t.Errorf("default timeout = %v, want 10s", f.timeout)
	}
}
