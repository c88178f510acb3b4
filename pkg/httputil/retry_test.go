package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	perm := errors.New("bad request")
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return perm
	})
	if err != perm || calls != 1 {
		t.Errorf("Retry() = %v after %d calls, want %v after 1", err, calls, perm)
	}
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New("flaky")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() = %v, want context.Canceled", err)
	}
}

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png"))
		case "/busy":
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/big":
			w.Write(make([]byte, 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(time.Second)
	c.MaxBytes = 32
	ctx := context.Background()

	body, mime, err := c.Get(ctx, srv.URL+"/ok")
	if err != nil || string(body) != "png" || mime != "image/png" {
		t.Errorf("Get(/ok) = %q, %q, %v", body, mime, err)
	}

	_, _, err = c.Get(ctx, srv.URL+"/busy")
	var rerr *RetryableError
	if !errors.As(err, &rerr) {
		t.Errorf("Get(/busy) = %v, want retryable", err)
	} else if rerr.After != 2*time.Second {
		t.Errorf("Get(/busy) After = %v, want 2s", rerr.After)
	}

	_, _, err = c.Get(ctx, srv.URL+"/missing")
	var serr *StatusError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusNotFound {
		t.Errorf("Get(/missing) = %v, want 404 StatusError", err)
	}
	if errors.As(err, new(*RetryableError)) {
		t.Error("404 must not be retryable")
	}

	_, _, err = c.Get(ctx, srv.URL+"/big")
	if !errors.As(err, new(*ErrTooLarge)) {
		t.Errorf("Get(/big) = %v, want ErrTooLarge", err)
	}
}

func TestRetryUsesRetryAfter(t *testing.T) {
	calls := 0
	start := time.Now()
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		if calls == 1 {
			return &RetryableError{Err: errors.New("slow down"), After: 50 * time.Millisecond}
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("Retry() = %v after %d calls, want nil after 2", err, calls)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Retry() waited %v, want at least the Retry-After of 50ms", elapsed)
	}
}

func TestRetryReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return &RetryableError{Err: errors.New("flaky")}
	})
	if calls != 3 || err == nil || err.Error() != "flaky" {
		t.Errorf("Retry() = %v after %d calls, want flaky after 3", err, calls)
	}
}

func TestRetryAfterHeader(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{"-1", 0},
		{"soon", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.value != "" {
			h.Set("Retry-After", tt.value)
		}
		if got := retryAfter(h, now); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
