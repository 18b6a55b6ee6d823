package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	errTransient := errors.New("transient")
	errFatal := errors.New("fatal")

	tests := []struct {
		name      string
		failures  int
		err       error
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{"succeeds first", 0, nil, 3, 1, nil},
		{"recovers", 2, Retryable(errTransient), 3, 3, nil},
		{"gives up", 5, Retryable(errTransient), 3, 3, errTransient},
		{"fatal not retried", 5, errFatal, 3, 1, errFatal},
		{"zero attempts runs once", 5, Retryable(errTransient), 0, 1, errTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("err = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 3, time.Hour, func() error {
		calls++
		cancel()
		return Retryable(errors.New("x"))
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("Retry() = %v after %d calls", err, calls)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	base := errors.New("base")
	if !IsRetryable(Retryable(base)) || IsRetryable(base) {
		t.Error("IsRetryable mismatch")
	}
	if !errors.Is(Retryable(base), base) {
		t.Error("RetryableError should unwrap")
	}
}

func TestCheckURL(t *testing.T) {
	tests := []struct {
		raw string
		ok  bool
	}{
		{"https://go.dev", true},
		{"http://localhost:8080/x", true},
		{"ftp://example.com", false},
		{"javascript:alert(1)", false},
		{"/relative", false},
		{"https://", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := CheckURL(tt.raw)
			if (err == nil) != tt.ok {
				t.Errorf("CheckURL(%q) err = %v", tt.raw, err)
			}
		})
	}
}

func TestClientGet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.UserAgent(), "orbitboard/") {
			t.Errorf("User-Agent = %q", r.UserAgent())
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("0123456789"))
	})
	mux.HandleFunc("/busy", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient("test", WithBodyLimit(4))
	ctx := context.Background()

	resp, err := c.Get(ctx, srv.URL+"/ok")
	if err != nil {
		t.Fatalf("Get(/ok): %v", err)
	}
	if string(resp.Body) != "0123" {
		t.Errorf("Body = %q, want truncated body", resp.Body)
	}
	if resp.ContentType != "text/plain" || resp.URL.Path != "/ok" {
		t.Errorf("Response = %+v", resp)
	}

	_, err = c.Get(ctx, srv.URL+"/busy")
	var se *StatusError
	if !IsRetryable(err) || !errors.As(err, &se) || se.Status != 503 {
		t.Errorf("Get(/busy) = %v, want retryable 503", err)
	}

	_, err = c.Get(ctx, srv.URL+"/missing")
	if IsRetryable(err) || !errors.As(err, &se) || se.Status != 404 {
		t.Errorf("Get(/missing) = %v, want non-retryable 404", err)
	}

	if _, err := c.Get(ctx, "file:///etc/passwd"); !errors.Is(err, ErrScheme) {
		t.Errorf("Get(file://) = %v, want ErrScheme", err)
	}
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewClient("test").Get(context.Background(), addr)
	if !errors.Is(err, ErrNetwork) || !IsRetryable(err) {
		t.Errorf("Get(closed server) = %v, want retryable ErrNetwork", err)
	}
}
