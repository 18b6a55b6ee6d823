package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/orbitboard/pkg/board"
	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/preview"
	"github.com/matzehuels/orbitboard/pkg/storage"
	"github.com/matzehuels/orbitboard/pkg/viewport"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	rec := do(t, New(storage.NewMemoryStore()).Handler(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("GET /healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestGetStateDefaults(t *testing.T) {
	h := New(storage.NewMemoryStore()).Handler()
	rec := do(t, h, http.MethodGet, "/api/tools/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["cards"]) != "[]" || string(raw["cloudEnabled"]) != "true" {
		t.Errorf("body = %s", rec.Body.String())
	}
	if string(raw["viewport"]) != `{"x":0,"y":0,"zoom":1}` {
		t.Errorf("viewport = %s", raw["viewport"])
	}
}

func TestStateLoadsLazilyOnce(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: storage.NewMemoryStore()}
	want := board.Snapshot{
		Cards:    []board.Card{{ID: "a", Type: board.TypeContent, Position: geom.Pt(10, 20)}},
		Viewport: viewport.Explicit(100, 50, 0.5),
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatal(err)
	}

	h := New(store).Handler()
	for range 3 {
		rec := do(t, h, http.MethodGet, "/api/tools/state", "")
		got := decode[board.Snapshot](t, rec)
		if len(got.Cards) != 1 || got.Cards[0].Position != geom.Pt(10, 20) || got.Viewport != want.Viewport {
			t.Fatalf("GET state = %+v", got)
		}
	}
	if n := store.loads.Load(); n != 1 {
		t.Errorf("store loaded %d times, want 1", n)
	}
}

func TestPostState(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	var saved atomic.Int32
	s := New(store, WithOnSave(func(board.Snapshot) { saved.Add(1) }))
	h := s.Handler()

	body := `{"cards":[{"id":"a","type":"content","position":{"x":204,"y":0}}],"viewport":{"x":560,"y":300,"zoom":1},"cloudEnabled":false}`
	rec := do(t, h, http.MethodPost, "/api/tools/state", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	resp := decode[saveResponse](t, rec)
	if !resp.OK || resp.Message == "" {
		t.Errorf("response = %+v", resp)
	}

	persisted, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(persisted.Cards) != 1 || persisted.CloudEnabled || persisted.Viewport != viewport.Explicit(560, 300, 1) {
		t.Errorf("persisted = %+v", persisted)
	}

	// Malformed fields keep their stored values.
	rec = do(t, h, http.MethodPost, "/api/tools/state", `{"cards":"nope","viewport":{"x":"1"},"cloudEnabled":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("partial POST status = %d", rec.Code)
	}
	got := s.State(ctx)
	if len(got.Cards) != 1 || got.Viewport != viewport.Explicit(560, 300, 1) || !got.CloudEnabled {
		t.Errorf("after partial POST = %+v", got)
	}
	if saved.Load() != 2 {
		t.Errorf("onSave ran %d times, want 2", saved.Load())
	}
}

func TestPostStateRejectsMalformedJSON(t *testing.T) {
	h := New(storage.NewMemoryStore()).Handler()
	for _, body := range []string{`{`, `[]`, ``, `"x"`} {
		rec := do(t, h, http.MethodPost, "/api/tools/state", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("POST %q status = %d, want 400", body, rec.Code)
			continue
		}
		if resp := decode[saveResponse](t, rec); resp.OK || resp.Message == "" {
			t.Errorf("POST %q response = %+v", body, resp)
		}
	}
}

func TestPostStateSurvivesSaveFailure(t *testing.T) {
	s := New(failingStore{})
	rec := do(t, s.Handler(), http.MethodPost, "/api/tools/state", `{"cloudEnabled":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if s.State(context.Background()).CloudEnabled {
		t.Error("in-memory state not updated")
	}
}

func TestBookmarkPreview(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<meta property="og:title" content="Hello"><meta property="og:image" content="/c.png">`))
		case "/data":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer upstream.Close()

	f := preview.NewFetcher(preview.WithRetry(1, time.Millisecond))
	h := New(storage.NewMemoryStore(), WithPreviews(f)).Handler()

	rec := do(t, h, http.MethodPost, "/api/bookmark-preview", `{"url":"`+upstream.URL+`/page"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	p := decode[preview.Preview](t, rec)
	if p.Title != "Hello" || p.Image != upstream.URL+"/c.png" || p.URL != upstream.URL+"/page" {
		t.Errorf("preview = %+v", p)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty url", `{"url":""}`, http.StatusBadRequest},
		{"missing url", `{}`, http.StatusBadRequest},
		{"bad scheme", `{"url":"ftp://example.com"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
		{"not html", `{"url":"` + upstream.URL + `/data"}`, http.StatusBadRequest},
		{"upstream 500", `{"url":"` + upstream.URL + `/boom"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/bookmark-preview", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if e := decode[errorResponse](t, rec); e.Error == "" {
				t.Error("error response has no message")
			}
		})
	}
}

func TestListenAndServeShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(storage.NewMemoryStore()).ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

type countingStore struct {
	storage.Store
	loads atomic.Int32
}

func (s *countingStore) Load(ctx context.Context) (board.Snapshot, error) {
	s.loads.Add(1)
	return s.Store.Load(ctx)
}

type failingStore struct{}

var errDiskFull = errors.New("disk full")

func (failingStore) Load(context.Context) (board.Snapshot, error) { return board.Snapshot{}, storage.ErrNotFound }
func (failingStore) Save(context.Context, board.Snapshot) error  { return errDiskFull }
func (failingStore) Close() error                               { return nil }
