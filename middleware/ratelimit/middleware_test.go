package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"starter-api/middleware/ratelimit/infra"
	"starter-api/storage/kv"
)

type downStore struct{}

func (downStore) Get(context.Context, string) (string, error) { return "", errors.New("down") }

func (downStore) Put(context.Context, string, string, time.Duration) error { return errors.New("down") }

func (downStore) Delete(context.Context, string) error { return errors.New("down") }

func fixedNow() time.Time { return time.Unix(1_700_000_100, 0) } // início de janela de 60s

func newLimited(store kv.Store, rule Rule, calls *int) http.Handler {
	rl := New(Options{Store: store, TrustForwarded: true, Now: fixedNow})
	return rl.Limit(rule)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	}))
}

func get(h http.Handler, ip string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "http://example/demo/rate-limited-strict", nil)
	r.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestLimit_ThirdSucceedsFourthRejected(t *testing.T) {
	calls := 0
	h := newLimited(kv.NewMemoryStore(kv.WithClock(fixedNow)), Rule{Max: 3, Window: time.Minute}, &calls)

	for i := 1; i <= 3; i++ {
		w := get(h, "1.2.3.4")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
		if got, want := w.Header().Get("X-RateLimit-Remaining"), strconv.Itoa(3-i); got != want {
			t.Fatalf("request %d: expected remaining %s, got %s", i, want, got)
		}
		if got := w.Header().Get("X-RateLimit-Limit"); got != "3" {
			t.Fatalf("expected limit 3, got %q", got)
		}
	}

	w := get(h, "1.2.3.4")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if calls != 3 {
		t.Fatalf("expected handler to run 3 times, got %d", calls)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected remaining 0, got %q", got)
	}
	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil || retry <= 0 {
		t.Fatalf("expected positive Retry-After, got %q", w.Header().Get("Retry-After"))
	}
	if got := w.Header().Get("X-RateLimit-Reset"); got != "60" {
		t.Fatalf("expected reset 60, got %q", got)
	}

	var body errorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "Too Many Requests" || body.Message != "Rate limit exceeded. Try again in 60 seconds." {
		t.Fatalf("unexpected body %+v", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
}

func TestLimit_OtherClientsUnaffected(t *testing.T) {
	calls := 0
	h := newLimited(kv.NewMemoryStore(kv.WithClock(fixedNow)), Rule{Max: 1, Window: time.Minute}, &calls)

	get(h, "1.1.1.1")
	if w := get(h, "2.2.2.2"); w.Code != http.StatusOK {
		t.Fatalf("expected other client allowed, got %d", w.Code)
	}
}

func TestLimit_StoreDownFailsOpen(t *testing.T) {
	calls := 0
	h := newLimited(downStore{}, Rule{Max: 1, Window: time.Minute}, &calls)

	for i := 0; i < 5; i++ {
		if w := get(h, "1.2.3.4"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 with store down, got %d", i, w.Code)
		}
	}
	if calls != 5 {
		t.Fatalf("expected 5 handler calls, got %d", calls)
	}
}

func TestLimit_ZeroRuleUsesDefaults(t *testing.T) {
	calls := 0
	h := newLimited(kv.NewMemoryStore(kv.WithClock(fixedNow)), Rule{}, &calls)

	w := get(h, "1.2.3.4")
	if got := w.Header().Get("X-RateLimit-Limit"); got != "100" {
		t.Fatalf("expected default limit 100, got %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "99" {
		t.Fatalf("expected remaining 99, got %q", got)
	}
}

func TestLimit_OffPassesThrough(t *testing.T) {
	calls := 0
	h := newLimited(kv.NewMemoryStore(), Off, &calls)

	w := get(h, "1.2.3.4")
	if w.Header().Get("X-RateLimit-Limit") != "" {
		t.Fatalf("expected no rate limit headers")
	}
	if calls != 1 {
		t.Fatalf("expected handler call")
	}
}

func TestLimit_RecordsStats(t *testing.T) {
	stats := infra.NewMemoryStatsStore()
	rl := New(Options{Store: kv.NewMemoryStore(kv.WithClock(fixedNow)), Stats: stats, Now: fixedNow})
	h := rl.Limit(Rule{Max: 1})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example/x", nil))
	}

	snap := stats.Snapshot()
	if snap.Total.Allowed != 1 || snap.Total.Denied != 1 {
		t.Fatalf("unexpected totals %+v", snap.Total)
	}
}
