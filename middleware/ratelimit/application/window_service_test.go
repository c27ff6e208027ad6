package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"starter-api/middleware/ratelimit/domain"
	"starter-api/storage/kv"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// brokenStore falha leituras e/ou escritas sob demanda, delegando o resto.
type brokenStore struct {
	kv.Store
	failGet bool
	failPut bool
	puts    int
}

func (b *brokenStore) Get(ctx context.Context, key string) (string, error) {
	if b.failGet {
		return "", errors.New("kv unavailable")
	}
	return b.Store.Get(ctx, key)
}

func (b *brokenStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	b.puts++
	if b.failPut {
		return errors.New("kv unavailable")
	}
	return b.Store.Put(ctx, key, value, ttl)
}

func newService(store kv.Store, c *clock) WindowService {
	return WindowService{Store: store, Prefix: "ratelimit", Now: c.Now}
}

func TestWindowService_NthAllowedThenBlocked(t *testing.T) {
	c := &clock{t: time.Unix(1_000_020, 0)}
	svc := newService(kv.NewMemoryStore(kv.WithClock(c.Now)), c)
	rule := domain.Rule{Max: 3, Window: time.Minute}

	for i := 1; i <= 3; i++ {
		dec := svc.Check(context.Background(), "1.2.3.4", "/x", rule)
		if !dec.Allowed {
			t.Fatalf("request %d: expected allowed", i)
		}
		if want := 3 - i; dec.Remaining != want {
			t.Fatalf("request %d: expected remaining=%d, got %d", i, want, dec.Remaining)
		}
	}

	dec := svc.Check(context.Background(), "1.2.3.4", "/x", rule)
	if dec.Allowed {
		t.Fatalf("expected 4th request to be blocked")
	}
	if dec.Remaining != 0 {
		t.Fatalf("expected remaining=0, got %d", dec.Remaining)
	}
	// 1_000_020 % 60 = 0 => janela começa em 1_000_020; faltam 60s
	if dec.RetryAfter != 60*time.Second {
		t.Fatalf("expected RetryAfter=60s, got %s", dec.RetryAfter)
	}
}

func TestWindowService_NewWindowResetsCount(t *testing.T) {
	c := &clock{t: time.Unix(1_000_020, 0)}
	svc := newService(kv.NewMemoryStore(kv.WithClock(c.Now)), c)
	rule := domain.Rule{Max: 1, Window: time.Minute}

	if !svc.Check(context.Background(), "a", "/x", rule).Allowed {
		t.Fatalf("expected first allowed")
	}
	c.Set(time.Unix(1_000_079, 0))
	if svc.Check(context.Background(), "a", "/x", rule).Allowed {
		t.Fatalf("expected blocked in same window")
	}
	c.Set(time.Unix(1_000_080, 0))
	dec := svc.Check(context.Background(), "a", "/x", rule)
	if !dec.Allowed {
		t.Fatalf("expected allowed in next window")
	}
	if dec.Key != "ratelimit:a:/x:1000080" {
		t.Fatalf("unexpected key %q", dec.Key)
	}
}

func TestWindowService_SeparatesIdentifiersAndPaths(t *testing.T) {
	c := &clock{t: time.Unix(1_000_020, 0)}
	svc := newService(kv.NewMemoryStore(kv.WithClock(c.Now)), c)
	rule := domain.Rule{Max: 1, Window: time.Minute}

	for _, tc := range []struct{ id, path string }{{"a", "/x"}, {"b", "/x"}, {"a", "/y"}} {
		if !svc.Check(context.Background(), tc.id, tc.path, rule).Allowed {
			t.Fatalf("expected %s %s allowed", tc.id, tc.path)
		}
	}
}

func TestWindowService_RetryAfterIsTimeToWindowEnd(t *testing.T) {
	c := &clock{t: time.Unix(1_000_020+45, 0)}
	svc := newService(kv.NewMemoryStore(kv.WithClock(c.Now)), c)

	dec := svc.Check(context.Background(), "a", "/x", domain.Rule{Max: 5, Window: time.Minute})
	if dec.RetryAfter != 15*time.Second {
		t.Fatalf("expected 15s, got %s", dec.RetryAfter)
	}
}

func TestWindowService_ReadFailureFailsOpen(t *testing.T) {
	c := &clock{t: time.Unix(1_000_020, 0)}
	store := &brokenStore{Store: kv.NewMemoryStore(), failGet: true}
	svc := newService(store, c)
	rule := domain.Rule{Max: 1, Window: time.Minute}

	for i := 0; i < 3; i++ {
		dec := svc.Check(context.Background(), "a", "/x", rule)
		if !dec.Allowed {
			t.Fatalf("request %d: expected allowed on read failure", i)
		}
		if dec.Current != 0 {
			t.Fatalf("expected current=0, got %d", dec.Current)
		}
	}
}

func TestWindowService_WriteFailureIsSwallowed(t *testing.T) {
	c := &clock{t: time.Unix(1_000_020, 0)}
	store := &brokenStore{Store: kv.NewMemoryStore(), failPut: true}
	svc := newService(store, c)
	rule := domain.Rule{Max: 1, Window: time.Minute}

	// o incremento se perde, então a contagem nunca sai de 0
	for i := 0; i < 3; i++ {
		if !svc.Check(context.Background(), "a", "/x", rule).Allowed {
			t.Fatalf("request %d: expected allowed", i)
		}
	}
	if store.puts != 3 {
		t.Fatalf("expected 3 write attempts, got %d", store.puts)
	}
}

func TestWindowService_BlockedRequestDoesNotWrite(t *testing.T) {
	c := &clock{t: time.Unix(1_000_020, 0)}
	store := &brokenStore{Store: kv.NewMemoryStore(kv.WithClock(c.Now))}
	svc := newService(store, c)
	rule := domain.Rule{Max: 1, Window: time.Minute}

	svc.Check(context.Background(), "a", "/x", rule)
	svc.Check(context.Background(), "a", "/x", rule)
	if store.puts != 1 {
		t.Fatalf("expected a single write, got %d", store.puts)
	}
}

func TestWindowService_UnparsableCountIsZero(t *testing.T) {
	c := &clock{t: time.Unix(1_000_020, 0)}
	store := kv.NewMemoryStore(kv.WithClock(c.Now))
	_ = store.Put(context.Background(), "ratelimit:a:/x:1000020", "garbage", 0)
	svc := newService(store, c)

	dec := svc.Check(context.Background(), "a", "/x", domain.Rule{Max: 2, Window: time.Minute})
	if !dec.Allowed || dec.Current != 0 || dec.Remaining != 1 {
		t.Fatalf("unexpected decision %+v", dec)
	}
}

func TestWindowService_AtomicIncrement(t *testing.T) {
	c := &clock{t: time.Unix(1_000_020, 0)}
	svc := newService(kv.NewMemoryStore(kv.WithClock(c.Now)), c)
	svc.Atomic = true
	rule := domain.Rule{Max: 10, Window: time.Minute}

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.Check(context.Background(), "a", "/x", rule).Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Fatalf("expected exactly 10 allowed with atomic increments, got %d", allowed)
	}
}

func TestWindowService_NoStoreAllows(t *testing.T) {
	dec := WindowService{}.Check(context.Background(), "a", "/x", domain.Rule{Max: 2, Window: time.Minute})
	if !dec.Allowed || dec.Remaining != 1 {
		t.Fatalf("unexpected decision %+v", dec)
	}
}
