package nats

import (
	"testing"
	"time"
)

func TestServerPoolDefaultsToDefaultURL(t *testing.T) {
	pool, err := newServerPool(nil, true, -1, 0, time.Millisecond, nil)
	if err != nil {
		t.Fatalf("newServerPool() error = %v", err)
	}
	e := pool.next()
	if e == nil || e.url() != DefaultURL {
		t.Errorf("next() = %+v, want %s", e, DefaultURL)
	}
}

func TestServerPoolRoundRobinsWithoutRandomize(t *testing.T) {
	pool, err := newServerPool([]string{"nats://a:4222", "nats://b:4222"}, true, -1, 0, time.Millisecond, nil)
	if err != nil {
		t.Fatalf("newServerPool() error = %v", err)
	}
	first := pool.next()
	second := pool.next()
	if first.Host == second.Host {
		t.Errorf("expected round-robin to alternate hosts, got %s then %s", first.Host, second.Host)
	}
}

func TestServerPoolSkipsExhaustedPerServerCap(t *testing.T) {
	pool, err := newServerPool([]string{"nats://a:4222", "nats://b:4222"}, true, -1, 1, time.Millisecond, nil)
	if err != nil {
		t.Fatalf("newServerPool() error = %v", err)
	}
	a := pool.next()
	pool.recordAttempt(a)
	for i := 0; i < 5; i++ {
		e := pool.next()
		if e == nil {
			t.Fatal("next() returned nil, want the non-exhausted entry")
		}
		if e.Host == a.Host {
			t.Errorf("next() returned exhausted entry %s", e.Host)
		}
	}
}

func TestServerPoolExhaustedByGlobalCap(t *testing.T) {
	pool, err := newServerPool([]string{"nats://a:4222"}, true, 3, 0, time.Millisecond, nil)
	if err != nil {
		t.Fatalf("newServerPool() error = %v", err)
	}
	if pool.exhausted(2) {
		t.Error("exhausted(2) = true, want false")
	}
	if !pool.exhausted(3) {
		t.Error("exhausted(3) = false, want true")
	}
}

func TestSeedContainsOnlyUserSuppliedEntries(t *testing.T) {
	pool, err := newServerPool([]string{"nats://a:4222"}, true, -1, 0, time.Millisecond, nil)
	if err != nil {
		t.Fatalf("newServerPool() error = %v", err)
	}
	if !pool.seedContains("a:4222") {
		t.Error("seedContains(a:4222) = false, want true")
	}
	pool.applyDiscovered([]string{"a:4222", "b:4222"})
	if pool.seedContains("b:4222") {
		t.Error("seedContains(b:4222) = true, want false (gossiped, not user-seeded)")
	}
}

func TestApplyDiscoveredAddsAndRemoves(t *testing.T) {
	status := newStatusBus()
	pool, err := newServerPool([]string{"nats://a:4222"}, true, -1, 0, time.Millisecond, status)
	if err != nil {
		t.Fatalf("newServerPool() error = %v", err)
	}
	sub := status.Subscribe()
	pool.applyDiscovered([]string{"a:4222", "b:4222"})
	if len(pool.entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(pool.entries))
	}
	select {
	case ev := <-sub:
		if ev.Kind != StatusUpdate {
			t.Errorf("event kind = %v, want StatusUpdate", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pool update event")
	}

	pool.applyDiscovered([]string{"a:4222"})
	if len(pool.entries) != 1 {
		t.Fatalf("got %d entries after removal, want 1", len(pool.entries))
	}
}

func TestBackoffForJittersAroundBase(t *testing.T) {
	pool, err := newServerPool([]string{"nats://a:4222"}, true, -1, 0, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("newServerPool() error = %v", err)
	}
	d := pool.backoffFor(0)
	if d <= 0 {
		t.Errorf("backoffFor(0) = %v, want > 0", d)
	}
	if d < 35*time.Millisecond || d > 65*time.Millisecond {
		t.Errorf("backoffFor(0) = %v, want within 50ms ±30%%", d)
	}
}
