package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache[T any](size int, ttl time.Duration) (*LRUCache[T], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[T](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCacheEviction(t *testing.T) {
	c, _ := newTestCache[string](3, time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Get("key1") // key2 is now least recently used
	c.Set("key4", "value4")

	if _, found := c.Get("key2"); found {
		t.Error("key2 should have been evicted")
	}
	for _, k := range []string{"key1", "key3", "key4"} {
		if _, found := c.Get(k); !found {
			t.Errorf("%s should still exist", k)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("expected 1 eviction, got %d", got)
	}
}

func TestLRUCacheOverwrite(t *testing.T) {
	c, _ := newTestCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Fatalf("expected overwritten value 2, got %d", v)
	}
	if c.Size() != 1 {
		t.Fatalf("overwrite should not grow the cache, size=%d", c.Size())
	}
}

func TestLRUCacheTTLExpiration(t *testing.T) {
	c, clock := newTestCache[string](100, 50*time.Millisecond)

	c.Set("key1", "value1")
	if _, found := c.Get("key1"); !found {
		t.Error("key1 should exist immediately")
	}

	clock.advance(60 * time.Millisecond)
	if _, found := c.Get("key1"); found {
		t.Error("key1 should have expired")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be dropped on read, size=%d", c.Size())
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestLRUCacheZeroTTLNeverExpires(t *testing.T) {
	c, clock := newTestCache[string](10, 0)
	c.Set("k", "v")
	clock.advance(24 * time.Hour)
	if _, found := c.Get("k"); !found {
		t.Fatal("zero TTL entries should not expire")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Fatalf("nothing should be cleaned, got %d", n)
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c, _ := newTestCache[string](10, time.Hour)
	c.Set("user-1", "state")
	c.Delete("user-1")
	c.Delete("missing")
	if _, found := c.Get("user-1"); found {
		t.Fatal("deleted key should be gone")
	}
}

func TestManagerSweep(t *testing.T) {
	a, clockA := newTestCache[string](100, 50*time.Millisecond)
	b, _ := newTestCache[int](100, time.Hour)

	a.Set("key1", "value1")
	a.Set("key2", "value2")
	a.Set("key3", "value3")
	b.Set("fresh", 1)
	clockA.advance(60 * time.Millisecond)

	m := NewManager(nil)
	m.Register(a)
	m.Register(b)

	if removed := m.Sweep(); removed != 3 {
		t.Errorf("expected 3 items cleaned, got %d", removed)
	}
	if b.Size() != 1 {
		t.Errorf("unexpired cache should be untouched, size=%d", b.Size())
	}
}

func TestManagerStop(t *testing.T) {
	m := NewManager(nil)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()

	idle := NewManager(nil)
	idle.Stop()
}

func BenchmarkLRUCache(b *testing.B) {
	c := NewLRUCache[int](1000, time.Hour)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%10 == 0 {
			c.Set("bench-key", i)
		} else {
			c.Get("bench-key")
		}
	}
}
