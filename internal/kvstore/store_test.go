package kvstore

import (
	"sync"
	"testing"
	"time"
)

func TestStoreGetSet(t *testing.T) {
	s := New[int]()
	if _, ok := s.Get("a"); ok {
		t.Error("expected miss on empty store")
	}
	s.Set("a", 1)
	v, ok := s.Get("a")
	if !ok || v != 1 {
		t.Errorf("expected a=1, got %d ok=%v", v, ok)
	}
}

func TestStoreDelete(t *testing.T) {
	s := New[string]()
	s.Set("k", "v")
	if !s.Delete("k") {
		t.Error("expected Delete to report true for existing key")
	}
	if s.Delete("k") {
		t.Error("expected Delete to report false after removal")
	}
}

func TestStoreUpdateAtomic(t *testing.T) {
	s := New[int]()
	s.Set("n", 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("n", func(v int, ok bool) (int, bool) {
				return v + 1, true
			})
		}()
	}
	wg.Wait()

	v, _ := s.Get("n")
	if v != 50 {
		t.Errorf("expected 50 after 50 atomic increments, got %d", v)
	}
}

func TestStoreUpdateDelete(t *testing.T) {
	s := New[int]()
	s.Set("k", 7)
	s.Update("k", func(v int, ok bool) (int, bool) {
		return 0, false
	})
	if _, ok := s.Get("k"); ok {
		t.Error("expected key removed when fn returns keep=false")
	}
}

func TestStoreUpdateAbsentNoop(t *testing.T) {
	s := New[int]()
	s.Update("missing", func(v int, ok bool) (int, bool) {
		if ok {
			t.Error("expected ok=false for absent key")
		}
		return 0, false
	})
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", s.Len())
	}
}

func TestStoreFilter(t *testing.T) {
	s := New[int]()
	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("c", 3)

	odd := s.Filter(func(_ string, v int) bool { return v%2 == 1 })
	if len(odd) != 2 {
		t.Errorf("expected 2 odd values, got %d", len(odd))
	}
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := New[int]()
	s.Set("a", 1)

	snap := s.Snapshot()
	snap["a"] = 99

	v, _ := s.Get("a")
	if v != 1 {
		t.Error("Snapshot did not return a copy; mutation leaked")
	}
}

func TestStoreLoadSnapshotAndReset(t *testing.T) {
	s := New[int]()
	s.LoadSnapshot(map[string]int{"x": 10, "y": 20})
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Len())
	}
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("expected empty store after reset, got %d", s.Len())
	}
}

func TestClockAdvanceAndReset(t *testing.T) {
	c := NewClock()
	if c.Offset() != 0 {
		t.Fatalf("expected zero offset, got %v", c.Offset())
	}

	c.Advance(31 * 24 * time.Hour)
	if c.Offset() != 31*24*time.Hour {
		t.Errorf("expected 744h offset, got %v", c.Offset())
	}

	// simulated now should be roughly offset ahead of wall clock
	ahead := time.Until(c.Now())
	if ahead < 30*24*time.Hour {
		t.Errorf("expected Now() about 31 days ahead, got %v", ahead)
	}

	c.Reset()
	if c.Offset() != 0 {
		t.Errorf("expected zero offset after reset, got %v", c.Offset())
	}
}
