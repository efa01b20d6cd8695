package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	m := New[int]()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.ShardCount() != DefaultShardCount {
		t.Errorf("shard count = %d, want %d", m.ShardCount(), DefaultShardCount)
	}
}

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{2, 2},
		{16, 16},
		{64, 64},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[int](tt.input)
			if m.ShardCount() != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d",
					tt.input, m.ShardCount(), tt.expected)
			}
		})
	}
}

func TestSetAndGet(t *testing.T) {
	m := New[int]()

	m.Set("key1", 100)
	m.Set("key2", 200)

	if val, ok := m.Get("key1"); !ok || val != 100 {
		t.Errorf("Get(key1) = (%d, %v), want (100, true)", val, ok)
	}
	if val, ok := m.Get("key2"); !ok || val != 200 {
		t.Errorf("Get(key2) = (%d, %v), want (200, true)", val, ok)
	}
	if val, ok := m.Get("nonexistent"); ok {
		t.Errorf("Get(nonexistent) = (%d, %v), want (0, false)", val, ok)
	}
}

func TestBinaryKeys(t *testing.T) {
	m := New[string]()
	m.Set("a\x00b", "nul")
	m.Set("a\r\nb", "crlf")

	if v, _ := m.Get("a\x00b"); v != "nul" {
		t.Errorf("Get(a\\x00b) = %q, want nul", v)
	}
	if v, _ := m.Get("a\r\nb"); v != "crlf" {
		t.Errorf("Get(a\\r\\nb) = %q, want crlf", v)
	}
	if _, ok := m.Get("ab"); ok {
		t.Error("ab should not exist")
	}
}

func TestDelete(t *testing.T) {
	m := New[int]()
	m.Set("key1", 100)

	if !m.Delete("key1") {
		t.Error("Delete(key1) = false, want true")
	}
	if _, ok := m.Get("key1"); ok {
		t.Error("key1 should not exist after deletion")
	}
	if m.Delete("nonexistent") {
		t.Error("Delete(nonexistent) = true, want false")
	}
}

func TestDeleteIf(t *testing.T) {
	m := New[int]()
	m.Set("key", 1)

	if m.DeleteIf("key", func(v int) bool { return v == 2 }) {
		t.Error("DeleteIf with false predicate removed the key")
	}
	if _, ok := m.Get("key"); !ok {
		t.Fatal("key should still exist")
	}
	if !m.DeleteIf("key", func(v int) bool { return v == 1 }) {
		t.Error("DeleteIf with true predicate did not remove the key")
	}
	if m.DeleteIf("missing", func(int) bool { return true }) {
		t.Error("DeleteIf(missing) = true, want false")
	}
}

func TestCompute(t *testing.T) {
	m := New[int]()

	v, ok := m.Compute("counter", func(cur int, exists bool) (int, bool) {
		if exists {
			t.Error("counter should not exist yet")
		}
		return cur + 1, true
	})
	if !ok || v != 1 {
		t.Errorf("Compute() = (%d, %v), want (1, true)", v, ok)
	}

	m.Compute("counter", func(cur int, _ bool) (int, bool) { return cur + 1, true })
	if got, _ := m.Get("counter"); got != 2 {
		t.Errorf("counter = %d, want 2", got)
	}

	if _, ok := m.Compute("counter", func(int, bool) (int, bool) { return 0, false }); ok {
		t.Error("Compute returning keep=false should report false")
	}
	if _, ok := m.Get("counter"); ok {
		t.Error("counter should be removed")
	}
}

func TestCountAndClear(t *testing.T) {
	m := New[int]()
	for i := 0; i < 100; i++ {
		m.Set(fmt.Sprintf("key%d", i), i)
	}
	if m.Count() != 100 {
		t.Errorf("Count() = %d, want 100", m.Count())
	}

	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count() after Clear = %d, want 0", m.Count())
	}
}

func TestShardIndexStable(t *testing.T) {
	m := NewWithShards[int](8)
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("key%d", i)
		idx := m.ShardIndex(key)
		if idx < 0 || idx >= 8 {
			t.Fatalf("ShardIndex(%s) = %d, out of range", key, idx)
		}
		if idx != m.ShardIndex(key) {
			t.Fatalf("ShardIndex(%s) not stable", key)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[int]()
	const goroutines = 50
	const ops = 200

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < ops; i++ {
				key := fmt.Sprintf("g%d-k%d", id, i)
				m.Set(key, i)
				if v, ok := m.Get(key); !ok || v != i {
					t.Errorf("Get(%s) = (%d, %v), want (%d, true)", key, v, ok, i)
					return
				}
				if i%2 == 0 {
					m.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if m.Count() != goroutines*ops/2 {
		t.Errorf("Count() = %d, want %d", m.Count(), goroutines*ops/2)
	}
}
