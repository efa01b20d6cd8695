package cmap

// Range iterates over all key-value pairs.
//
// The callback returns false to stop iteration.
// Note: This acquires locks shard by shard, so the view may not be consistent.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for i := range m.shards {
		if !m.RangeShard(i, fn) {
			return
		}
	}
}

// RangeShard iterates over the pairs held by the shard at index. It returns
// false if fn stopped the iteration early. An out of range index visits
// nothing.
func (m *Map[V]) RangeShard(index int, fn func(key string, value V) bool) bool {
	if index < 0 || index >= len(m.shards) {
		return true
	}
	s := m.shards[index]
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.items {
		if !fn(k, v) {
			return false
		}
	}
	return true
}

// PurgeShard removes every pair in the shard at index for which pred returns
// true, stopping after limit removals when limit is positive. It returns the
// number of pairs removed.
func (m *Map[V]) PurgeShard(index int, limit int, pred func(key string, value V) bool) int {
	if index < 0 || index >= len(m.shards) {
		return 0
	}
	s := m.shards[index]
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, v := range s.items {
		if limit > 0 && removed >= limit {
			break
		}
		if pred(k, v) {
			delete(s.items, k)
			removed++
		}
	}
	return removed
}
