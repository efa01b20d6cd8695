package memory

import (
	"time"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/pkg/cmap"
)

// ExpireMode tells how an expired entry was removed.
type ExpireMode string

const (
	// ExpireLazy marks entries removed by the read that found them expired.
	ExpireLazy ExpireMode = "lazy"
	// ExpireActive marks entries removed by the background sweep.
	ExpireActive ExpireMode = "active"
)

// Store is the shared key-value store.
type Store struct {
	data     *cmap.Map[domain.Entry]
	now      func() time.Time
	onExpire func(mode ExpireMode, n int)
}

// Option configures the Store.
type Option func(*Store)

// WithShardCount sets the number of shards. It must be a power of 2.
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.data = cmap.NewWithShards[domain.Entry](n)
	}
}

// WithClock replaces the wall clock used for expiration.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithExpireHook registers a callback invoked after expired entries are
// removed. It must not call back into the store.
func WithExpireHook(fn func(mode ExpireMode, n int)) Option {
	return func(s *Store) {
		s.onExpire = fn
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		data: cmap.New[domain.Entry](),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores value under key without expiration, replacing any previous
// value and TTL. The store takes ownership of value.
func (s *Store) Set(key string, value []byte) {
	s.data.Set(key, domain.NewEntry(value))
}

// SetWithTTL stores value under key, expiring ttl from now. A ttl of zero
// or less stores an entry that is already expired.
func (s *Store) SetWithTTL(key string, value []byte, ttl time.Duration) {
	s.data.Set(key, domain.NewEntryWithTTL(value, ttl, s.now()))
}

// Get returns the value stored under key. An expired entry is removed and
// reported as absent. The returned slice must not be modified.
func (s *Store) Get(key string) ([]byte, bool) {
	e, ok := s.lookup(key)
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// lookup returns the live entry for key, evicting it if it has expired.
func (s *Store) lookup(key string) (domain.Entry, bool) {
	e, ok := s.data.Get(key)
	if !ok {
		return domain.Entry{}, false
	}

	now := s.now()
	if !e.IsExpired(now) {
		return e, true
	}

	// Another writer may have replaced the entry since the read lock was
	// released; only remove it if it is still expired.
	if s.data.DeleteIf(key, func(cur domain.Entry) bool { return cur.IsExpired(now) }) {
		s.expired(ExpireLazy, 1)
	}
	return domain.Entry{}, false
}

// Exists reports whether key holds a live entry.
func (s *Store) Exists(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

// Delete removes key and reports whether a live entry was removed.
func (s *Store) Delete(key string) bool {
	now := s.now()
	live := false
	s.data.Compute(key, func(cur domain.Entry, exists bool) (domain.Entry, bool) {
		live = exists && !cur.IsExpired(now)
		return cur, false
	})
	return live
}

// Expire sets the TTL of an existing key. A ttl of zero or less deletes the
// key. It reports whether the key existed.
func (s *Store) Expire(key string, ttl time.Duration) bool {
	now := s.now()
	found := false
	s.data.Compute(key, func(cur domain.Entry, exists bool) (domain.Entry, bool) {
		if !exists || cur.IsExpired(now) {
			return cur, false
		}
		found = true
		if ttl <= 0 {
			return cur, false
		}
		cur.ExpiresAt = domain.ExpireAt(now, ttl)
		return cur, true
	})
	return found
}

// Persist removes the TTL of key. It reports whether a TTL was removed.
func (s *Store) Persist(key string) bool {
	now := s.now()
	removed := false
	s.data.Compute(key, func(cur domain.Entry, exists bool) (domain.Entry, bool) {
		if !exists || cur.IsExpired(now) {
			return cur, false
		}
		if cur.HasTTL() {
			cur.ExpiresAt = 0
			removed = true
		}
		return cur, true
	})
	return removed
}

// TTL returns the time left before key expires. hasTTL is false for keys
// without expiration; ok is false for missing keys.
func (s *Store) TTL(key string) (remaining time.Duration, hasTTL bool, ok bool) {
	e, ok := s.lookup(key)
	if !ok {
		return 0, false, false
	}
	if !e.HasTTL() {
		return 0, false, true
	}
	return e.Remaining(s.now()), true, true
}

// Len returns the number of stored entries, including expired entries that
// have not been collected yet.
func (s *Store) Len() int {
	return s.data.Count()
}

// Flush removes every entry.
func (s *Store) Flush() {
	s.data.Clear()
}

// Scan walks the store one shard at a time starting at cursor, collecting
// live keys accepted by match (nil accepts all) until at least count keys
// were gathered. It returns the cursor to resume from; 0 means the walk is
// complete. Keys added or removed during a walk may or may not be returned.
func (s *Store) Scan(cursor uint64, count int, match func(key string) bool) (uint64, []string) {
	if count <= 0 {
		count = 10
	}
	shards := uint64(s.data.ShardCount())
	now := s.now()

	var keys []string
	for idx := cursor; idx < shards; idx++ {
		s.data.RangeShard(int(idx), func(key string, e domain.Entry) bool {
			if e.IsExpired(now) {
				return true
			}
			if match == nil || match(key) {
				keys = append(keys, key)
			}
			return true
		})
		if len(keys) >= count {
			next := idx + 1
			if next >= shards {
				next = 0
			}
			return next, keys
		}
	}
	return 0, keys
}

// DeleteExpired removes expired entries from every shard, at most limit per
// shard when limit is positive. It returns the number of entries removed.
func (s *Store) DeleteExpired(limit int) int {
	now := s.now()
	expired := func(_ string, e domain.Entry) bool { return e.IsExpired(now) }

	total := 0
	for i := 0; i < s.data.ShardCount(); i++ {
		total += s.data.PurgeShard(i, limit, expired)
	}
	if total > 0 {
		s.expired(ExpireActive, total)
	}
	return total
}

func (s *Store) expired(mode ExpireMode, n int) {
	if s.onExpire != nil {
		s.onExpire(mode, n)
	}
}
