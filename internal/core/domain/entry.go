package domain

import (
	"math"
	"time"
)

// MaxTTL is the longest expiration accepted, so that now+ttl never
// overflows a millisecond timestamp.
const MaxTTL = time.Duration(math.MaxInt64 / 2)

// Entry is a value held by the store.
type Entry struct {
	// Value is the opaque, binary-safe payload.
	Value []byte

	// ExpiresAt is the absolute expiration timestamp (Unix milliseconds).
	// Zero means the entry never expires.
	ExpiresAt int64
}

// NewEntry creates an entry without expiration.
func NewEntry(value []byte) Entry {
	return Entry{Value: value}
}

// NewEntryWithTTL creates an entry that expires ttl after now.
// A ttl of zero or less produces an entry that is already expired.
func NewEntryWithTTL(value []byte, ttl time.Duration, now time.Time) Entry {
	return Entry{Value: value, ExpiresAt: ExpireAt(now, ttl)}
}

// ExpireAt converts a relative ttl into the absolute millisecond timestamp
// used by Entry. The result is never zero, since zero means "no expiration".
func ExpireAt(now time.Time, ttl time.Duration) int64 {
	if ttl > MaxTTL {
		ttl = MaxTTL
	}
	at := now.UnixMilli() + ttl.Milliseconds()
	if at <= 0 {
		at = 1
	}
	return at
}

// HasTTL reports whether the entry carries an expiration.
func (e Entry) HasTTL() bool {
	return e.ExpiresAt != 0
}

// IsExpired reports whether the entry is no longer visible at now.
// An entry is visible only while its expiration lies strictly in the future.
func (e Entry) IsExpired(now time.Time) bool {
	if e.ExpiresAt == 0 {
		return false
	}
	return now.UnixMilli() >= e.ExpiresAt
}

// Remaining returns the time left before expiration.
// Returns 0 if expired or no expiration is set.
func (e Entry) Remaining(now time.Time) time.Duration {
	if e.ExpiresAt == 0 {
		return 0
	}
	left := e.ExpiresAt - now.UnixMilli()
	if left <= 0 {
		return 0
	}
	return time.Duration(left) * time.Millisecond
}
