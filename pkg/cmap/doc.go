// Package cmap provides a string-keyed concurrent map split into shards.
//
// Each shard owns a plain Go map guarded by its own sync.RWMutex, so
// operations on keys that hash to different shards never contend. Keys are
// assigned to shards with murmur3.
//
// Usage:
//
//	m := cmap.NewWithShards[[]byte](32)
//	m.Set("key", []byte("value"))
//	val, ok := m.Get("key")
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (Get, Has, Range) use
// RLock, write operations (Set, Delete, Compute, DeleteIf) use Lock. No
// lock is held while a caller-supplied callback performs I/O, as long as
// the callback itself does not.
package cmap
