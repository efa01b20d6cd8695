// Package memory provides the in-memory key-value store for respkv.
//
// Keys are arbitrary byte strings held in Go strings; values are opaque
// byte slices with an optional absolute expiration. Data is spread across
// the shards of a cmap.Map so that operations on unrelated keys do not
// contend.
//
// Expiration:
//
// Expired entries are invisible to every read. The read that discovers an
// expired entry removes it (lazy expiration), re-checking the entry under
// the shard write lock so that a concurrent SET of a fresh value is never
// lost. A Sweeper can additionally remove expired entries in the
// background (active expiration); it never changes what readers observe.
//
// Thread Safety:
//
// All operations are thread-safe and individually atomic. There are no
// multi-key transactions.
package memory
