// Package domain defines the core domain models for respkv.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - Entry: a stored value and its optional absolute expiration
//   - Errors: command errors carrying their RESP error prefix
package domain
