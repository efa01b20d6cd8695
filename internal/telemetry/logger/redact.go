package logger

import (
	"log/slog"
	"strings"
)

// sensitiveKeyParts mark attribute keys whose values are masked. "value"
// covers stored payloads, which must never reach the log.
var sensitiveKeyParts = []string{"password", "secret", "token", "credential", "auth", "value"}

const redactedValue = "***REDACTED***"

// redactSensitive masks non-empty string and byte slice attributes with a
// sensitive key, descending into groups.
func redactSensitive(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		attrs := v.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	case slog.KindString:
		if v.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindAny:
		if b, ok := v.Any().([]byte); ok && len(b) > 0 && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}
	return a
}

// IsSensitiveKey reports whether key names content that should be masked.
func IsSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}
