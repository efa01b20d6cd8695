package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/respkv/internal/server/redisserver"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the accepted output formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// ParseFormat validates a format name. The empty string selects text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// Formatter writes a reply to w.
type Formatter interface {
	Format(w io.Writer, r redisserver.Reply) error
}

// NewFormatter creates a formatter for the given format. Unknown formats
// fall back to text.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// Value converts a reply into plain Go values for structured encoders.
// Error replies become {"error": text} so they stay distinguishable from
// status strings.
func Value(r redisserver.Reply) any {
	switch r.Kind {
	case redisserver.KindStatus:
		return r.Str
	case redisserver.KindError:
		return map[string]string{"error": r.Str}
	case redisserver.KindInteger:
		return r.Int
	case redisserver.KindBulk:
		return string(r.Bulk)
	case redisserver.KindArray:
		values := make([]any, len(r.Elems))
		for i, e := range r.Elems {
			values[i] = Value(e)
		}
		return values
	default:
		return nil
	}
}
