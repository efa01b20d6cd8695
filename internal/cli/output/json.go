package output

import (
	"encoding/json"
	"io"

	"github.com/yndnr/respkv/internal/server/redisserver"
)

// JSONFormatter formats replies as JSON.
type JSONFormatter struct{}

// Format formats r as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, r redisserver.Reply) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Value(r))
}
