package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/internal/server/redisserver"
)

// TextFormatter renders replies the way redis-cli does.
type TextFormatter struct{}

// Format writes r followed by a newline.
func (f *TextFormatter) Format(w io.Writer, r redisserver.Reply) error {
	var b strings.Builder
	writeText(&b, r, "")
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// Text returns the text rendering of r without a trailing newline.
func Text(r redisserver.Reply) string {
	var b strings.Builder
	writeText(&b, r, "")
	return b.String()
}

func writeText(b *strings.Builder, r redisserver.Reply, indent string) {
	switch r.Kind {
	case redisserver.KindStatus:
		b.WriteString(r.Str)
	case redisserver.KindError:
		b.WriteString("(error) ")
		b.WriteString(r.Str)
	case redisserver.KindInteger:
		fmt.Fprintf(b, "(integer) %d", r.Int)
	case redisserver.KindBulk:
		b.WriteString(strconv.Quote(string(r.Bulk)))
	case redisserver.KindNullBulk, redisserver.KindNullArray:
		b.WriteString("(nil)")
	case redisserver.KindArray:
		if len(r.Elems) == 0 {
			b.WriteString("(empty array)")
			return
		}
		// Nested elements line up under the first character after "N) ".
		width := len(strconv.Itoa(len(r.Elems)))
		for i, e := range r.Elems {
			if i > 0 {
				b.WriteByte('\n')
				b.WriteString(indent)
			}
			label := fmt.Sprintf("%*d) ", width, i+1)
			b.WriteString(label)
			writeText(b, e, indent+strings.Repeat(" ", len(label)))
		}
	}
}
