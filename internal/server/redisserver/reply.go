package redisserver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/internal/core/domain"
)

// ReplyKind identifies the RESP type of a Reply.
type ReplyKind uint8

const (
	KindStatus ReplyKind = iota + 1
	KindError
	KindInteger
	KindBulk
	KindNullBulk
	KindArray
	KindNullArray
)

// String returns the RESP type name.
func (k ReplyKind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulk:
		return "bulk"
	case KindNullBulk, KindNullArray:
		return "nil"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Reply is a typed RESP value.
type Reply struct {
	Kind  ReplyKind
	Str   string  // status and error text
	Int   int64   // integer value
	Bulk  []byte  // bulk payload
	Elems []Reply // array elements
}

// Common replies.
var (
	ReplyOK   = Status("OK")
	ReplyPong = Status("PONG")
	ReplyNil  = Reply{Kind: KindNullBulk}
)

// Status builds a simple string reply.
func Status(s string) Reply { return Reply{Kind: KindStatus, Str: s} }

// Error builds an error reply from its full text, e.g. "ERR syntax error".
func Error(s string) Reply { return Reply{Kind: KindError, Str: s} }

// ErrorFrom builds an error reply from err. A *domain.DomainError supplies
// its own prefix; any other error is reported with "ERR".
func ErrorFrom(err error) Reply { return Error(domain.ReplyText(err)) }

// Integer builds an integer reply.
func Integer(n int64) Reply { return Reply{Kind: KindInteger, Int: n} }

// Bulk builds a bulk string reply. A nil slice produces the null bulk.
func Bulk(b []byte) Reply {
	if b == nil {
		return ReplyNil
	}
	return Reply{Kind: KindBulk, Bulk: b}
}

// BulkString builds a bulk string reply from s.
func BulkString(s string) Reply { return Reply{Kind: KindBulk, Bulk: []byte(s)} }

// Array builds an array reply.
func Array(elems ...Reply) Reply {
	if elems == nil {
		elems = []Reply{}
	}
	return Reply{Kind: KindArray, Elems: elems}
}

// IsError reports whether r is an error reply.
func (r Reply) IsError() bool { return r.Kind == KindError }

// AppendReply appends the wire form of r to dst.
func AppendReply(dst []byte, r Reply) []byte {
	switch r.Kind {
	case KindStatus:
		dst = append(dst, '+')
		dst = appendLine(dst, r.Str)
	case KindError:
		dst = append(dst, '-')
		dst = appendLine(dst, r.Str)
	case KindInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, r.Int, 10)
		dst = append(dst, '\r', '\n')
	case KindBulk:
		dst = appendBulk(dst, r.Bulk)
	case KindNullBulk:
		dst = append(dst, "$-1\r\n"...)
	case KindArray:
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(r.Elems)), 10)
		dst = append(dst, '\r', '\n')
		for _, e := range r.Elems {
			dst = AppendReply(dst, e)
		}
	case KindNullArray:
		dst = append(dst, "*-1\r\n"...)
	}
	return dst
}

// EncodeReply returns the wire form of r.
func EncodeReply(r Reply) []byte {
	return AppendReply(nil, r)
}

// WriteReply writes the wire form of r to w without flushing.
func WriteReply(w *bufio.Writer, r Reply) error {
	// Bulk payloads are written straight through to avoid copying them.
	if r.Kind == KindBulk {
		if _, err := w.WriteString("$" + strconv.Itoa(len(r.Bulk)) + "\r\n"); err != nil {
			return err
		}
		if _, err := w.Write(r.Bulk); err != nil {
			return err
		}
		_, err := w.WriteString("\r\n")
		return err
	}
	_, err := w.Write(AppendReply(nil, r))
	return err
}

func appendBulk(dst, b []byte) []byte {
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(b)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, b...)
	return append(dst, '\r', '\n')
}

// appendLine writes a status or error line. CR and LF cannot appear inside
// a line, so they are replaced by spaces.
func appendLine(dst []byte, s string) []byte {
	if strings.ContainsAny(s, "\r\n") {
		s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	}
	dst = append(dst, s...)
	return append(dst, '\r', '\n')
}

// ReadReply reads one reply from r. It is the client side of the codec,
// used by respkv-cli and by tests.
func ReadReply(r *bufio.Reader) (Reply, error) {
	line, err := readReplyLine(r)
	if err != nil {
		return Reply{}, err
	}
	if len(line) == 0 {
		return Reply{}, fmt.Errorf("%w: empty reply line", ErrProtocol)
	}

	body := line[1:]
	switch line[0] {
	case '+':
		return Status(body), nil
	case '-':
		return Error(body), nil
	case ':':
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return Reply{}, fmt.Errorf("%w: invalid integer %q", ErrProtocol, body)
		}
		return Integer(n), nil
	case '$':
		n, ok := parseLength([]byte(body))
		if !ok || n < -1 {
			return Reply{}, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
		}
		if n == -1 {
			return ReplyNil, nil
		}
		if n > MaxBulkLen {
			return Reply{}, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, n, MaxBulkLen)
		}
		buf := make([]byte, n+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Reply{}, err
		}
		if buf[n] != '\r' || buf[n+1] != '\n' {
			return Reply{}, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
		}
		return Reply{Kind: KindBulk, Bulk: buf[:n]}, nil
	case '*':
		n, ok := parseLength([]byte(body))
		if !ok || n < -1 {
			return Reply{}, fmt.Errorf("%w: invalid array length", ErrProtocol)
		}
		if n == -1 {
			return Reply{Kind: KindNullArray}, nil
		}
		if n > MaxArrayLen {
			return Reply{}, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, n, MaxArrayLen)
		}
		elems := make([]Reply, 0, n)
		for i := 0; i < n; i++ {
			e, err := ReadReply(r)
			if err != nil {
				return Reply{}, err
			}
			elems = append(elems, e)
		}
		return Array(elems...), nil
	default:
		return Reply{}, fmt.Errorf("%w: unexpected reply type '%c'", ErrProtocol, line[0])
	}
}

func readReplyLine(r *bufio.Reader) (string, error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		if err == nil {
			buf = append(buf, frag...)
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			buf = append(buf, frag...)
			if len(buf) > MaxInlineLen {
				return "", fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, MaxInlineLen)
			}
			continue
		}
		return "", err
	}

	if len(buf) < 2 || buf[len(buf)-2] != '\r' {
		return "", fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return string(buf[:len(buf)-2]), nil
}
