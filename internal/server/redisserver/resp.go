package redisserver

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Protocol limits to prevent DoS attacks.
const (
	// MaxArrayLen limits the number of elements in a RESP array.
	MaxArrayLen = 1024 * 1024

	// MaxBulkLen limits the size of a single bulk string (512MB).
	MaxBulkLen = 512 * 1024 * 1024

	// MaxInlineLen limits inline command line length (64KB).
	MaxInlineLen = 64 * 1024

	// maxHeaderLen bounds "*<n>\r\n" and "$<n>\r\n" header lines.
	maxHeaderLen = 64
)

var (
	// ErrNeedMoreData reports that the buffer holds an incomplete frame.
	// Nothing was consumed; call Decode again once more bytes arrived.
	ErrNeedMoreData = errors.New("resp: need more data")

	ErrProtocol      = errors.New("resp: protocol error")
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// IsProtocolError reports whether err means the input stream is malformed
// and the connection cannot continue.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrProtocol) || errors.Is(err, ErrLimitExceeded)
}

// Command is one decoded command invocation.
type Command struct {
	// Name is the command name exactly as the client sent it.
	Name string
	// Args holds the remaining elements. They do not alias the decode buffer.
	// Args is nil only for an empty frame.
	Args [][]byte
}

// Empty reports whether the frame carried no command at all ("*0" or a
// blank inline line). Empty commands get no reply.
func (c Command) Empty() bool {
	return c.Name == "" && c.Args == nil
}

// Decode parses the first complete frame in buf. It returns the command and
// the number of bytes consumed. When buf holds only part of a frame it
// returns ErrNeedMoreData and consumes nothing. Malformed input returns an
// error wrapping ErrProtocol or ErrLimitExceeded.
func Decode(buf []byte) (Command, int, error) {
	if len(buf) == 0 {
		return Command{}, 0, ErrNeedMoreData
	}
	if buf[0] != '*' {
		return decodeInline(buf)
	}
	return decodeArray(buf)
}

func decodeArray(buf []byte) (Command, int, error) {
	line, pos, err := readLine(buf, 0, maxHeaderLen)
	if err != nil {
		return Command{}, 0, err
	}
	n, ok := parseLength(line[1:])
	if !ok || n < 0 {
		return Command{}, 0, fmt.Errorf("%w: invalid multibulk length", ErrProtocol)
	}
	if n > MaxArrayLen {
		return Command{}, 0, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, n, MaxArrayLen)
	}
	if n == 0 {
		return Command{}, pos, nil
	}

	// First pass validates framing and records payload offsets; the second
	// copies every payload into one allocation.
	type span struct{ start, end int }
	spans := make([]span, 0, n)
	total := 0
	for i := 0; i < n; i++ {
		if pos >= len(buf) {
			return Command{}, 0, ErrNeedMoreData
		}
		if buf[pos] != '$' {
			return Command{}, 0, fmt.Errorf("%w: expected '$', got '%c'", ErrProtocol, buf[pos])
		}
		line, next, err := readLine(buf, pos, maxHeaderLen)
		if err != nil {
			return Command{}, 0, err
		}
		size, ok := parseLength(line[1:])
		if !ok || size < 0 {
			return Command{}, 0, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
		}
		if size > MaxBulkLen {
			return Command{}, 0, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, size, MaxBulkLen)
		}
		if len(buf)-next < size+2 {
			return Command{}, 0, ErrNeedMoreData
		}
		if buf[next+size] != '\r' || buf[next+size+1] != '\n' {
			return Command{}, 0, fmt.Errorf("%w: bulk string not terminated by CRLF", ErrProtocol)
		}
		spans = append(spans, span{next, next + size})
		total += size
		pos = next + size + 2
	}

	backing := make([]byte, 0, total)
	args := make([][]byte, 0, n-1)
	var name string
	for i, sp := range spans {
		if i == 0 {
			name = string(buf[sp.start:sp.end])
			continue
		}
		start := len(backing)
		backing = append(backing, buf[sp.start:sp.end]...)
		args = append(args, backing[start:len(backing):len(backing)])
	}
	return Command{Name: name, Args: args}, pos, nil
}

// decodeInline handles the telnet-friendly form: space separated words
// terminated by a newline.
func decodeInline(buf []byte) (Command, int, error) {
	idx := bytes.IndexByte(buf, '\n')
	if idx < 0 {
		if len(buf) > MaxInlineLen {
			return Command{}, 0, fmt.Errorf("%w: inline line length exceeds limit %d", ErrLimitExceeded, MaxInlineLen)
		}
		return Command{}, 0, ErrNeedMoreData
	}
	if idx > MaxInlineLen {
		return Command{}, 0, fmt.Errorf("%w: inline line length exceeds limit %d", ErrLimitExceeded, MaxInlineLen)
	}

	line := bytes.TrimSuffix(buf[:idx], []byte("\r"))
	fields := bytes.Fields(line)
	if len(fields) == 0 {
		return Command{}, idx + 1, nil
	}

	args := make([][]byte, 0, len(fields)-1)
	for _, f := range fields[1:] {
		args = append(args, append([]byte(nil), f...))
	}
	return Command{Name: string(fields[0]), Args: args}, idx + 1, nil
}

// readLine returns the line starting at pos without its CRLF, and the
// offset just past the CRLF.
func readLine(buf []byte, pos, maxLen int) ([]byte, int, error) {
	window := buf[pos:]
	if len(window) > maxLen {
		window = window[:maxLen]
	}
	idx := bytes.IndexByte(window, '\n')
	if idx < 0 {
		if len(buf)-pos >= maxLen {
			return nil, 0, fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, maxLen)
		}
		return nil, 0, ErrNeedMoreData
	}
	if idx == 0 || window[idx-1] != '\r' {
		return nil, 0, fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return window[:idx-1], pos + idx + 1, nil
}

// parseLength parses a decimal length. Signs other than a leading '-' and
// surrounding whitespace are rejected.
func parseLength(b []byte) (int, bool) {
	if len(b) == 0 || len(b) > 19 || b[0] == '+' {
		return 0, false
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, false
	}
	return n, true
}

// EncodeCommand serializes args as a RESP array of bulk strings.
func EncodeCommand(args ...[]byte) []byte {
	size := 16
	for _, a := range args {
		size += len(a) + 16
	}
	dst := make([]byte, 0, size)
	dst = append(dst, '*')
	dst = strconv.AppendInt(dst, int64(len(args)), 10)
	dst = append(dst, '\r', '\n')
	for _, a := range args {
		dst = appendBulk(dst, a)
	}
	return dst
}

// EncodeCommandStrings is EncodeCommand for string arguments.
func EncodeCommandStrings(args ...string) []byte {
	b := make([][]byte, len(args))
	for i, a := range args {
		b[i] = []byte(a)
	}
	return EncodeCommand(b...)
}

func normalizeCommandName(s string) string {
	if s == "" {
		return ""
	}
	// Uppercase ASCII without allocating for already uppercased tokens.
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		return strings.ToUpper(s)
	}
	return s
}
