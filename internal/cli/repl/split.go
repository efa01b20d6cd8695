package repl

import (
	"errors"
	"strconv"
	"strings"
)

var errUnbalancedQuotes = errors.New("invalid argument(s): unbalanced quotes")

// splitArgs splits a line into arguments. Double-quoted arguments accept
// Go escape sequences (\n, \x00, \"); single-quoted arguments are taken
// literally except for \'.
func splitArgs(line string) ([]string, error) {
	var args []string
	i := 0
	for {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= len(line) {
			return args, nil
		}

		var cur strings.Builder
		for i < len(line) && line[i] != ' ' && line[i] != '\t' {
			switch line[i] {
			case '"':
				end := closingQuote(line, i+1, '"')
				if end < 0 {
					return nil, errUnbalancedQuotes
				}
				s, err := strconv.Unquote(line[i : end+1])
				if err != nil {
					return nil, errUnbalancedQuotes
				}
				cur.WriteString(s)
				i = end + 1
			case '\'':
				end := closingQuote(line, i+1, '\'')
				if end < 0 {
					return nil, errUnbalancedQuotes
				}
				cur.WriteString(strings.ReplaceAll(line[i+1:end], `\'`, `'`))
				i = end + 1
			default:
				cur.WriteByte(line[i])
				i++
			}
		}
		args = append(args, cur.String())
	}
}

// closingQuote returns the index of the unescaped quote q at or after
// start, or -1.
func closingQuote(line string, start int, q byte) int {
	for j := start; j < len(line); j++ {
		switch line[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return -1
}
