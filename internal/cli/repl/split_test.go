package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"ping", []string{"ping"}},
		{"set  k\tv", []string{"set", "k", "v"}},
		{`set k "hello world"`, []string{"set", "k", "hello world"}},
		{`set k "a\nb"`, []string{"set", "k", "a\nb"}},
		{`set k "\x00\xff"`, []string{"set", "k", "\x00\xff"}},
		{`set k 'it\'s'`, []string{"set", "k", "it's"}},
		{`set k 'raw\n'`, []string{"set", "k", `raw\n`}},
		{`set k ""`, []string{"set", "k", ""}},
		{`echo pre"fix"`, []string{"echo", "prefix"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := splitArgs(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitArgs_Unbalanced(t *testing.T) {
	for _, line := range []string{`set k "open`, `set k 'open`, `echo "bad\q"`} {
		_, err := splitArgs(line)
		assert.Error(t, err, line)
	}
}
