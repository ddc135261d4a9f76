package trace

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

const shortTrace = `20000
3
8
1
# two blocks, a realloc and frees
a 0 100
a 1 2000

r 0 300
f 1
a 2 16
r 2 8
f 0
f 2
`

func TestParse(t *testing.T) {
	tr, err := Parse(strings.NewReader(shortTrace))
	require.NoError(t, err)

	require.Equal(t, 20000, tr.SuggestedHeap)
	require.Equal(t, 3, tr.NumIDs)
	require.Equal(t, 8, tr.NumOps)
	require.Equal(t, 1, tr.Weight)
	require.Len(t, tr.Ops, 8)

	require.Equal(t, Op{Kind: OpAlloc, ID: 0, Size: 100, Line: 6}, tr.Ops[0])
	require.Equal(t, Op{Kind: OpRealloc, ID: 0, Size: 300, Line: 9}, tr.Ops[2])
	require.Equal(t, Op{Kind: OpFree, ID: 1, Line: 10}, tr.Ops[3])
}

func TestParse_UTF16WithBOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := enc.String(shortTrace)
	require.NoError(t, err)

	tr, err := Parse(strings.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, tr.Ops, 8)
}

func TestParse_UTF8BOM(t *testing.T) {
	tr, err := Parse(bytes.NewReader(append([]byte("\xEF\xBB\xBF"), shortTrace...)))
	require.NoError(t, err)
	require.Equal(t, 20000, tr.SuggestedHeap)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
		msg   string
	}{
		{"BadHeader", "20000\nthree\n", 2, "header value"},
		{"ShortHeader", "1\n2\n", 2, "header has 2"},
		{"UnknownOp", "0\n1\n1\n1\nx 0 5\n", 5, "unknown op"},
		{"LongOp", "0\n1\n1\n1\nalloc 0 5\n", 5, "unknown op"},
		{"MissingSize", "0\n1\n1\n1\na 0\n", 5, "takes 2 fields"},
		{"FreeExtra", "0\n1\n1\n1\nf 0 5\n", 5, "takes 1 fields"},
		{"IDRange", "0\n1\n1\n1\na 1 5\n", 5, "not in [0, 1)"},
		{"ZeroAlloc", "0\n1\n1\n1\na 0 0\n", 5, "bad size"},
		{"NegativeRealloc", "0\n1\n1\n1\nr 0 -4\n", 5, "bad size"},
		{"OpCount", "0\n1\n2\n1\na 0 8\n", 5, "declares 2 ops, found 1"},
		{"HugeOpCount", "1\n1\n9223372036854775807\n1\na 0 8\n", 3, "exceeds"},
		{"HugeIDCount", "1\n4294967297\n1\n1\na 0 8\n", 2, "exceeds"},
		{"LargeOpCountShortBody", "1\n1\n2147483647\n1\na 0 8\n", 5, "declares 2147483647 ops, found 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			perr, ok := err.(*ParseError)
			require.True(t, ok, "got %T: %v", err, err)
			require.Equal(t, tt.line, perr.Line)
			require.Contains(t, perr.Msg, tt.msg)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.rep")
	require.NoError(t, os.WriteFile(path, []byte(shortTrace), 0o600))

	tr, err := ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, path, tr.Name)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.rep"))
	require.Error(t, err)
}
