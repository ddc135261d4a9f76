// Package trace reads malloc trace files in the CS:APP malloclab format and
// replays them against an allocator, checking every result as it goes.
//
// A trace starts with four header numbers (suggested heap size, number of
// ids, number of ops, weight) followed by one operation per line:
//
//	a <id> <bytes>   allocate
//	r <id> <bytes>   reallocate
//	f <id>           free
//
// Blank lines and lines starting with # are ignored.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// OpKind identifies a trace operation.
type OpKind byte

const (
	OpAlloc   OpKind = 'a'
	OpRealloc OpKind = 'r'
	OpFree    OpKind = 'f'
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	}
	return fmt.Sprintf("OpKind(%q)", byte(k))
}

// Op is one trace line.
type Op struct {
	Kind OpKind
	ID   int
	Size int // unused for OpFree
	Line int // 1-based line in the source file
}

// Trace is a parsed trace file.
type Trace struct {
	Name          string
	SuggestedHeap int
	NumIDs        int
	NumOps        int
	Weight        int
	Ops           []Op
}

// ParseError reports a malformed trace line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace: line %d: %s", e.Line, e.Msg)
}

const (
	commentPrefix = "#"
	headerFields  = 4

	scannerInitialBufferSize = 64 * 1024
	scannerMaxLineSize       = 1024 * 1024

	// Header values past this cannot describe a heap with 32-bit tags.
	maxHeaderValue = math.MaxInt32
	// Ops beyond this are appended as they are read.
	maxPreallocOps = 1 << 16
)

// ParseFile reads and parses the trace at path.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "trace: open")
	}
	defer f.Close()

	tr, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	tr.Name = path
	return tr, nil
}

// Parse reads a trace. Input may start with a UTF-8 or UTF-16 byte order
// mark; UTF-16 input is converted before parsing.
func Parse(r io.Reader) (*Trace, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, decoder))
	buf := make([]byte, 0, scannerInitialBufferSize)
	scanner.Buffer(buf, scannerMaxLineSize)

	tr := &Trace{}
	var header []int
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		if len(header) < headerFields {
			v, err := strconv.Atoi(line)
			if err != nil || v < 0 {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("header value %q is not a non-negative integer", line)}
			}
			if v > maxHeaderValue {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("header value %d exceeds %d", v, maxHeaderValue)}
			}
			header = append(header, v)
			if len(header) == headerFields {
				tr.SuggestedHeap, tr.NumIDs, tr.NumOps, tr.Weight = header[0], header[1], header[2], header[3]
				tr.Ops = make([]Op, 0, min(tr.NumOps, maxPreallocOps))
			}
			continue
		}

		op, err := parseOp(line, lineNo, tr.NumIDs)
		if err != nil {
			return nil, err
		}
		tr.Ops = append(tr.Ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "trace: read")
	}

	if len(header) < headerFields {
		return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("header has %d of %d values", len(header), headerFields)}
	}
	if len(tr.Ops) != tr.NumOps {
		return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("header declares %d ops, found %d", tr.NumOps, len(tr.Ops))}
	}
	return tr, nil
}

func parseOp(line string, lineNo, numIDs int) (Op, error) {
	fields := strings.Fields(line)
	kind := OpKind(fields[0][0])
	if len(fields[0]) != 1 {
		return Op{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("unknown op %q", fields[0])}
	}

	want := 3
	switch kind {
	case OpAlloc, OpRealloc:
	case OpFree:
		want = 2
	default:
		return Op{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("unknown op %q", fields[0])}
	}
	if len(fields) != want {
		return Op{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("%s takes %d fields, got %d", kind, want-1, len(fields)-1)}
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 || id >= numIDs {
		return Op{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("id %q not in [0, %d)", fields[1], numIDs)}
	}
	op := Op{Kind: kind, ID: id, Line: lineNo}

	if want == 3 {
		size, err := strconv.Atoi(fields[2])
		if err != nil || size < 0 || (kind == OpAlloc && size == 0) {
			return Op{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("bad size %q for %s", fields[2], kind)}
		}
		op.Size = size
	}
	return op, nil
}
