// Package printer renders a heap arena as a human-readable block map or as
// JSON, for heapctl dump and for debugging tests.
package printer

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/heap/walker"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs a human-readable block map.
	FormatText Format = "text"

	// FormatJSON outputs a single JSON object.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// ShowBlocks lists every block in address order.
	// Default: true
	ShowBlocks bool

	// ShowFreeList lists the free list in traversal order.
	// Default: false
	ShowFreeList bool

	// ShowSummary prints block counts and utilization.
	// Default: true
	ShowSummary bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:      FormatText,
		ShowBlocks:  true,
		ShowSummary: true,
	}
}

// Printer handles formatted output of a heap arena.
type Printer struct {
	opts   Options
	writer io.Writer
	data   []byte
}

// New creates a new Printer over the arena bytes.
//
// Example:
//
//	p := printer.New(store.Bytes(), os.Stdout, printer.DefaultOptions())
//	p.PrintHeap()
func New(data []byte, w io.Writer, opts Options) *Printer {
	return &Printer{
		data:   data,
		writer: w,
		opts:   opts,
	}
}

// PrintHeap writes the heap in the configured format. A heap too damaged
// to walk is reported as an error after whatever could be printed.
func (p *Printer) PrintHeap() error {
	blocks, walkErr := walker.Blocks(p.data)

	var nodes []walker.Node
	listErr := walker.FreeList(p.data, func(n walker.Node) error {
		nodes = append(nodes, n)
		return nil
	})

	summary, _ := walker.Summarize(p.data)

	var err error
	switch p.opts.Format {
	case FormatJSON:
		err = p.printJSON(blocks, nodes, summary)
	case FormatText, "":
		err = p.printText(blocks, nodes, summary)
	default:
		return errors.Newf("printer: unknown format %q", p.opts.Format)
	}
	if err != nil {
		return err
	}
	if walkErr != nil {
		return errors.Wrap(walkErr, "printer: block walk")
	}
	if p.opts.ShowFreeList && listErr != nil {
		return errors.Wrap(listErr, "printer: free list walk")
	}
	return nil
}
