package printer

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/walker"
)

func state(allocated bool) string {
	if allocated {
		return "allocated"
	}
	return "free"
}

func (p *Printer) printText(blocks []walker.Block, nodes []walker.Node, s walker.Summary) error {
	w := p.writer

	if _, err := fmt.Fprintf(w, "heap: %d bytes\n", len(p.data)); err != nil {
		return err
	}

	if p.opts.ShowBlocks {
		fmt.Fprintf(w, "%-10s %-10s %-10s %s\n", "OFFSET", "SIZE", "PAYLOAD", "STATE")
		for _, b := range blocks {
			line := fmt.Sprintf("0x%08X %-10d %-10d %s", b.Off, b.Size, b.Payload(), state(b.Allocated))
			if b.Footer != b.Tag {
				line += fmt.Sprintf("  (footer %s)", b.Footer)
			}
			fmt.Fprintln(w, line)
		}
	}

	if p.opts.ShowFreeList {
		fmt.Fprintf(w, "free list: %d node(s)\n", len(nodes))
		for i, n := range nodes {
			fmt.Fprintf(w, "  [%d] 0x%08X size=%d pred=0x%X succ=0x%X\n", i, n.Off, n.Tag.Size(), n.Pred, n.Succ)
		}
	}

	if p.opts.ShowSummary {
		fmt.Fprintf(w, "blocks: %d (allocated %d, free %d)\n", s.BlockCount, s.AllocatedCount, s.FreeCount)
		fmt.Fprintf(w, "allocated bytes: %d, free bytes: %d, largest free: %d\n", s.AllocatedBytes, s.FreeBytes, s.LargestFree)
		fmt.Fprintf(w, "utilization: %.1f%%\n", 100*s.Utilization())
	}
	return nil
}
