package printer

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/joshuapare/heapkit/heap/walker"
)

func (p *Printer) printJSON(blocks []walker.Block, nodes []walker.Node, s walker.Summary) error {
	writer := jwriter.NewWriter()

	obj := writer.Object()
	obj.Name("HeapBytes").Int(len(p.data))

	if p.opts.ShowBlocks {
		arr := obj.Name("Blocks").Array()
		for _, b := range blocks {
			bo := arr.Object()
			bo.Name("Offset").Int(b.Off)
			bo.Name("Size").Int(b.Size)
			bo.Name("Allocated").Bool(b.Allocated)
			if b.Footer != b.Tag {
				bo.Name("Footer").String(b.Footer.String())
			}
			bo.End()
		}
		arr.End()
	}

	if p.opts.ShowFreeList {
		arr := obj.Name("FreeList").Array()
		for _, n := range nodes {
			no := arr.Object()
			no.Name("Offset").Int(n.Off)
			no.Name("Size").Int(n.Tag.Size())
			no.Name("Pred").Int(n.Pred)
			no.Name("Succ").Int(n.Succ)
			no.End()
		}
		arr.End()
	}

	if p.opts.ShowSummary {
		summaryJSON(obj.Name("Summary").Object(), s)
	}
	obj.End()

	if err := writer.Error(); err != nil {
		return err
	}
	out := writer.Bytes()
	out = append(out, '\n')
	_, err := p.writer.Write(out)
	return err
}

// summaryJSON fills and closes json with the fields of s.
func summaryJSON(json jwriter.ObjectState, s walker.Summary) {
	json.Name("Blocks").Int(s.BlockCount)
	json.Name("Allocated").Int(s.AllocatedCount)
	json.Name("AllocatedBytes").Int(s.AllocatedBytes)
	json.Name("Free").Int(s.FreeCount)
	json.Name("FreeBytes").Int(s.FreeBytes)
	json.Name("LargestFree").Int(s.LargestFree)
	json.Name("SmallestFree").Int(s.SmallestFree)
	json.Name("FreeListLength").Int(s.ListLength)
	json.Name("Utilization").Float64(s.Utilization())
	json.End()
}
