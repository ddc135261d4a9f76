package walker

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Node is one free-list entry as stored in the arena.
type Node struct {
	Off  int        // payload offset
	Pred int        // predecessor payload offset, 0 for the list-head slot
	Succ int        // successor payload offset, 0 at the tail
	Tag  format.Tag // header of the block
}

// Head returns the payload offset stored in the list-head slot.
func Head(data []byte) (int, error) {
	if !buf.Has(data, format.HeadSlotOffset, format.WordSize) {
		return 0, &WalkError{Off: format.HeadSlotOffset, Msg: "arena too short for the list-head slot"}
	}
	return int(format.ReadU32(data, format.HeadSlotOffset)), nil
}

// ReadNode decodes the free-list entry at bp.
func ReadNode(data []byte, bp int) (Node, error) {
	if bp < format.FirstPayload || !format.IsAligned(bp) ||
		!buf.Has(data, format.HeaderOff(bp), format.WordSize+2*format.LinkSize) {
		return Node{}, &WalkError{Off: bp, Msg: "free-list link points outside the block area"}
	}
	return Node{
		Off:  bp,
		Pred: int(format.ReadU64(data, bp+format.PredOffset)),
		Succ: int(format.ReadU64(data, bp+format.SuccOffset)),
		Tag:  format.ReadTag(data, format.HeaderOff(bp)),
	}, nil
}

// FreeList calls fn for every node reachable from the list head, in list
// order. A list longer than the arena could possibly hold is reported as a
// cycle.
func FreeList(data []byte, fn func(Node) error) error {
	bp, err := Head(data)
	if err != nil {
		return err
	}

	limit := len(data)/format.MinBlock + 1
	for steps := 0; bp != format.NilOffset; steps++ {
		if steps > limit {
			return &WalkError{Off: bp, Msg: fmt.Sprintf("free list longer than %d nodes (cycle)", limit)}
		}
		n, err := ReadNode(data, bp)
		if err != nil {
			return err
		}
		if err := fn(n); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
		bp = n.Succ
	}
	return nil
}
