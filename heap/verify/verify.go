package verify

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/heap/walker"
	"github.com/joshuapare/heapkit/internal/format"
)

// Error categories.
const (
	TypePrefix   = "Prefix"
	TypeBlocks   = "Blocks"
	TypeFreeList = "FreeList"
)

// ValidationError describes the first invariant found broken.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates every heap invariant in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(data []byte) error {
	if err := Prefix(data); err != nil {
		return err
	}
	free, err := blocks(data)
	if err != nil {
		return err
	}
	return freeList(data, free)
}

// Prefix validates the fixed words written at initialization.
func Prefix(data []byte) error {
	if len(data) < format.PrefixSize {
		return &ValidationError{
			Type:    TypePrefix,
			Message: fmt.Sprintf("arena too small: %d bytes (need %d)", len(data), format.PrefixSize),
			Offset:  -1,
		}
	}
	if !format.IsAligned(len(data)) {
		return &ValidationError{
			Type:    TypePrefix,
			Message: fmt.Sprintf("arena length %d is not 8-byte aligned", len(data)),
			Offset:  -1,
		}
	}

	for _, off := range []int{format.PrologueHeaderOffset, format.PrologueFooterOffset} {
		if tag := format.ReadTag(data, off); tag != format.PrologueTag {
			return &ValidationError{
				Type:    TypePrefix,
				Message: fmt.Sprintf("prologue tag is %s, expected %s", tag, format.PrologueTag),
				Offset:  off,
				Details: map[string]interface{}{"tag": uint32(tag)},
			}
		}
	}

	head := int(format.ReadU32(data, format.HeadSlotOffset))
	if head != format.NilOffset && (head < format.FirstPayload || head >= len(data) || !format.IsAligned(head)) {
		return &ValidationError{
			Type:    TypePrefix,
			Message: fmt.Sprintf("list head 0x%X is not a payload offset", head),
			Offset:  format.HeadSlotOffset,
		}
	}

	epi := format.EpilogueOff(len(data))
	if tag := format.ReadTag(data, epi); tag != format.EpilogueTag {
		return &ValidationError{
			Type:    TypePrefix,
			Message: fmt.Sprintf("epilogue tag is %s, expected %s", tag, format.EpilogueTag),
			Offset:  epi,
		}
	}
	return nil
}

// Blocks validates the physical block sequence.
func Blocks(data []byte) error {
	_, err := blocks(data)
	return err
}

// blocks runs the sequence checks and returns the free-block offsets found.
func blocks(data []byte) (map[int]struct{}, error) {
	free := make(map[int]struct{})
	prevFree := false

	err := walker.Walk(data, func(b walker.Block) error {
		hdr := b.Tag
		if b.Footer != hdr {
			return &ValidationError{
				Type:    TypeBlocks,
				Message: fmt.Sprintf("header %s does not match footer %s", hdr, b.Footer),
				Offset:  b.Header(),
				Details: map[string]interface{}{"header": uint32(hdr), "footer": uint32(b.Footer)},
			}
		}
		if b.Size < format.MinBlock {
			return &ValidationError{
				Type:    TypeBlocks,
				Message: fmt.Sprintf("block size %d below minimum %d", b.Size, format.MinBlock),
				Offset:  b.Header(),
				Details: map[string]interface{}{"size": b.Size},
			}
		}
		if !format.IsAligned(b.Off) {
			return &ValidationError{
				Type:    TypeBlocks,
				Message: "payload not 8-byte aligned",
				Offset:  b.Off,
			}
		}
		if !b.Allocated {
			if prevFree {
				return &ValidationError{
					Type:    TypeBlocks,
					Message: "adjacent free blocks escaped coalescing",
					Offset:  b.Header(),
				}
			}
			free[b.Off] = struct{}{}
		}
		prevFree = !b.Allocated
		return nil
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		var werr *walker.WalkError
		if errors.As(err, &werr) {
			return nil, &ValidationError{Type: TypeBlocks, Message: werr.Msg, Offset: werr.Off}
		}
		return nil, err
	}
	return free, nil
}

// FreeList validates the explicit free list against the block sequence.
func FreeList(data []byte) error {
	free, err := blocks(data)
	if err != nil {
		return err
	}
	return freeList(data, free)
}

func freeList(data []byte, free map[int]struct{}) error {
	seen := 0
	prev := format.NilOffset

	err := walker.FreeList(data, func(n walker.Node) error {
		if _, ok := free[n.Off]; !ok {
			return &ValidationError{
				Type:    TypeFreeList,
				Message: fmt.Sprintf("node is not a free block (header %s)", n.Tag),
				Offset:  n.Off,
			}
		}
		if n.Pred != prev {
			return &ValidationError{
				Type:    TypeFreeList,
				Message: fmt.Sprintf("pred link 0x%X, expected 0x%X", n.Pred, prev),
				Offset:  n.Off + format.PredOffset,
				Details: map[string]interface{}{"pred": n.Pred, "expected": prev},
			}
		}
		delete(free, n.Off)
		seen++
		prev = n.Off
		return nil
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		var werr *walker.WalkError
		if errors.As(err, &werr) {
			return &ValidationError{Type: TypeFreeList, Message: werr.Msg, Offset: werr.Off}
		}
		return err
	}

	if len(free) > 0 {
		off := -1
		for o := range free {
			if off < 0 || o < off {
				off = o
			}
		}
		return &ValidationError{
			Type:    TypeFreeList,
			Message: fmt.Sprintf("%d free block(s) missing from the list", len(free)),
			Offset:  off,
			Details: map[string]interface{}{"listed": seen, "missing": len(free)},
		}
	}
	return nil
}
