// Package walker traverses the raw bytes of a heap arena: the physical block
// sequence between the prologue and the epilogue, and the explicit free list
// threaded through free payloads.
//
// Walkers only check what they need to keep moving (bounds, alignment,
// termination) and report the first structural problem as a *WalkError.
// Semantic invariants are the business of package verify.
package walker

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// ErrStop can be returned by a visitor to end a walk early without error.
var ErrStop = errors.New("walker: stop")

// WalkError reports where a walk could not continue.
type WalkError struct {
	Off int
	Msg string
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("walker: at offset %d: %s", e.Off, e.Msg)
}

// Block is one real block found by Walk.
type Block struct {
	Off       int        // payload offset
	Size      int        // total size including header and footer
	Allocated bool       // from the header
	Tag       format.Tag // header as stored
	Footer    format.Tag // footer as stored
}

// Header returns the offset of the block's header.
func (b Block) Header() int { return format.HeaderOff(b.Off) }

// End returns the payload offset of the next physical block.
func (b Block) End() int { return format.NextBlock(b.Off, b.Size) }

// Payload returns the number of usable bytes in the block.
func (b Block) Payload() int { return format.PayloadSize(b.Size) }

// Walk calls fn for every block from the first real block up to, but not
// including, the epilogue. It fails if the arena is too short for the fixed
// prefix, if a size is misaligned or runs past the arena, or if the
// epilogue is not the last word of the arena.
func Walk(data []byte, fn func(Block) error) error {
	if len(data) < format.PrefixSize {
		return &WalkError{Off: 0, Msg: fmt.Sprintf("arena is %d bytes, shorter than the %d-byte prefix", len(data), format.PrefixSize)}
	}

	bp := format.FirstPayload
	for {
		hdr := format.HeaderOff(bp)
		if !buf.Has(data, hdr, format.WordSize) {
			return &WalkError{Off: hdr, Msg: "header beyond arena end (missing epilogue)"}
		}
		tag := format.ReadTag(data, hdr)
		size := tag.Size()

		if size == 0 {
			if hdr != format.EpilogueOff(len(data)) {
				return &WalkError{Off: hdr, Msg: fmt.Sprintf("zero-size tag %s before arena end %d", tag, len(data))}
			}
			return nil
		}
		if !tag.Valid() {
			return &WalkError{Off: hdr, Msg: fmt.Sprintf("tag 0x%08X has stray low bits", uint32(tag))}
		}
		if size < format.DoubleSize {
			return &WalkError{Off: hdr, Msg: fmt.Sprintf("block size %d too small to frame", size)}
		}
		ftr := format.FooterOff(bp, size)
		if !buf.Has(data, ftr, format.WordSize) || format.NextBlock(bp, size) > len(data) {
			return &WalkError{Off: hdr, Msg: fmt.Sprintf("block size %d runs past arena end %d", size, len(data))}
		}

		b := Block{
			Off:       bp,
			Size:      size,
			Allocated: tag.Allocated(),
			Tag:       tag,
			Footer:    format.ReadTag(data, ftr),
		}
		if err := fn(b); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
		bp = b.End()
	}
}

// Blocks collects every block of the arena.
func Blocks(data []byte) ([]Block, error) {
	var out []Block
	err := Walk(data, func(b Block) error {
		out = append(out, b)
		return nil
	})
	return out, err
}
