// Package deflate models a single RFC1951 DEFLATE block stream: parsing
// bytes into a typed block/token representation and serializing that
// representation back to bits.
package deflate

import (
	"fmt"

	"github.com/tstromberg/deflopt/bitio"
)

// Block is one of StoredBlock, FixedBlock, or DynamicBlock.
type Block interface {
	// Final reports the block's BFINAL bit: whether it is the last block
	// in the stream.
	Final() bool

	// Dump serializes the block, including its 3-bit header, to w.
	Dump(w *bitio.Writer) error
}

// Parse reads one block header and body from r and returns its typed
// representation.
func Parse(r *bitio.Reader) (Block, error) {
	offset := r.BitPosition()

	bfinalBit, err := r.ReadBit()
	if err != nil {
		return nil, err
	}
	btype, err := r.ReadBits(2)
	if err != nil {
		return nil, err
	}
	bfinal := bfinalBit != 0

	switch btype {
	case 0b00:
		return parseStored(r, bfinal)
	case 0b01:
		return parseFixed(r, bfinal)
	case 0b10:
		return parseDynamic(r, bfinal)
	default:
		return nil, fmt.Errorf("deflate: bit offset %d: %w", offset, ErrReservedBlockType)
	}
}

// writeHeader writes the shared 3-bit block header: BFINAL then 2-bit BTYPE.
func writeHeader(w *bitio.Writer, bfinal bool, btype uint32) {
	v := uint32(0)
	if bfinal {
		v = 1
	}
	w.WriteBits(v, 1)
	w.WriteBits(btype, 2)
}
