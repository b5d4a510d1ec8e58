package deflate

import (
	"fmt"

	"github.com/tstromberg/deflopt/bitio"
)

// StoredBlock is an uncompressed block (BTYPE=00): a byte-aligned LEN/NLEN
// pair followed by LEN raw bytes.
type StoredBlock struct {
	BFinal bool
	Data   []byte
}

func (b *StoredBlock) Final() bool { return b.BFinal }

func parseStored(r *bitio.Reader, bfinal bool) (*StoredBlock, error) {
	r.AlignToNextByte()

	length, err := r.ReadBits(16)
	if err != nil {
		return nil, err
	}
	nlen, err := r.ReadBits(16)
	if err != nil {
		return nil, err
	}
	if length^nlen != 0xFFFF {
		return nil, fmt.Errorf("deflate: bit offset %d: %w", r.BitPosition(), ErrStoredLenMismatch)
	}

	data, err := r.ReadBytes(int(length))
	if err != nil {
		return nil, err
	}
	return &StoredBlock{BFinal: bfinal, Data: data}, nil
}

// Dump writes the block header, LEN/NLEN, and raw payload.
func (b *StoredBlock) Dump(w *bitio.Writer) error {
	writeHeader(w, b.BFinal, 0b00)
	w.AlignToByte()

	length := len(b.Data)
	if length > 0xFFFF {
		return fmt.Errorf("deflate: stored block data length %d exceeds 65535", length)
	}
	nlen := length ^ 0xFFFF
	w.WriteBits(uint32(length), 16)
	w.WriteBits(uint32(nlen), 16)
	w.WriteBytes(b.Data)
	return nil
}
