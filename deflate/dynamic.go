package deflate

import (
	"fmt"

	"github.com/tstromberg/deflopt/bitio"
	"github.com/tstromberg/deflopt/clrle"
	"github.com/tstromberg/deflopt/huffman"
)

// DynHeader is a dynamic block's header: the HLIT/HDIST/HCLEN fields and
// the three Huffman codes they describe.
type DynHeader struct {
	HLit  int
	HDist int
	HClen int

	CLLengths []int // always length 19, indexed by symbol

	LitLen *huffman.Code
	Dist   *huffman.Code
}

func parseDynHeader(r *bitio.Reader) (*DynHeader, error) {
	offset := r.BitPosition()

	hlit, err := r.ReadBits(5)
	if err != nil {
		return nil, err
	}
	hdist, err := r.ReadBits(5)
	if err != nil {
		return nil, err
	}
	hclenField, err := r.ReadBits(4)
	if err != nil {
		return nil, err
	}

	numLitLen := int(hlit) + 257
	numDist := int(hdist) + 1
	clCount := int(hclenField) + 4

	clLengths := make([]int, 19)
	for i := 0; i < clCount; i++ {
		sym := CLOrder[i]
		v, err := r.ReadBits(3)
		if err != nil {
			return nil, err
		}
		clLengths[sym] = int(v)
	}
	clCode, err := huffman.New(clLengths)
	if err != nil {
		return nil, fmt.Errorf("deflate: bit offset %d: code-length alphabet: %w", offset, err)
	}

	total := numLitLen + numDist
	seq := make([]int, 0, total)
	prevLen := -1
	for len(seq) < total {
		sym, err := clCode.Decode(r)
		if err != nil {
			return nil, err
		}
		switch {
		case sym >= 0 && sym <= 15:
			seq = append(seq, sym)
			prevLen = sym
		case sym == 16:
			if prevLen == -1 {
				return nil, fmt.Errorf("deflate: bit offset %d: %w", r.BitPosition(), ErrCLSymbol16WithoutPrior)
			}
			repeat, err := r.ReadBits(2)
			if err != nil {
				return nil, err
			}
			for i := 0; i < int(repeat)+3; i++ {
				seq = append(seq, prevLen)
			}
		case sym == 17:
			repeat, err := r.ReadBits(3)
			if err != nil {
				return nil, err
			}
			for i := 0; i < int(repeat)+3; i++ {
				seq = append(seq, 0)
			}
			prevLen = 0
		case sym == 18:
			repeat, err := r.ReadBits(7)
			if err != nil {
				return nil, err
			}
			for i := 0; i < int(repeat)+11; i++ {
				seq = append(seq, 0)
			}
			prevLen = 0
		default:
			return nil, fmt.Errorf("deflate: bit offset %d: %w", r.BitPosition(), ErrInvalidCLSymbol)
		}
	}
	// A run symbol (16/17/18) can overshoot the exact boundary between
	// litlen and dist lengths; RFC1951 streams never do this, but we trim
	// rather than reject, matching how the reference decoder indexes by
	// count rather than validating the tail.
	seq = seq[:total]

	litlenLengths := seq[:numLitLen]
	distLengths := seq[numLitLen:]

	if litlenLengths[256] == 0 {
		return nil, fmt.Errorf("deflate: bit offset %d: %w", offset, ErrMissingEOB)
	}

	litlenCode, err := huffman.New(litlenLengths)
	if err != nil {
		return nil, fmt.Errorf("deflate: bit offset %d: litlen code: %w", offset, err)
	}
	distCode, err := huffman.New(distLengths)
	if err != nil {
		return nil, fmt.Errorf("deflate: bit offset %d: distance code: %w", offset, err)
	}

	return &DynHeader{
		HLit:      int(hlit),
		HDist:     int(hdist),
		HClen:     int(hclenField),
		CLLengths: clLengths,
		LitLen:    litlenCode,
		Dist:      distCode,
	}, nil
}

// Dump writes the header's bits: HLIT/HDIST/HCLEN, the code-length
// alphabet's own lengths, then the RLE-coded litlen+dist length sequence.
func (h *DynHeader) Dump(w *bitio.Writer) error {
	if len(h.LitLen.Lengths()) < 257 || h.LitLen.Lengths()[256] == 0 {
		return fmt.Errorf("deflate: dynamic header: %w", ErrMissingEOB)
	}

	w.WriteBits(uint32(h.HLit), 5)
	w.WriteBits(uint32(h.HDist), 5)
	w.WriteBits(uint32(h.HClen), 4)

	clCode, err := huffman.New(h.CLLengths)
	if err != nil {
		return fmt.Errorf("deflate: dynamic header: code-length alphabet: %w", err)
	}
	clCount := h.HClen + 4
	for i := 0; i < clCount; i++ {
		sym := CLOrder[i]
		w.WriteBits(uint32(h.CLLengths[sym]), 3)
	}

	rle, err := clrle.Encode(h.LitLen.Lengths(), h.Dist.Lengths(), h.CLLengths)
	if err != nil {
		return fmt.Errorf("deflate: dynamic header: %w", err)
	}
	for _, sym := range rle {
		if err := clCode.Encode(w, sym.Sym); err != nil {
			return fmt.Errorf("deflate: dynamic header: %w", err)
		}
		if sym.ExtraBits > 0 {
			w.WriteBits(uint32(sym.ExtraVal), sym.ExtraBits)
		}
	}
	return nil
}

// DynamicBlock is a block compressed with a per-block Huffman header
// (BTYPE=10).
type DynamicBlock struct {
	BFinal bool
	Header *DynHeader
	Tokens []Token
}

func (b *DynamicBlock) Final() bool { return b.BFinal }

func parseDynamic(r *bitio.Reader, bfinal bool) (*DynamicBlock, error) {
	header, err := parseDynHeader(r)
	if err != nil {
		return nil, err
	}
	toks, err := LoadTokens(r, header.LitLen, header.Dist)
	if err != nil {
		return nil, err
	}
	return &DynamicBlock{BFinal: bfinal, Header: header, Tokens: toks}, nil
}

// Dump writes the block header, the dynamic Huffman header, and the token
// stream.
func (b *DynamicBlock) Dump(w *bitio.Writer) error {
	writeHeader(w, b.BFinal, 0b10)
	if err := b.Header.Dump(w); err != nil {
		return err
	}
	return DumpTokens(w, b.Tokens, b.Header.LitLen, b.Header.Dist)
}
