package deflate

import (
	"github.com/tstromberg/deflopt/clrle"
	"github.com/tstromberg/deflopt/huffman"
)

// lastNonzeroIndex returns the highest index holding a nonzero value, or -1
// if a has none.
func lastNonzeroIndex(a []int) int {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] != 0 {
			return i
		}
	}
	return -1
}

// BuildHeader constructs a complete dynamic header for litlenLengths and
// distLengths: it trims both to their last used symbol (respecting the
// RFC1951 minimums of 257 litlen and 1 dist entries), RLE-encodes the
// combined length sequence under prevCLLengths' bit costs, derives a fresh
// length-limited (7-bit) code-length alphabet code from the resulting
// symbol frequencies, and recomputes HCLEN/HLIT/HDIST accordingly.
//
// prevCLLengths supplies the cost model the RLE encoder optimizes against;
// callers doing iterative search typically pass the previous iteration's
// code-length alphabet lengths, since the new header's own (not yet known)
// lengths cannot be used to cost the very RLE stream that will determine
// them.
func BuildHeader(litlenLengths, distLengths, prevCLLengths []int) (*DynHeader, error) {
	numLitLen := lastNonzeroIndex(litlenLengths) + 1
	if numLitLen < 257 {
		numLitLen = 257
	}
	numDist := lastNonzeroIndex(distLengths) + 1
	if numDist < 1 {
		numDist = 1
	}
	litlenLengths = litlenLengths[:numLitLen]
	distLengths = distLengths[:numDist]

	rle, err := clrle.Encode(litlenLengths, distLengths, prevCLLengths)
	if err != nil {
		return nil, err
	}

	clFreq := make([]int, 19)
	for _, sym := range rle {
		clFreq[sym.Sym]++
	}
	clLengthsRaw := huffman.LengthsFromFreq(clFreq, 7)

	hclen := HCLENFromLengths(clLengthsRaw)

	active := make(map[int]bool, hclen+4)
	for _, sym := range CLOrder[:hclen+4] {
		active[sym] = true
	}
	clLengths := make([]int, 19)
	for i, l := range clLengthsRaw {
		if active[i] {
			clLengths[i] = l
		}
	}

	litlenCode, err := huffman.New(litlenLengths)
	if err != nil {
		return nil, err
	}
	distCode, err := huffman.New(distLengths)
	if err != nil {
		return nil, err
	}

	return &DynHeader{
		HLit:      numLitLen - 257,
		HDist:     numDist - 1,
		HClen:     hclen,
		CLLengths: clLengths,
		LitLen:    litlenCode,
		Dist:      distCode,
	}, nil
}

// NewDynHeaderFromLengths builds a header directly from already-decided
// code-length vectors, without re-deriving the code-length alphabet's own
// code from frequency counts. This is what a text-format loader needs: the
// dumped format records cl/litlen/dist lengths verbatim, so HCLEN is
// recomputed from clLengths but nothing is re-optimized.
func NewDynHeaderFromLengths(clLengths, litlenLengths, distLengths []int) (*DynHeader, error) {
	litlenCode, err := huffman.New(litlenLengths)
	if err != nil {
		return nil, err
	}
	distCode, err := huffman.New(distLengths)
	if err != nil {
		return nil, err
	}
	return &DynHeader{
		HLit:      len(litlenLengths) - 257,
		HDist:     len(distLengths) - 1,
		HClen:     HCLENFromLengths(clLengths),
		CLLengths: clLengths,
		LitLen:    litlenCode,
		Dist:      distCode,
	}, nil
}
