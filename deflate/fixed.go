package deflate

import (
	"github.com/tstromberg/deflopt/bitio"
	"github.com/tstromberg/deflopt/huffman"
)

// staticLitLenCode and staticDistCode are RFC1951's fixed codes, shared by
// every FixedBlock in the process.
var (
	staticLitLenCode *huffman.Code
	staticDistCode   *huffman.Code
)

func init() {
	var err error
	staticLitLenCode, err = huffman.New(fixedLitLenLengths())
	if err != nil {
		panic("deflate: fixed litlen code failed to construct: " + err.Error())
	}
	staticDistCode, err = huffman.New(fixedDistLengths())
	if err != nil {
		panic("deflate: fixed dist code failed to construct: " + err.Error())
	}
}

// FixedBlock is a block compressed with RFC1951's fixed Huffman codes
// (BTYPE=01).
type FixedBlock struct {
	BFinal bool
	Tokens []Token
}

func (b *FixedBlock) Final() bool { return b.BFinal }

func parseFixed(r *bitio.Reader, bfinal bool) (*FixedBlock, error) {
	toks, err := LoadTokens(r, staticLitLenCode, staticDistCode)
	if err != nil {
		return nil, err
	}
	return &FixedBlock{BFinal: bfinal, Tokens: toks}, nil
}

// Dump writes the block header followed by the token stream under the
// fixed codes.
func (b *FixedBlock) Dump(w *bitio.Writer) error {
	writeHeader(w, b.BFinal, 0b01)
	return DumpTokens(w, b.Tokens, staticLitLenCode, staticDistCode)
}
