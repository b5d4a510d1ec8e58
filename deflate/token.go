package deflate

import (
	"fmt"

	"github.com/tstromberg/deflopt/bitio"
	"github.com/tstromberg/deflopt/huffman"
)

// Token is either a Literal or a Match. Both block types (fixed and
// dynamic) share this token stream representation; only the Huffman codes
// used to encode it differ.
type Token interface {
	isToken()
}

// Literal is a single uncompressed byte value, carried as a litlen symbol
// in [0, 255].
type Literal struct {
	Lit int
}

// Match is a back-reference: copy Length bytes starting Distance bytes
// before the current output position.
type Match struct {
	Length   int
	Distance int
}

func (Literal) isToken() {}
func (Match) isToken()   {}

// LoadTokens decodes a token stream from r using litlen/dist, stopping at
// (and consuming) the end-of-block symbol.
func LoadTokens(r *bitio.Reader, litlen, dist *huffman.Code) ([]Token, error) {
	var toks []Token
	for {
		sym, err := litlen.Decode(r)
		if err != nil {
			return nil, err
		}
		switch {
		case sym < 256:
			toks = append(toks, Literal{Lit: sym})
		case sym == 256:
			return toks, nil
		default:
			length, err := lenCodeToLength(r, sym)
			if err != nil {
				return nil, err
			}
			dcode, err := dist.Decode(r)
			if err != nil {
				return nil, err
			}
			distance, err := distCodeToDistance(r, dcode)
			if err != nil {
				return nil, err
			}
			toks = append(toks, Match{Length: length, Distance: distance})
		}
	}
}

// DumpTokens encodes toks to w using litlen/dist, followed by a trailing
// end-of-block symbol.
func DumpTokens(w *bitio.Writer, toks []Token, litlen, dist *huffman.Code) error {
	for _, t := range toks {
		switch v := t.(type) {
		case Literal:
			if err := litlen.Encode(w, v.Lit); err != nil {
				return err
			}
		case Match:
			lcode, lextra, lbits, err := LengthToCodeAndExtra(v.Length)
			if err != nil {
				return err
			}
			if err := litlen.Encode(w, lcode); err != nil {
				return err
			}
			if lbits > 0 {
				w.WriteBits(uint32(lextra), lbits)
			}
			dcode, dextra, dbits, err := DistanceToCodeAndExtra(v.Distance)
			if err != nil {
				return err
			}
			if err := dist.Encode(w, dcode); err != nil {
				return err
			}
			if dbits > 0 {
				w.WriteBits(uint32(dextra), dbits)
			}
		default:
			return fmt.Errorf("deflate: unknown token type %T", t)
		}
	}
	return litlen.Encode(w, 256)
}
