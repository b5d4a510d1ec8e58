package anneal

import (
	"math/rand/v2"

	"github.com/tstromberg/deflopt/bitio"
	"github.com/tstromberg/deflopt/deflate"
)

// OptimizeStream parses stream into its constituent blocks and re-encodes
// each dynamic block in place via OptimizeBlock, leaving stored and fixed
// blocks untouched. Each block is scored in the context of the
// already-finalized bytes before it (prefix) and the first 7 bits of the
// block after it (suffix) — enough to pin byte alignment without
// requiring the rest of a not-yet-decided block.
func OptimizeStream(stream []byte, score ScoreFunc, p Params, rng *rand.Rand) ([]byte, error) {
	r := bitio.NewReader(stream)
	var blocks []deflate.Block
	for {
		blk, err := deflate.Parse(r)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, blk)
		if blk.Final() {
			break
		}
	}

	res := bitio.NewWriter()
	for i, blk := range blocks {
		dyn, ok := blk.(*deflate.DynamicBlock)
		if !ok {
			if err := blk.Dump(res); err != nil {
				return nil, err
			}
			continue
		}

		prefix := res.Snapshot()
		suffix := bitio.NewWriter()
		if !dyn.Final() {
			nextBits, err := leadingBits(blocks[i+1], 7)
			if err != nil {
				return nil, err
			}
			suffix.WriteBits(nextBits, 7)
		} else {
			suffix.WriteBits(0, 7)
		}

		result, err := OptimizeBlock(dyn, score, prefix, suffix, p, rng)
		if err != nil {
			return nil, err
		}
		if err := result.BestBlock.Dump(res); err != nil {
			return nil, err
		}
	}
	return res.Bytes(), nil
}

// leadingBits serializes blk alone and returns its first n bits.
func leadingBits(blk deflate.Block, n int) (uint32, error) {
	w := bitio.NewWriter()
	if err := blk.Dump(w); err != nil {
		return 0, err
	}
	r := bitio.NewReader(w.Bytes())
	return r.ReadBits(n)
}
