// Package anneal perturbs a dynamic block's Huffman code lengths in search
// of a bit-cheaper re-encoding under a caller-supplied scoring function,
// accepting only candidates that score strictly better while tracking a
// separate, cheaper bit-count estimate to decide which candidate to
// perturb from next.
package anneal

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"

	"github.com/tstromberg/deflopt/bitio"
	"github.com/tstromberg/deflopt/deflate"
	"github.com/tstromberg/deflopt/huffman"
)

// ScoreFunc evaluates a complete byte stream — typically the embedding
// cost of the stream once wrapped for delivery — lower is better.
type ScoreFunc func([]byte) int

// Params controls the search. DefaultParams mirrors the reference tuning.
type Params struct {
	NumIteration       int
	NumPerturbation    int
	ToleranceBit       int
	TerminateThreshold int
}

// DefaultParams returns the reference tuning: 3000 iterations, 3 composed
// perturbations per candidate, a 16-bit estimate tolerance window, and a
// terminate threshold of 0 (stop only once the score can't be 0 or lower,
// i.e. run the full iteration budget).
func DefaultParams() Params {
	return Params{
		NumIteration:       3000,
		NumPerturbation:    3,
		ToleranceBit:       16,
		TerminateThreshold: 0,
	}
}

// Result reports what OptimizeBlock found.
type Result struct {
	BestBlock *deflate.DynamicBlock
	BestScore int
	Tried     int
	Accepted  int
}

// infBits stands in for "this candidate is unusable" (some used symbol has
// no assigned code), matching the sentinel the reference implementation
// returns from its bit-estimate helper.
const infBits = int64(1) << 60

// collectUsage tallies how often each litlen and dist symbol is used by
// tokens, plus the total extra bits their length/distance values need
// (invariant under any re-Huffmanning, since extra bits encode the
// value directly rather than going through a symbol table). The
// mandatory EOB symbol (256) is always counted at least once.
func collectUsage(tokens []deflate.Token) (litlenUsage, distUsage map[int]int, extraBits int64, err error) {
	litlenUsage = map[int]int{256: 1}
	distUsage = map[int]int{}

	for _, t := range tokens {
		switch v := t.(type) {
		case deflate.Literal:
			litlenUsage[v.Lit]++
		case deflate.Match:
			lcode, _, lbits, err := deflate.LengthToCodeAndExtra(v.Length)
			if err != nil {
				return nil, nil, 0, err
			}
			litlenUsage[lcode]++
			extraBits += int64(lbits)

			dcode, _, dbits, err := deflate.DistanceToCodeAndExtra(v.Distance)
			if err != nil {
				return nil, nil, 0, err
			}
			distUsage[dcode]++
			extraBits += int64(dbits)
		}
	}
	return litlenUsage, distUsage, extraBits, nil
}

// totalBitsFromUsage sums count*length over a usage census against a code
// length vector, or infBits if any used symbol has no assigned length —
// the length vector can't encode this token stream at all.
func totalBitsFromUsage(lengths []int, usage map[int]int) int64 {
	var total int64
	for sym, count := range usage {
		if sym >= len(lengths) || lengths[sym] == 0 {
			return infBits
		}
		total += int64(count) * int64(lengths[sym])
	}
	return total
}

// headerBits returns the serialized bit length of a dynamic header alone.
func headerBits(header *deflate.DynHeader) (int64, error) {
	w := bitio.NewWriter()
	if err := header.Dump(w); err != nil {
		return 0, err
	}
	return w.NumWrittenBits(), nil
}

// perturbSwap swaps two randomly chosen nonzero entries of lengths,
// in place.
func perturbSwap(lengths []int, rng *rand.Rand) {
	var idxs []int
	for i, l := range lengths {
		if l > 0 {
			idxs = append(idxs, i)
		}
	}
	if len(idxs) < 2 {
		return
	}
	i := idxs[rng.IntN(len(idxs))]
	j := idxs[rng.IntN(len(idxs))]
	for j == i {
		j = idxs[rng.IntN(len(idxs))]
	}
	lengths[i], lengths[j] = lengths[j], lengths[i]
}

// lengthPairFingerprint hashes a (litlen, dist) length-vector pair into a
// single uint64, so the search can recognize a perturbation that cycles
// back to a combination it has already priced without keeping the full
// vectors around as map keys.
func lengthPairFingerprint(litlen, dist []int) uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, v := range litlen {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	h.Write([]byte{0xff}) // separator between the two vectors
	for _, v := range dist {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// randomPerturbLengths returns copies of litlen and dist with num
// composed single-swap perturbations applied, split with probability
// 0.65 toward the litlen vector (it's usually much larger, so swaps there
// explore more of the space) and 0.35 toward dist.
func randomPerturbLengths(litlen, dist []int, num int, rng *rand.Rand) ([]int, []int) {
	l := append([]int(nil), litlen...)
	d := append([]int(nil), dist...)
	for i := 0; i < num; i++ {
		if rng.Float64() < 0.65 {
			perturbSwap(l, rng)
		} else {
			perturbSwap(d, rng)
		}
	}
	return l, d
}

// OptimizeBlock searches for a re-encoding of base whose serialized bytes
// — sandwiched between prefix and suffix, which hold already-finalized
// stream context and the next block's leading bits respectively — score
// strictly lower under score. prefix and suffix are read-only; a snapshot
// is taken before each candidate is rendered.
func OptimizeBlock(base *deflate.DynamicBlock, score ScoreFunc, prefix, suffix *bitio.Writer, p Params, rng *rand.Rand) (*Result, error) {
	baseBytes, err := renderBlock(base, prefix, suffix)
	if err != nil {
		return nil, err
	}
	baseScore := score(baseBytes)

	litlenUsage, distUsage, extraBits, err := collectUsage(base.Tokens)
	if err != nil {
		return nil, err
	}
	estimateBits := func(header *deflate.DynHeader) (int64, error) {
		hb, err := headerBits(header)
		if err != nil {
			return 0, err
		}
		total := extraBits + hb
		total += totalBitsFromUsage(header.Dist.Lengths(), distUsage)
		total += totalBitsFromUsage(header.LitLen.Lengths(), litlenUsage)
		return total, nil
	}

	baseBits, err := estimateBits(base.Header)
	if err != nil {
		return nil, err
	}

	bestBlock := base
	bestScore := baseScore
	bestBits := baseBits
	bestLitLen := base.Header.LitLen.Lengths()
	bestDist := base.Header.Dist.Lengths()

	seen := map[uint64]bool{lengthPairFingerprint(bestLitLen, bestDist): true}

	tried, accepted := 0, 0
	for tried < p.NumIteration && p.TerminateThreshold < bestScore {
		newLitLen, newDist := randomPerturbLengths(bestLitLen, bestDist, p.NumPerturbation, rng)

		if !huffman.IsValid(newLitLen, 15) || !huffman.IsValid(newDist, 15) {
			continue
		}

		tried++
		fp := lengthPairFingerprint(newLitLen, newDist)
		if seen[fp] {
			// A perturbation cycled back to a combination already priced
			// this search; it counts as an attempt, but re-scoring it would
			// waste a full stream render for a result we already know.
			continue
		}
		seen[fp] = true

		header, err := deflate.BuildHeader(newLitLen, newDist, bestBlock.Header.CLLengths)
		if err != nil {
			continue
		}

		estBits, err := estimateBits(header)
		if err != nil {
			continue
		}
		if estBits-baseBits > int64(p.ToleranceBit) {
			continue
		}

		candBlock := &deflate.DynamicBlock{BFinal: base.BFinal, Header: header, Tokens: base.Tokens}
		candBytes, err := renderBlock(candBlock, prefix, suffix)
		if err != nil {
			continue
		}

		accepted++
		sc := score(candBytes)
		if sc < bestScore {
			bestScore = sc
			bestBlock = candBlock
		}
		if estBits < bestBits {
			bestLitLen, bestDist = newLitLen, newDist
			bestBits = estBits
		}
	}

	return &Result{BestBlock: bestBlock, BestScore: bestScore, Tried: tried, Accepted: accepted}, nil
}

// renderBlock serializes block alone, then sandwiches it between snapshots
// of prefix and suffix, returning the full byte sequence a scorer should
// evaluate.
func renderBlock(block *deflate.DynamicBlock, prefix, suffix *bitio.Writer) ([]byte, error) {
	w := prefix.Snapshot()
	blockW := bitio.NewWriter()
	if err := block.Dump(blockW); err != nil {
		return nil, err
	}
	w.Extend(blockW)
	w.Extend(suffix)
	return w.Bytes(), nil
}
