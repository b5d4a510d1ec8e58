package huffman

import (
	"container/heap"
	"fmt"
)

// KraftOverflow reports whether lengths, interpreted as a prefix code,
// over-subscribes the code space: sum(2^-l) > 1 over its positive entries.
func KraftOverflow(lengths []int) bool {
	var total float64
	for _, l := range lengths {
		if l <= 0 {
			continue
		}
		total += 1.0 / float64(uint64(1)<<uint(l))
		if total > 1.0+1e-12 {
			return true
		}
	}
	return false
}

// FixLengthsKraft repairs an over-subscribed length vector by repeatedly
// lengthening whichever short code extends it the least, until the Kraft
// inequality holds (or maxBits makes that impossible).
func FixLengthsKraft(lengths []int, maxBits int) ([]int, error) {
	lens := append([]int(nil), lengths...)

	for KraftOverflow(lens) {
		type cand struct{ l, idx int }
		var cands []cand
		for i, l := range lens {
			if l > 0 && l < maxBits {
				cands = append(cands, cand{l, i})
			}
		}
		if len(cands) == 0 {
			return nil, fmt.Errorf("huffman: cannot satisfy Kraft inequality within %d bits", maxBits)
		}
		// Ascending by length, then index, matching Python's sort of
		// (length, index) tuples.
		for i := 1; i < len(cands); i++ {
			for j := i; j > 0 && (cands[j].l < cands[j-1].l || (cands[j].l == cands[j-1].l && cands[j].idx < cands[j-1].idx)); j-- {
				cands[j], cands[j-1] = cands[j-1], cands[j]
			}
		}

		extended := false
		for _, c := range cands {
			lens[c.idx] = c.l + 1
			if !KraftOverflow(lens) {
				extended = true
				break
			}
			lens[c.idx] = c.l
		}
		if !extended {
			c := cands[0]
			if c.l+1 < maxBits {
				lens[c.idx] = c.l + 1
			} else {
				lens[c.idx] = maxBits
			}
		}
	}
	return lens, nil
}

type freqNode struct {
	freq int
	id   int
}

type freqHeap []freqNode

func (h freqHeap) Len() int { return len(h) }
func (h freqHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].id < h[j].id
}
func (h freqHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *freqHeap) Push(x any)        { *h = append(*h, x.(freqNode)) }
func (h *freqHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// LengthsFromFreq builds a length-limited Huffman code-length vector from
// symbol frequencies via the standard merge-two-smallest construction,
// capping every length at maxBits and repairing the result with
// FixLengthsKraft if capping broke completeness.
func LengthsFromFreq(freqs []int, maxBits int) []int {
	n := len(freqs)
	lens := make([]int, n)

	var present []freqNode
	for i, f := range freqs {
		if f > 0 {
			present = append(present, freqNode{f, i})
		}
	}
	if len(present) == 0 {
		return lens
	}
	if len(present) == 1 {
		lens[present[0].id] = 1
		return lens
	}

	h := &freqHeap{}
	heap.Init(h)
	for _, p := range present {
		heap.Push(h, p)
	}

	parent := make(map[int]int)
	next := n
	for h.Len() >= 2 {
		a := heap.Pop(h).(freqNode)
		b := heap.Pop(h).(freqNode)
		nid := next
		next++
		parent[a.id] = nid
		parent[b.id] = nid
		heap.Push(h, freqNode{a.freq + b.freq, nid})
	}

	for _, p := range present {
		depth := 0
		cur := p.id
		for {
			par, ok := parent[cur]
			if !ok {
				break
			}
			depth++
			cur = par
		}
		lens[p.id] = depth
	}

	for i, l := range lens {
		if l > maxBits {
			lens[i] = maxBits
		}
	}

	fixed, err := FixLengthsKraft(lens, maxBits)
	if err != nil {
		// Capping at maxBits shortens codes and so can only grow the Kraft
		// sum; FixLengthsKraft can bring it back to at most 1 unless more
		// than 2^maxBits symbols are used, so a failure here means
		// freqs/maxBits were themselves infeasible.
		return lens
	}
	return fixed
}
