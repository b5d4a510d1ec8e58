package clrle

import (
	"math/rand/v2"
	"testing"
)

// decodeSymbols expands a code-length alphabet symbol stream back into the
// raw length sequence it represents, mirroring the header-parsing logic in
// package deflate (duplicated here to keep this package's tests
// independent of deflate).
func decodeSymbols(syms []Symbol) []int {
	var out []int
	prev := -1
	for _, s := range syms {
		switch {
		case s.Sym <= 15:
			out = append(out, s.Sym)
			prev = s.Sym
		case s.Sym == 16:
			for i := 0; i < s.ExtraVal+3; i++ {
				out = append(out, prev)
			}
		case s.Sym == 17:
			for i := 0; i < s.ExtraVal+3; i++ {
				out = append(out, 0)
			}
			prev = 0
		case s.Sym == 18:
			for i := 0; i < s.ExtraVal+11; i++ {
				out = append(out, 0)
			}
			prev = 0
		}
	}
	return out
}

func totalBits(syms []Symbol, clLengths []int) int64 {
	var n int64
	for _, s := range syms {
		n += int64(clLengths[s.Sym]) + int64(s.ExtraBits)
	}
	return n
}

// uniformCLLengths gives every code-length alphabet symbol the same cost,
// a simple valid stand-in since clrle only consumes per-symbol costs, not
// an actual complete Huffman code.
func uniformCLLengths(n int) []int {
	l := make([]int, 19)
	for i := range l {
		l[i] = n
	}
	return l
}

func TestEncodeRoundTrips(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for range 50 {
		litlen := make([]int, 10+rng.IntN(280))
		for i := range litlen {
			if rng.IntN(4) == 0 {
				litlen[i] = 1 + rng.IntN(14)
			}
		}
		dist := make([]int, 1+rng.IntN(30))
		for i := range dist {
			if rng.IntN(4) == 0 {
				dist[i] = 1 + rng.IntN(14)
			}
		}
		cl := uniformCLLengths(5)

		syms, err := Encode(litlen, dist, cl)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got := decodeSymbols(syms)
		want := append(append([]int{}, litlen...), dist...)
		if len(got) != len(want) {
			t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("mismatch at %d: got %d, want %d", i, got[i], want[i])
			}
		}
	}
}

func TestEncodeNeverWorseThanGreedy(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 1))
	cl := uniformCLLengths(5)
	for range 50 {
		litlen := make([]int, 5+rng.IntN(280))
		for i := range litlen {
			if rng.IntN(3) == 0 {
				litlen[i] = 1 + rng.IntN(14)
			}
		}
		dist := make([]int, 1+rng.IntN(30))

		syms, err := Encode(litlen, dist, cl)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		greedy := Greedy(litlen, dist)

		optCost := totalBits(syms, cl)
		greedyCost := totalBits(greedy, cl)
		if optCost > greedyCost {
			t.Fatalf("DP cost %d exceeds greedy cost %d", optCost, greedyCost)
		}
	}
}

func TestGreedyRoundTrips(t *testing.T) {
	litlen := []int{0, 0, 0, 0, 5, 5, 5, 5, 5, 5, 5, 5, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	dist := []int{3}
	syms := Greedy(litlen, dist)
	got := decodeSymbols(syms)
	want := append(append([]int{}, litlen...), dist...)
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mismatch at %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestEncodeInfeasibleWhenSymbolUnusable(t *testing.T) {
	cl := uniformCLLengths(5)
	cl[7] = 0 // litlen value 7 has no assigned code length

	_, err := Encode([]int{7, 7, 7}, []int{1}, cl)
	if err == nil {
		t.Fatal("expected an error when the run's own value has no code length")
	}
}

func TestOptimalChoosesPrevRunOverLiterals(t *testing.T) {
	// Six repeats of a nonzero value: one literal plus a PREV_RUN of five
	// (5 + (5+2) = 12 bits) beats six literals (6*5=30 bits) under a
	// uniform cost of 5 bits/symbol.
	cl := uniformCLLengths(5)
	syms, err := optimalParse(3, 6, cl)
	if err != nil {
		t.Fatalf("optimalParse: %v", err)
	}
	if totalBits(syms, cl) >= 6*5 {
		t.Fatalf("expected PREV_RUN to beat 6 literals, got %d bits", totalBits(syms, cl))
	}
}
