// Package clrle packs RFC1951 code-length alphabet streams using the
// symbol-16/17/18 run-length scheme, choosing the bit-optimal encoding for
// a given set of code-length alphabet code lengths via dynamic programming.
package clrle

import (
	"errors"
	"fmt"
)

// Symbol is one emitted code-length alphabet symbol, together with any
// extra bits it carries (a repeat count).
type Symbol struct {
	Sym       int
	ExtraVal  int
	ExtraBits int
}

// ErrInfeasible is returned when no encoding of a run is possible under the
// given code-length alphabet costs (some required symbol has a zero code
// length, i.e. is unusable).
var ErrInfeasible = errors.New("clrle: no feasible encoding under the given code-length costs")

const (
	maxRun   = 300 // DP table size: optimalParse handles runs of up to maxRun-1 equal code lengths (one symbol 18 covers at most 138)
	inf      = int64(1) << 60
	infCheck = int64(1) << 30
)

// lengthRLE collapses vec into (value, runLength) pairs of consecutive
// equal entries.
func lengthRLE(vec []int) []struct{ value, count int } {
	if len(vec) == 0 {
		return nil
	}
	var out []struct{ value, count int }
	cur, run := vec[0], 1
	for _, x := range vec[1:] {
		if x == cur {
			run++
			continue
		}
		out = append(out, struct{ value, count int }{cur, run})
		cur, run = x, 1
	}
	out = append(out, struct{ value, count int }{cur, run})
	return out
}

// Encode finds, for each run of equal values in litlenLengths++distLengths,
// the cheapest sequence of code-length alphabet symbols under clLengths
// (the costs, in bits, of the code-length alphabet's own Huffman code),
// and concatenates them into the full header symbol stream.
func Encode(litlenLengths, distLengths, clLengths []int) ([]Symbol, error) {
	concat := make([]int, 0, len(litlenLengths)+len(distLengths))
	concat = append(concat, litlenLengths...)
	concat = append(concat, distLengths...)

	var out []Symbol
	for _, run := range lengthRLE(concat) {
		syms, err := optimalParse(run.value, run.count, clLengths)
		if err != nil {
			return nil, err
		}
		out = append(out, syms...)
	}
	return out, nil
}

// optimalParse returns the cheapest symbol sequence encoding count
// consecutive occurrences of value, under clLengths.
func optimalParse(value, count int, clLengths []int) ([]Symbol, error) {
	if count == 0 {
		return nil, nil
	}
	if value != 0 {
		dp, prev := nonzeroTable(clLengths[value], clLengths[16])
		if dp[count] >= infCheck {
			return nil, fmt.Errorf("clrle: value=%d count=%d: %w", value, count, ErrInfeasible)
		}
		return reconstructNonzero(value, count, prev), nil
	}
	dp, prev := zeroTable(clLengths[0], clLengths[16], clLengths[17], clLengths[18])
	if dp[count] >= infCheck {
		return nil, fmt.Errorf("clrle: value=0 count=%d: %w", count, ErrInfeasible)
	}
	return reconstructZero(count, prev), nil
}

func reconstructNonzero(value, count int, prev []int) []Symbol {
	var tmp []Symbol
	for i := count; i > 0; {
		choice := prev[i]
		if choice == 1 {
			tmp = append(tmp, Symbol{Sym: value})
			i--
			continue
		}
		run := choice
		tmp = append(tmp, Symbol{Sym: 16, ExtraVal: run - 3, ExtraBits: 2})
		i -= run
	}
	reverse(tmp)
	return tmp
}

func reconstructZero(count int, prev []int) []Symbol {
	var tmp []Symbol
	for i := count; i > 0; {
		choice := prev[i]
		switch {
		case choice == 1:
			tmp = append(tmp, Symbol{Sym: 0})
			i--
		case choice > 0:
			run := choice
			if run <= 10 {
				tmp = append(tmp, Symbol{Sym: 17, ExtraVal: run - 3, ExtraBits: 3})
			} else {
				tmp = append(tmp, Symbol{Sym: 18, ExtraVal: run - 11, ExtraBits: 7})
			}
			i -= run
		default:
			run := -choice
			tmp = append(tmp, Symbol{Sym: 16, ExtraVal: run - 3, ExtraBits: 2})
			i -= run
		}
	}
	reverse(tmp)
	return tmp
}

func reverse(s []Symbol) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
