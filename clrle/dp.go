package clrle

import "sync"

// The DP tables depend only on a handful of bit-cost parameters (code
// lengths, themselves capped by RFC1951 at 7 bits for the code-length
// alphabet), so distinct (cost...) combinations recur constantly across an
// optimizer run. Caching them process-wide turns repeated rescoring from
// an O(maxRun) recomputation into a map lookup.
var (
	nonzeroMu    sync.Mutex
	nonzeroCache = map[[2]int]dpResult{}

	zeroMu    sync.Mutex
	zeroCache = map[[4]int]dpResult{}
)

type dpResult struct {
	dp   []int64
	prev []int
}

// monotoneDeque holds indices into dp, kept so that dp[deque[0]] is always
// the minimum of the currently-valid window; pushMonotone and the
// expiry loop in each DP below implement a classic sliding-window-minimum.
type monotoneDeque struct {
	idx []int
}

func (d *monotoneDeque) pushMonotone(i int, val int64, dp []int64) {
	for len(d.idx) > 0 && dp[d.idx[len(d.idx)-1]] >= val {
		if dp[d.idx[len(d.idx)-1]] > val {
			d.idx = d.idx[:len(d.idx)-1]
			continue
		}
		break
	}
	d.idx = append(d.idx, i)
}

func (d *monotoneDeque) expireBelow(minIdx int) {
	for len(d.idx) > 0 && d.idx[0] < minIdx {
		d.idx = d.idx[1:]
	}
}

func (d *monotoneDeque) front() (int, bool) {
	if len(d.idx) == 0 {
		return 0, false
	}
	return d.idx[0], true
}

// nonzeroTable returns the cached (or freshly computed) DP solution for
// encoding a run of a single nonzero code length, where singleSymbolCost is
// the code-length alphabet's own bit cost for that value and code16Cost is
// its cost for symbol 16 (PREV_RUN).
func nonzeroTable(singleSymbolCost, code16Cost int) ([]int64, []int) {
	key := [2]int{singleSymbolCost, code16Cost}

	nonzeroMu.Lock()
	if r, ok := nonzeroCache[key]; ok {
		nonzeroMu.Unlock()
		return r.dp, r.prev
	}
	nonzeroMu.Unlock()

	r := computeNonzeroSymbolCost(singleSymbolCost, code16Cost)

	nonzeroMu.Lock()
	nonzeroCache[key] = r
	nonzeroMu.Unlock()

	return r.dp, r.prev
}

// zeroTable is nonzeroTable's counterpart for runs of code length 0, which
// additionally may use ZERO_RUN symbols 17 (3..10 zeros) and 18 (11..138
// zeros).
func zeroTable(singleSymbolCost, code16Cost, code17Cost, code18Cost int) ([]int64, []int) {
	key := [4]int{singleSymbolCost, code16Cost, code17Cost, code18Cost}

	zeroMu.Lock()
	if r, ok := zeroCache[key]; ok {
		zeroMu.Unlock()
		return r.dp, r.prev
	}
	zeroMu.Unlock()

	r := computeZeroSymbolCost(singleSymbolCost, code16Cost, code17Cost, code18Cost)

	zeroMu.Lock()
	zeroCache[key] = r
	zeroMu.Unlock()

	return r.dp, r.prev
}

// costOrInf treats a zero bit-cost (meaning the symbol is entirely unused
// by the code-length alphabet's code) as infinitely expensive, so the DP
// below never chooses it.
func costOrInf(cost int) int64 {
	if cost == 0 {
		return inf
	}
	return int64(cost)
}

// computeNonzeroSymbolCost builds the DP over run lengths 0..maxRun-1 for a
// repeated nonzero code length: at each length, either emit one more
// literal symbol or fold the last 3..6 repeats into one PREV_RUN (symbol
// 16) referencing whatever code length preceded this run.
//
// prev[j] encodes the winning transition into dp[j]: 1 means "one literal
// symbol", and any other positive value r means "a PREV_RUN covering the
// last r positions".
func computeNonzeroSymbolCost(singleSymbolCost, code16Cost int) dpResult {
	singleCost := costOrInf(singleSymbolCost)
	add16 := costOrInf(code16Cost) + 2

	dp := make([]int64, maxRun)
	prev := make([]int, maxRun)
	for i := range dp {
		dp[i] = inf
		prev[i] = int(inf)
	}
	dp[0] = 0

	var deq16 monotoneDeque

	for j := 1; j < maxRun; j++ {
		best := inf
		choice := int(inf)

		if c := dp[j-1] + singleCost; c < best {
			best, choice = c, 1
		}

		if add16 < inf {
			if kNew := j - 3; kNew >= 1 {
				deq16.pushMonotone(kNew, dp[kNew], dp)
			}
			deq16.expireBelow(max(1, j-6))
			if k, ok := deq16.front(); ok {
				if c := dp[k] + add16; c < best {
					best, choice = c, j-k
				}
			}
		}

		dp[j] = best
		prev[j] = choice
	}

	return dpResult{dp: dp, prev: prev}
}

// computeZeroSymbolCost is computeNonzeroSymbolCost's counterpart for runs
// of code length 0, adding ZERO_RUN options via symbols 17 (3..10 zeros)
// and 18 (11..138 zeros).
//
// prev[j] encodes the winning transition: 1 means "one literal 0 symbol",
// a positive r>1 means "a ZERO_RUN (17 or 18 depending on length) covering
// the last r positions", and a negative value -r means "a PREV_RUN (16)
// covering the last r positions".
func computeZeroSymbolCost(singleSymbolCost, code16Cost, code17Cost, code18Cost int) dpResult {
	singleCost := costOrInf(singleSymbolCost)
	add16 := costOrInf(code16Cost) + 2
	add17 := costOrInf(code17Cost) + 3
	add18 := costOrInf(code18Cost) + 7

	dp := make([]int64, maxRun)
	prev := make([]int, maxRun)
	for i := range dp {
		dp[i] = inf
		prev[i] = int(inf)
	}
	dp[0] = 0

	var deq16, deq17, deq18 monotoneDeque

	for j := 1; j < maxRun; j++ {
		best := inf
		choice := int(inf)

		if c := dp[j-1] + singleCost; c < best {
			best, choice = c, 1
		}

		if add17 < inf {
			if kNew := j - 3; kNew >= 0 {
				deq17.pushMonotone(kNew, dp[kNew], dp)
			}
			deq17.expireBelow(max(0, j-10))
			if k, ok := deq17.front(); ok {
				if c := dp[k] + add17; c < best {
					best, choice = c, j-k
				}
			}
		}

		if add18 < inf {
			if kNew := j - 11; kNew >= 0 {
				deq18.pushMonotone(kNew, dp[kNew], dp)
			}
			deq18.expireBelow(max(0, j-138))
			if k, ok := deq18.front(); ok {
				if c := dp[k] + add18; c < best {
					best, choice = c, j-k
				}
			}
		}

		if add16 < inf {
			if kNew := j - 3; kNew >= 1 {
				deq16.pushMonotone(kNew, dp[kNew], dp)
			}
			deq16.expireBelow(max(1, j-6))
			if k, ok := deq16.front(); ok {
				if c := dp[k] + add16; c < best {
					best, choice = c, -(j - k)
				}
			}
		}

		dp[j] = best
		prev[j] = choice
	}

	return dpResult{dp: dp, prev: prev}
}
