package deflate

import (
	"fmt"

	"github.com/tstromberg/deflopt/bitio"
)

// LenBases and LenExtra give, for length code index i (code 257+i), the
// smallest length that code represents and how many extra bits follow it,
// per RFC1951 §3.2.5. Code 285 is the sole exception, representing the
// fixed length 258 with no extra bits.
var (
	LenBases = []int{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	LenExtra = []int{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}

	// DistBases and DistExtra give the same for distance codes, indexed
	// directly by the 5-bit distance code.
	DistBases = []int{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
	}
	DistExtra = []int{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
)

// CLOrder is the fixed transmission order of code-length alphabet symbols
// in a dynamic block header, per RFC1951 §3.2.7.
var CLOrder = []int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// lenCodeToLength reads any extra bits for litlen code `code` (257..285)
// from r and returns the decoded match length.
func lenCodeToLength(r *bitio.Reader, code int) (int, error) {
	if code == 285 {
		return 258, nil
	}
	i := code - 257
	if i < 0 || i >= len(LenBases) {
		return 0, fmt.Errorf("deflate: length code %d out of range", code)
	}
	base := LenBases[i]
	extra := 0
	if n := LenExtra[i]; n > 0 {
		v, err := r.ReadBits(n)
		if err != nil {
			return 0, err
		}
		extra = int(v)
	}
	return base + extra, nil
}

// distCodeToDistance reads any extra bits for distance code `code` (0..29)
// from r and returns the decoded match distance.
func distCodeToDistance(r *bitio.Reader, code int) (int, error) {
	if code < 0 || code >= len(DistBases) {
		return 0, fmt.Errorf("deflate: distance code %d out of range", code)
	}
	base := DistBases[code]
	extra := 0
	if n := DistExtra[code]; n > 0 {
		v, err := r.ReadBits(n)
		if err != nil {
			return 0, err
		}
		extra = int(v)
	}
	return base + extra, nil
}

// LengthToCodeAndExtra maps a match length in [3, 258] to its litlen code,
// extra-bits value, and extra-bits width.
func LengthToCodeAndExtra(length int) (code, extraVal, extraBits int, err error) {
	if length < 3 || length > 258 {
		return 0, 0, 0, fmt.Errorf("deflate: length %d out of range [3, 258]", length)
	}
	if length == 258 {
		return 285, 0, 0, nil
	}
	for i := 0; i < len(LenBases)-1; i++ {
		base, next := LenBases[i], LenBases[i+1]
		if base <= length && length < next {
			return 257 + i, length - base, LenExtra[i], nil
		}
	}
	return 285, 0, 0, nil
}

// DistanceToCodeAndExtra maps a match distance in [1, 32768] to its
// distance code, extra-bits value, and extra-bits width.
func DistanceToCodeAndExtra(distance int) (code, extraVal, extraBits int, err error) {
	if distance < 1 || distance > 32768 {
		return 0, 0, 0, fmt.Errorf("deflate: distance %d out of range [1, 32768]", distance)
	}
	for i, base := range DistBases {
		next := 1 << 30
		if i+1 < len(DistBases) {
			next = DistBases[i+1]
		}
		if base <= distance && distance < next {
			return i, distance - base, DistExtra[i], nil
		}
	}
	return 0, 0, 0, fmt.Errorf("deflate: distance %d did not map to any code", distance)
}

// fixedLitLenLengths returns the RFC1951 §3.2.6 fixed literal/length code
// lengths.
func fixedLitLenLengths() []int {
	l := make([]int, 288)
	for s := 0; s < 144; s++ {
		l[s] = 8
	}
	for s := 144; s < 256; s++ {
		l[s] = 9
	}
	for s := 256; s < 280; s++ {
		l[s] = 7
	}
	for s := 280; s < 288; s++ {
		l[s] = 8
	}
	return l
}

// fixedDistLengths returns the RFC1951 §3.2.6 fixed distance code lengths.
func fixedDistLengths() []int {
	l := make([]int, 32)
	for i := range l {
		l[i] = 5
	}
	return l
}

// HCLENFromLengths computes the HCLEN field (minus its implicit +4 bias)
// for a code-length alphabet length vector, per RFC1951 §3.2.7: the
// transmitted prefix of CLOrder stops right after its last nonzero entry,
// but never before covering the mandatory first 4.
func HCLENFromLengths(clLengths []int) int {
	n := 19
	for n > 4 && clLengths[CLOrder[n-1]] == 0 {
		n--
	}
	return n - 4
}
