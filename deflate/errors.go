package deflate

import "errors"

// Parse errors raised against malformed input. These are not recoverable:
// the caller gets back a wrapped error identifying which sentinel fired and
// at what bit offset (see the individual Parse/load functions).
var (
	ErrReservedBlockType      = errors.New("deflate: reserved block type 0b11")
	ErrStoredLenMismatch      = errors.New("deflate: stored block LEN/NLEN mismatch")
	ErrInvalidCLSymbol        = errors.New("deflate: invalid code-length alphabet symbol")
	ErrMissingEOB             = errors.New("deflate: dynamic header assigns end-of-block (256) a zero code length")
	ErrCLSymbol16WithoutPrior = errors.New("deflate: code-length symbol 16 used with no previous length to repeat")
)
