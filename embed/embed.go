// Package embed computes the length of the shortest Python bytes literal
// that round-trips a given byte string, and exposes that length as a
// scoring function the optimizer can minimize. The wrapper the payload
// ultimately lands in is a Python source string of the form
// `exec(zlib.decompress(bytes(<literal>,'L1'),wbits))`, so the true
// objective is not the compressed size but the size of <literal> once
// every backslash, quote, and control byte has been escaped.
package embed

import (
	"bytes"
	"fmt"
)

// quoteStyles lists the literal delimiters considered, shortest estimate
// wins. Triple-quoted forms are only viable when the payload doesn't
// already contain that triple sequence.
var quoteStyles = []string{"'", "\"", "'''", "\"\"\""}

// shouldEscape lists two-byte sequences that, left bare inside an escaped
// literal, would be misread as a different escape (e.g. a literal
// backslash immediately followed by the digit '0' looks like the start
// of `\0` followed by a stray digit). Each occurrence gets its own
// leading backslash doubled up, same as the reference minifier.
var shouldEscapes = [][]byte{
	[]byte(`\"`), []byte(`\'`), []byte(`\0`), []byte(`\1`), []byte(`\2`), []byte(`\3`),
	[]byte(`\4`), []byte(`\5`), []byte(`\6`), []byte(`\7`),
	[]byte(`\N`), []byte(`\U`), []byte(`\a`), []byte(`\b`), []byte(`\f`), []byte(`\n`),
	[]byte(`\r`), []byte(`\t`), []byte(`\u`), []byte(`\v`), []byte(`\x`),
}

// Embed returns the shortest Python bytes-literal spelling of b, including
// its delimiters but not the leading `b` prefix.
func Embed(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return shortestLiteral(b)
}

// Len is a convenience ScoreFunc-shaped wrapper: the number of bytes
// Embed would need to spell b.
func Len(b []byte) int {
	return len(Embed(b))
}

// PythonLiteralLength is Len under the name the scoring function is known
// by where the caller cares about the wrapping Python literal rather than
// the generic "embed" framing — the quantity is identical.
func PythonLiteralLength(b []byte) int {
	return Len(b)
}

func shortestLiteral(orig []byte) []byte {
	esc := escapeBackslashRuns(orig)
	for _, s := range shouldEscapes {
		esc = replaceEscaped(esc, s)
	}

	// \0 followed by a digit needs extra escaping so it isn't read as an
	// octal continuation.
	for i := 0; i < 8; i++ {
		digit := []byte(fmt.Sprintf("%d", i))
		esc = bytes.ReplaceAll(esc, append([]byte("\\\x00"), digit...), append([]byte("\\\\\\000"), digit...))
		esc = bytes.ReplaceAll(esc, append([]byte("\x00"), digit...), append([]byte("\\000"), digit...))
	}
	esc = bytes.ReplaceAll(esc, []byte("\\\x00"), []byte("\\\\\\0"))
	esc = bytes.ReplaceAll(esc, []byte("\x00"), []byte("\\0"))

	if bytes.HasSuffix(esc, []byte(`\`)) {
		esc = append(esc, '\\')
	}

	var candidates [][]byte
	for _, sep := range quoteStyles {
		if len(sep) == 1 {
			t := bytes.ReplaceAll(esc, []byte("\\\n"), []byte("\\\\\\n"))
			t = bytes.ReplaceAll(t, []byte("\n"), []byte("\\n"))
			t = bytes.ReplaceAll(t, []byte("\\\r"), []byte("\\\\\\r"))
			t = bytes.ReplaceAll(t, []byte("\r"), []byte("\\r"))
			t = bytes.ReplaceAll(t, []byte(sep), append([]byte(`\`), sep...))
			candidates = append(candidates, wrap(sep, t))
		} else {
			if bytes.Contains(esc, []byte(sep)) {
				continue
			}
			t := bytes.ReplaceAll(esc, []byte("\\\n"), []byte("\\\\\n"))
			t = bytes.ReplaceAll(t, []byte("\\\r"), []byte("\\\\\r"))
			if bytes.HasSuffix(t, []byte(sep[:1])) {
				t = append(t[:len(t)-1], '\\', t[len(t)-1])
			}
			candidates = append(candidates, wrap(sep, t))
		}
	}

	// Raw forms can't escape anything, so they are only tried when the
	// payload has no trailing backslash and no NUL byte.
	if !bytes.HasSuffix(orig, []byte(`\`)) && bytes.IndexByte(orig, 0) < 0 {
		for _, sep := range quoteStyles {
			if len(sep) == 1 {
				if bytes.ContainsAny(orig, "\n\r") {
					continue
				}
				t := bytes.ReplaceAll(orig, []byte(sep), append([]byte(`\`), sep...))
				candidates = append(candidates, append([]byte("r"), wrap(sep, t)...))
			} else {
				if bytes.Contains(orig, []byte(sep)) {
					continue
				}
				candidates = append(candidates, append([]byte("r"), wrap(sep, orig)...))
			}
		}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) < len(best) {
			best = c
		}
	}
	return best
}

func wrap(sep string, body []byte) []byte {
	out := make([]byte, 0, len(sep)*2+len(body))
	out = append(out, sep...)
	out = append(out, body...)
	out = append(out, sep...)
	return out
}

// escapeBackslashRuns doubles every backslash but one in each maximal run
// of consecutive backslashes: a run of n backslashes becomes 2n-1 of them,
// matching the reference's `\+` substitution (each run ultimately picks
// up one more backslash from quote/control-byte escaping downstream).
func escapeBackslashRuns(b []byte) []byte {
	var out bytes.Buffer
	i := 0
	for i < len(b) {
		if b[i] != '\\' {
			out.WriteByte(b[i])
			i++
			continue
		}
		j := i
		for j < len(b) && b[j] == '\\' {
			j++
		}
		n := j - i
		for k := 0; k < 2*n-1; k++ {
			out.WriteByte('\\')
		}
		i = j
	}
	return out.Bytes()
}

// replaceEscaped applies the should-escape substitution for one sequence:
// an already-escaped occurrence (preceded by a backslash) gets two more
// backslashes; a bare occurrence gets one.
func replaceEscaped(b []byte, seq []byte) []byte {
	b = bytes.ReplaceAll(b, append([]byte(`\`), seq...), append([]byte(`\\\`), seq...))
	b = bytes.ReplaceAll(b, seq, append([]byte(`\`), seq...))
	return b
}
