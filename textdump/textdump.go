// Package textdump renders a DEFLATE stream's blocks as human-readable
// text — one line-oriented record per field — and parses that text back
// into the exact same bytes. It exists so a stream can be inspected,
// diffed, and hand-edited without a bit-level debugger.
package textdump

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/tstromberg/deflopt/bitio"
	"github.com/tstromberg/deflopt/deflate"
)

// Dump parses stream and renders every block as text.
func Dump(stream []byte) (string, error) {
	r := bitio.NewReader(stream)
	var sb strings.Builder
	for {
		blk, err := deflate.Parse(r)
		if err != nil {
			return "", err
		}
		if err := dumpBlock(&sb, blk); err != nil {
			return "", err
		}
		if blk.Final() {
			break
		}
	}
	return sb.String(), nil
}

func dumpBlock(sb *strings.Builder, blk deflate.Block) error {
	bfinal := 0
	if blk.Final() {
		bfinal = 1
	}
	switch b := blk.(type) {
	case *deflate.StoredBlock:
		fmt.Fprintf(sb, "%d %d\n", bfinal, 0b00)
		fmt.Fprintf(sb, "%d\n", len(b.Data))
		fmt.Fprintln(sb, joinBytes(b.Data))
	case *deflate.FixedBlock:
		fmt.Fprintf(sb, "%d %d\n", bfinal, 0b01)
		dumpTokens(sb, b.Tokens)
	case *deflate.DynamicBlock:
		fmt.Fprintf(sb, "%d %d\n", bfinal, 0b10)
		fmt.Fprintln(sb, joinInts(b.Header.CLLengths))
		litlenLengths := b.Header.LitLen.Lengths()
		distLengths := b.Header.Dist.Lengths()
		fmt.Fprintf(sb, "%d\n", len(litlenLengths))
		fmt.Fprintln(sb, joinInts(litlenLengths))
		fmt.Fprintf(sb, "%d\n", len(distLengths))
		fmt.Fprintln(sb, joinInts(distLengths))
		dumpTokens(sb, b.Tokens)
	default:
		return fmt.Errorf("textdump: unknown block type %T", blk)
	}
	return nil
}

func dumpTokens(sb *strings.Builder, tokens []deflate.Token) {
	fmt.Fprintf(sb, "%d\n", len(tokens))
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		switch v := t.(type) {
		case deflate.Literal:
			parts = append(parts, fmt.Sprintf("L %d", v.Lit))
		case deflate.Match:
			parts = append(parts, fmt.Sprintf("M %d %d", v.Length, v.Distance))
		}
	}
	fmt.Fprintln(sb, strings.Join(parts, " "))
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func joinBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, " ")
}

// Load parses text (as produced by Dump) back into the original stream
// bytes.
func Load(text string) ([]byte, error) {
	sc := bufio.NewScanner(text2Lines(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	w := bitio.NewWriter()
	for {
		blk, bfinal, err := loadBlock(sc)
		if err != nil {
			return nil, err
		}
		if err := blk.Dump(w); err != nil {
			return nil, err
		}
		if bfinal {
			break
		}
	}
	return w.Bytes(), nil
}

func text2Lines(text string) *strings.Reader {
	return strings.NewReader(text)
}

func loadBlock(sc *bufio.Scanner) (deflate.Block, bool, error) {
	header, err := nextLine(sc)
	if err != nil {
		return nil, false, err
	}
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, false, fmt.Errorf("textdump: malformed block header line %q", header)
	}
	bfinal, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, false, fmt.Errorf("textdump: bad bfinal %q: %w", fields[0], err)
	}
	btype, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, false, fmt.Errorf("textdump: bad btype %q: %w", fields[1], err)
	}

	final := bfinal != 0
	switch btype {
	case 0b00:
		blk, err := loadStored(sc, final)
		return blk, final, err
	case 0b01:
		blk, err := loadFixed(sc, final)
		return blk, final, err
	case 0b10:
		blk, err := loadDynamic(sc, final)
		return blk, final, err
	default:
		return nil, false, fmt.Errorf("textdump: unknown block type %d", btype)
	}
}

func loadStored(sc *bufio.Scanner, bfinal bool) (*deflate.StoredBlock, error) {
	n, err := nextInt(sc)
	if err != nil {
		return nil, err
	}
	line, err := nextLine(sc)
	if err != nil {
		return nil, err
	}
	vals, err := parseInts(line)
	if err != nil {
		return nil, err
	}
	if len(vals) != n {
		return nil, fmt.Errorf("textdump: stored block length mismatch: header says %d, got %d", n, len(vals))
	}
	data := make([]byte, n)
	for i, v := range vals {
		data[i] = byte(v)
	}
	return &deflate.StoredBlock{BFinal: bfinal, Data: data}, nil
}

func loadFixed(sc *bufio.Scanner, bfinal bool) (*deflate.FixedBlock, error) {
	toks, err := loadTokenLines(sc)
	if err != nil {
		return nil, err
	}
	return &deflate.FixedBlock{BFinal: bfinal, Tokens: toks}, nil
}

func loadDynamic(sc *bufio.Scanner, bfinal bool) (*deflate.DynamicBlock, error) {
	clLine, err := nextLine(sc)
	if err != nil {
		return nil, err
	}
	clLengths, err := parseInts(clLine)
	if err != nil {
		return nil, err
	}
	if len(clLengths) != 19 {
		return nil, fmt.Errorf("textdump: code-length alphabet line has %d entries, want 19", len(clLengths))
	}

	numLitLen, err := nextInt(sc)
	if err != nil {
		return nil, err
	}
	litlenLine, err := nextLine(sc)
	if err != nil {
		return nil, err
	}
	litlenLengths, err := parseInts(litlenLine)
	if err != nil {
		return nil, err
	}
	if len(litlenLengths) != numLitLen {
		return nil, fmt.Errorf("textdump: litlen lengths count mismatch: header says %d, got %d", numLitLen, len(litlenLengths))
	}

	numDist, err := nextInt(sc)
	if err != nil {
		return nil, err
	}
	distLine, err := nextLine(sc)
	if err != nil {
		return nil, err
	}
	distLengths, err := parseInts(distLine)
	if err != nil {
		return nil, err
	}
	if len(distLengths) != numDist {
		return nil, fmt.Errorf("textdump: dist lengths count mismatch: header says %d, got %d", numDist, len(distLengths))
	}

	header, err := deflate.NewDynHeaderFromLengths(clLengths, litlenLengths, distLengths)
	if err != nil {
		return nil, err
	}

	toks, err := loadTokenLines(sc)
	if err != nil {
		return nil, err
	}
	return &deflate.DynamicBlock{BFinal: bfinal, Header: header, Tokens: toks}, nil
}

func loadTokenLines(sc *bufio.Scanner) ([]deflate.Token, error) {
	n, err := nextInt(sc)
	if err != nil {
		return nil, err
	}
	line, err := nextLine(sc)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	words := strings.Fields(line)
	toks := make([]deflate.Token, 0, n)
	i := 0
	for i < len(words) {
		switch words[i] {
		case "L":
			if i+1 >= len(words) {
				return nil, fmt.Errorf("textdump: malformed literal token")
			}
			lit, err := strconv.Atoi(words[i+1])
			if err != nil {
				return nil, fmt.Errorf("textdump: bad literal value %q: %w", words[i+1], err)
			}
			toks = append(toks, deflate.Literal{Lit: lit})
			i += 2
		case "M":
			if i+2 >= len(words) {
				return nil, fmt.Errorf("textdump: malformed match token")
			}
			length, err := strconv.Atoi(words[i+1])
			if err != nil {
				return nil, fmt.Errorf("textdump: bad match length %q: %w", words[i+1], err)
			}
			distance, err := strconv.Atoi(words[i+2])
			if err != nil {
				return nil, fmt.Errorf("textdump: bad match distance %q: %w", words[i+2], err)
			}
			toks = append(toks, deflate.Match{Length: length, Distance: distance})
			i += 3
		default:
			return nil, fmt.Errorf("textdump: unknown token tag %q", words[i])
		}
	}
	if len(toks) != n {
		return nil, fmt.Errorf("textdump: token count mismatch: header says %d, got %d", n, len(toks))
	}
	return toks, nil
}

func nextLine(sc *bufio.Scanner) (string, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("textdump: unexpected end of input")
	}
	return sc.Text(), nil
}

func nextInt(sc *bufio.Scanner) (int, error) {
	line, err := nextLine(sc)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("textdump: expected an integer, got %q: %w", line, err)
	}
	return n, nil
}

func parseInts(line string) ([]int, error) {
	fields := strings.Fields(line)
	vals := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("textdump: bad integer %q: %w", f, err)
		}
		vals[i] = v
	}
	return vals, nil
}
