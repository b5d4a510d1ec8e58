package textdump

import (
	"bytes"
	"testing"

	"github.com/tstromberg/deflopt/bitio"
	"github.com/tstromberg/deflopt/deflate"
)

func fixedLitLenLengths() []int {
	l := make([]int, 288)
	for i := range l {
		switch {
		case i <= 143:
			l[i] = 8
		case i <= 255:
			l[i] = 9
		case i <= 279:
			l[i] = 7
		default:
			l[i] = 8
		}
	}
	return l
}

func fixedDistLengths() []int {
	l := make([]int, 32)
	for i := range l {
		l[i] = 5
	}
	return l
}

func buildStream(t *testing.T) []byte {
	t.Helper()
	w := bitio.NewWriter()

	stored := &deflate.StoredBlock{BFinal: false, Data: []byte("ABC")}
	if err := stored.Dump(w); err != nil {
		t.Fatalf("stored.Dump: %v", err)
	}

	fixed := &deflate.FixedBlock{BFinal: false, Tokens: []deflate.Token{
		deflate.Literal{Lit: 'X'},
		deflate.Literal{Lit: 'Y'},
		deflate.Match{Length: 5, Distance: 2},
	}}
	if err := fixed.Dump(w); err != nil {
		t.Fatalf("fixed.Dump: %v", err)
	}

	initialCL := make([]int, 19)
	for i := range initialCL {
		initialCL[i] = 4
	}
	header, err := deflate.BuildHeader(fixedLitLenLengths(), fixedDistLengths(), initialCL)
	if err != nil {
		t.Fatalf("BuildHeader: %v", err)
	}
	dyn := &deflate.DynamicBlock{BFinal: true, Header: header, Tokens: []deflate.Token{
		deflate.Literal{Lit: 'A'},
		deflate.Literal{Lit: 'B'},
		deflate.Literal{Lit: 'A'},
		deflate.Match{Length: 4, Distance: 2},
	}}
	if err := dyn.Dump(w); err != nil {
		t.Fatalf("dyn.Dump: %v", err)
	}

	return w.Bytes()
}

func TestDumpLoadRoundTrip(t *testing.T) {
	stream := buildStream(t)

	text, err := Dump(stream)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if len(text) == 0 {
		t.Fatal("Dump produced empty text")
	}

	back, err := Load(text)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(back, stream) {
		t.Fatalf("round trip mismatch:\norig: % x\nback: % x", stream, back)
	}
}

func TestDumpLoadStoredOnly(t *testing.T) {
	w := bitio.NewWriter()
	stored := &deflate.StoredBlock{BFinal: true, Data: []byte{0x41, 0x42, 0x43}}
	if err := stored.Dump(w); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	stream := w.Bytes()

	text, err := Dump(stream)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	back, err := Load(text)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(back, stream) {
		t.Fatalf("round trip mismatch:\norig: % x\nback: % x", stream, back)
	}
}

func TestLoadRejectsMalformedHeader(t *testing.T) {
	if _, err := Load("not a valid header\n"); err == nil {
		t.Fatal("Load accepted a malformed block header line")
	}
}

func TestLoadRejectsTokenCountMismatch(t *testing.T) {
	text := "1 1\n3\nL 65 L 66\n"
	if _, err := Load(text); err == nil {
		t.Fatal("Load accepted a token count that didn't match the token line")
	}
}
