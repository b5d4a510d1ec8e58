// Command deflopt re-encodes a DEFLATE stream to shrink its Python
// bytes-literal embedding cost, and round-trips streams through a
// human-readable text form for inspection.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/tstromberg/deflopt/anneal"
	"github.com/tstromberg/deflopt/embed"
	"github.com/tstromberg/deflopt/textdump"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: deflopt <dump|load|optimize> [flags] <file>")
	}

	switch args[0] {
	case "dump":
		return runDump(args[1:])
	case "load":
		return runLoad(args[1:])
	case "optimize":
		return runOptimize(args[1:])
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func runDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	out := fs.String("o", "", "output path (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: deflopt dump [-o out.txt] <stream.bin>")
	}

	stream, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	text, err := textdump.Dump(stream)
	if err != nil {
		return err
	}
	return writeOutput(*out, []byte(text))
}

func runLoad(args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	out := fs.String("o", "", "output path (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: deflopt load [-o out.bin] <stream.txt>")
	}

	text, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	stream, err := textdump.Load(string(text))
	if err != nil {
		return err
	}
	return writeOutput(*out, stream)
}

func runOptimize(args []string) error {
	fs := flag.NewFlagSet("optimize", flag.ExitOnError)
	out := fs.String("o", "", "output path (default: stdout)")
	numIteration := fs.Int("num-iteration", 3000, "perturbation attempts per block")
	numPerturbation := fs.Int("num-perturbation", 3, "swaps composed per attempt")
	toleranceBit := fs.Int("tolerance-bit", 16, "estimate tolerance window, in bits")
	terminateThreshold := fs.Int("terminate-threshold", 0, "stop early once best score reaches this value")
	seed := fs.Uint64("seed", 1, "RNG seed")
	verbose := fs.Bool("verbose", false, "log per-block progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: deflopt optimize [flags] <stream.bin>")
	}

	stream, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	params := anneal.Params{
		NumIteration:       *numIteration,
		NumPerturbation:    *numPerturbation,
		ToleranceBit:       *toleranceBit,
		TerminateThreshold: *terminateThreshold,
	}
	rng := rand.New(rand.NewPCG(*seed, *seed))

	before := embed.Len(stream)
	if *verbose {
		log.Printf("input: %d bytes, embed cost %d", len(stream), before)
	}

	optimized, err := anneal.OptimizeStream(stream, embed.Len, params, rng)
	if err != nil {
		return err
	}

	if *verbose {
		after := embed.Len(optimized)
		log.Printf("output: %d bytes, embed cost %d (saved %d)", len(optimized), after, before-after)
	}

	return writeOutput(*out, optimized)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
