// Command gofan is the minimal front-end of spec.md §6.3: with no
// arguments it evaluates a nullary Main; with arguments, it builds
// Main(argc) applied to each token decoded as a decimal NUM (a non-numeric
// token becomes NUM 0). It prints the pretty-printed normal form to stdout
// and a line of statistics to stderr.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vic/gofan/internal/buildgraph"
	"github.com/vic/gofan/internal/ffi"
	"github.com/vic/gofan/internal/link"
	"github.com/vic/gofan/internal/readback"
	"github.com/vic/gofan/internal/ruletable"
)

// mainFunID is the function id the builtin table binds "Main" to. A real
// front-end would resolve this from the id→name table; this CLI front-end
// always evaluates the one builtin demo program (spec.md §6.3).
const mainFunID = ruletable.FunMain

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var heapWords uint32
	var workers int
	var trace bool
	var readbackCap int

	cmd := &cobra.Command{
		Use:   "gofan [args...]",
		Short: "Run the interaction-net reduction runtime against the builtin program",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, heapWords, workers, trace, readbackCap)
		},
	}

	cmd.Flags().Uint32Var(&heapWords, "heap-words", 1<<20, "total heap capacity in 64-bit words")
	cmd.Flags().IntVar(&workers, "workers", 1, "worker pool size")
	cmd.Flags().BoolVar(&trace, "trace", false, "set the log level to debug")
	cmd.Flags().IntVar(&readbackCap, "readback-cap", 1<<16, "pretty-printer output buffer capacity in bytes (0 = unbounded)")

	return cmd
}

func run(cmd *cobra.Command, args []string, heapWords uint32, workers int, trace bool, readbackCap int) error {
	if trace {
		logrus.SetLevel(logrus.DebugLevel)
	}

	argc := len(args)
	nums := make([]uint64, argc)
	for i, a := range args {
		n, err := strconv.ParseUint(a, 10, 60)
		if err != nil {
			n = 0
		}
		nums[i] = n
	}

	b := buildgraph.New(1)
	rootLnk := buildgraph.BuildMainArgv(b, mainFunID, argc, nums)
	b.SetRoot(rootLnk)

	mem := b.Mem
	if uint32(len(mem)) < heapWords {
		grown := make([]link.Lnk, heapWords)
		copy(grown, mem)
		mem = grown
	} else if heapWords != 0 {
		return errors.Errorf("gofan: built graph (%d words) exceeds --heap-words (%d)", len(mem), heapWords)
	}

	table := ruletable.Builtin()

	start := time.Now()
	result := ffi.Normal(mem, table, workers)
	elapsed := time.Since(start)

	if result.Err != nil {
		return errors.Wrap(result.Err, "gofan: normalization failed")
	}

	text := readback.Sprint(result.Rt, 0, readbackCap)

	fmt.Fprintln(cmd.OutOrStdout(), text)

	logrus.WithFields(logrus.Fields{
		"cost":    result.Cost,
		"size":    result.Size,
		"workers": workers,
		"elapsed": elapsed,
	}).Info("gofan: normalization complete")

	return nil
}
