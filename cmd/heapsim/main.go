// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command heapsim replays a trace of allocate/reallocate/free operations
// against a simulated boundary-tag heap and writes the resulting memory
// snapshot to output.txt.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TaseenHakim/heapsim/dump"
	"github.com/TaseenHakim/heapsim/heap"
	"github.com/TaseenHakim/heapsim/trace"
)

const outputFileName = "output.txt"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func newRootCmd() *cobra.Command {
	var (
		initialSize int
		maximumSize int
		verbose     bool
		showStats   bool
	)

	cmd := &cobra.Command{
		Use:   "heapsim <input-file> <free-collection> <placement-policy>",
		Short: "Replay a heap allocator trace and dump the resulting memory layout",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(runOptions{
				inputFile:   args[0],
				freeKind:    args[1],
				placeKind:   args[2],
				initialSize: initialSize,
				maximumSize: maximumSize,
				verbose:     verbose,
				showStats:   showStats,
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().IntVar(&initialSize, "initial-size", 0, "initial region size in bytes (default 4000)")
	cmd.Flags().IntVar(&maximumSize, "maximum-size", 0, "maximum region size in bytes (default 400000)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log every trace command as it is applied")
	cmd.Flags().BoolVar(&showStats, "stats", true, "print end-of-run allocator statistics to stderr")

	return cmd
}

type runOptions struct {
	inputFile   string
	freeKind    string
	placeKind   string
	initialSize int
	maximumSize int
	verbose     bool
	showStats   bool
}

// exitCode tags an error with the process exit code it should produce:
// non-zero on a missing file, bad arguments, or a fatal invariant
// violation.
type exitCode struct {
	code int
	err  error
}

func (e *exitCode) Error() string { return e.err.Error() }
func (e *exitCode) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	var ec *exitCode
	if errors.As(err, &ec) {
		return ec.code
	}
	return 1
}

func run(opts runOptions) error {
	log := logrus.New()
	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	fcKind, err := heap.ParseFreeCollectionKind(opts.freeKind)
	if err != nil {
		return &exitCode{code: 2, err: err}
	}
	ppKind, err := heap.ParsePlacementPolicyKind(opts.placeKind)
	if err != nil {
		return &exitCode{code: 2, err: err}
	}

	cfg := heap.DefaultConfig()
	cfg.FreeCollection = fcKind
	cfg.Placement = ppKind
	if opts.initialSize != 0 {
		cfg.InitialSize = opts.initialSize
	}
	if opts.maximumSize != 0 {
		cfg.MaximumSize = opts.maximumSize
	}

	alloc, err := heap.NewAllocator(cfg)
	if err != nil {
		return &exitCode{code: 2, err: err}
	}

	in, err := os.Open(opts.inputFile)
	if err != nil {
		return &exitCode{code: 3, err: errors.Wrap(err, "opening trace file")}
	}
	defer in.Close()

	driver := trace.NewDriver(alloc, log)
	stats, replayErr := driver.Replay(in)
	log.WithFields(logrus.Fields{
		"allocates":      stats.Allocates,
		"reallocates":    stats.Reallocates,
		"frees":          stats.Frees,
		"parse_errors":   stats.ParseErrors,
		"runtime_errors": stats.RuntimeErrors,
	}).Info("trace replay complete")

	out, err := os.Create(outputFileName)
	if err != nil {
		return &exitCode{code: 4, err: errors.Wrap(err, "creating output file")}
	}
	defer out.Close()

	// A fatal corruption still gets its snapshot flushed before the process
	// exits, since whatever the allocator last managed to write is the only
	// record of how it got there.
	if err := dump.Write(out, alloc.Region()); err != nil {
		return &exitCode{code: 5, err: errors.Wrap(err, "writing heap snapshot")}
	}

	if replayErr != nil {
		var corrupt *heap.CorruptionError
		if errors.As(replayErr, &corrupt) {
			log.WithError(replayErr).Error("trace: fatal heap corruption, snapshot flushed")
			return &exitCode{code: 1, err: replayErr}
		}
		return &exitCode{code: 4, err: errors.Wrap(replayErr, "replaying trace")}
	}

	if opts.showStats {
		s := alloc.Stats()
		fmt.Fprintf(os.Stderr, "blocks=%d free_blocks=%d alloc_bytes=%d free_bytes=%d largest_free=%d\n",
			s.BlockCount, s.FreeBlockCount, s.AllocBytes, s.FreeBytes, s.LargestFree)
	}

	return nil
}
