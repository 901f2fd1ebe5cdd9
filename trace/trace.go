// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trace reads textual allocate/reallocate/free operation records
// and replays them against a heap.Allocator, maintaining the pointer table
// that maps small integer trace references to the addresses the allocator
// returned for them.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/TaseenHakim/heapsim/heap"
)

// Stats counts how a trace replay went: how many commands of each kind ran,
// and how many lines were skipped as unparseable.
type Stats struct {
	Allocates    int
	Reallocates  int
	Frees        int
	ParseErrors  int
	RuntimeErrors int
}

// Driver replays a trace against an Allocator, owning the pointer table: a
// mapping from small integer reference IDs to the most recent address
// returned for that ID. Reusing a ref without an intervening free is
// last-write-wins — Driver simply overwrites the map entry.
type Driver struct {
	alloc *heap.Allocator
	log   *logrus.Logger
	table map[int]heap.Address
}

// NewDriver returns a Driver over alloc. A nil log installs a logger that
// discards output, matching heap's own stance of never logging inside the
// library.
func NewDriver(alloc *heap.Allocator, log *logrus.Logger) *Driver {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Driver{alloc: alloc, log: log, table: make(map[int]heap.Address)}
}

// Address returns the address currently on file for ref, or heap.NoAddress
// if ref was never written.
func (d *Driver) Address(ref int) heap.Address { return d.table[ref] }

// Replay reads one trace command per line from r and applies each to the
// Allocator in order. Unparseable lines are skipped and counted, never
// fatal. Runtime errors from the allocator (OutOfMemory, InvalidFree, ...)
// are logged and counted but likewise do not stop replay — the driver logs
// and continues. The one exception is a *heap.CorruptionError: that means
// the allocator's own boundary tags no longer agree with each other, so
// Replay stops immediately and returns the error rather than pressing on
// against metadata it can no longer trust.
func (d *Driver) Replay(r io.Reader) (Stats, error) {
	var stats Stats
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		err := d.applyLine(line, &stats)
		if err == nil {
			continue
		}
		var corrupt *heap.CorruptionError
		if errors.As(err, &corrupt) {
			d.log.WithFields(logrus.Fields{"line": lineNo, "text": line}).
				WithError(err).Error("trace: fatal heap corruption, aborting replay")
			return stats, err
		}
		stats.ParseErrors++
		d.log.WithFields(logrus.Fields{"line": lineNo, "text": line}).
			WithError(err).Warn("trace: skipping unparseable line")
	}
	if err := scanner.Err(); err != nil {
		return stats, errors.Wrap(err, "trace: reading input")
	}
	return stats, nil
}

func (d *Driver) applyLine(line string, stats *Stats) error {
	fields := splitCommand(line)
	if len(fields) == 0 {
		return errors.New("empty command")
	}

	switch fields[0] {
	case "a":
		return d.applyAllocate(fields[1:], stats)
	case "r":
		return d.applyReallocate(fields[1:], stats)
	case "f":
		return d.applyFree(fields[1:], stats)
	default:
		return errors.Errorf("unknown command %q", fields[0])
	}
}

func (d *Driver) applyAllocate(args []string, stats *Stats) error {
	if len(args) != 2 {
		return errors.Errorf("allocate wants 2 arguments, got %d", len(args))
	}
	size, err := parseNonNegative(args[0])
	if err != nil {
		return errors.Wrap(err, "size")
	}
	ref, err := parseNonNegative(args[1])
	if err != nil {
		return errors.Wrap(err, "ref")
	}

	stats.Allocates++
	addr, err := d.alloc.Allocate(size)
	d.log.WithFields(logrus.Fields{"op": "allocate", "size": size, "ref": ref, "addr": addr}).
		WithError(err).Debug("trace: allocate")
	if err != nil {
		stats.RuntimeErrors++
		d.log.WithError(err).Error("trace: allocate failed")
		var corrupt *heap.CorruptionError
		if errors.As(err, &corrupt) {
			return err
		}
		return nil
	}
	d.table[ref] = addr
	return nil
}

func (d *Driver) applyReallocate(args []string, stats *Stats) error {
	if len(args) != 3 {
		return errors.Errorf("reallocate wants 3 arguments, got %d", len(args))
	}
	size, err := parseNonNegative(args[0])
	if err != nil {
		return errors.Wrap(err, "size")
	}
	ref, err := parseNonNegative(args[1])
	if err != nil {
		return errors.Wrap(err, "ref")
	}
	newRef, err := parseNonNegative(args[2])
	if err != nil {
		return errors.Wrap(err, "new_ref")
	}

	stats.Reallocates++
	old := d.table[ref]
	addr, err := d.alloc.Reallocate(old, size)
	d.log.WithFields(logrus.Fields{"op": "reallocate", "size": size, "ref": ref, "new_ref": newRef, "old_addr": old, "addr": addr}).
		WithError(err).Debug("trace: reallocate")
	if err != nil {
		stats.RuntimeErrors++
		d.log.WithError(err).Error("trace: reallocate failed")
		var corrupt *heap.CorruptionError
		if errors.As(err, &corrupt) {
			return err
		}
		return nil
	}
	d.table[newRef] = addr
	return nil
}

func (d *Driver) applyFree(args []string, stats *Stats) error {
	if len(args) != 1 {
		return errors.Errorf("free wants 1 argument, got %d", len(args))
	}
	ref, err := parseNonNegative(args[0])
	if err != nil {
		return errors.Wrap(err, "ref")
	}

	stats.Frees++
	addr := d.table[ref]
	err = d.alloc.Free(addr)
	d.log.WithFields(logrus.Fields{"op": "free", "ref": ref, "addr": addr}).
		WithError(err).Debug("trace: free")
	if err != nil {
		stats.RuntimeErrors++
		d.log.WithError(err).Error("trace: free failed")
		var corrupt *heap.CorruptionError
		if errors.As(err, &corrupt) {
			return err
		}
	}
	return nil
}

// splitCommand tokenizes a line like "a 16, 0" into ["a", "16", "0"],
// tolerant of the comma-and-whitespace punctuation the trace format uses
// between arguments.
func splitCommand(line string) []string {
	replaced := strings.ReplaceAll(line, ",", " ")
	return strings.Fields(replaced)
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%q is negative", s)
	}
	return n, nil
}
