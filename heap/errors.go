// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "fmt"

// ConfigError reports an invalid Config passed to NewAllocator.
type ConfigError struct {
	Field string
	Value int
	Why   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("heap: invalid config field %s=%d: %s", e.Field, e.Value, e.Why)
}

// OutOfMemoryError reports that no free block large enough to satisfy a
// request exists. Allocate does not grow the region to make room, so this
// is reported whatever the region's current size.
type OutOfMemoryError struct {
	Requested int
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("heap: out of memory: no free block for %d bytes", e.Requested)
}

// InvalidFreeError reports that an address passed to Free does not refer to
// a live allocated block.
type InvalidFreeError struct {
	Addr Address
	Why  string
}

func (e *InvalidFreeError) Error() string {
	return fmt.Sprintf("heap: invalid free at %#x: %s", int32(e.Addr), e.Why)
}

// RegionOutOfBoundsError reports that a region-resize request would move
// current_size outside [minSize, maxSize].
type RegionOutOfBoundsError struct {
	CurrentSize int
	Delta       int
	MinSize     int
	MaxSize     int
}

func (e *RegionOutOfBoundsError) Error() string {
	return fmt.Sprintf("heap: region resize %d -> %d out of bounds [%d, %d]",
		e.CurrentSize, e.CurrentSize+e.Delta, e.MinSize, e.MaxSize)
}

// RegionBusyError reports that a region-shrink request would discard
// allocated bytes, or would cut a free trailing block down to less than
// MinBlockSize.
type RegionBusyError struct {
	CurrentSize int
	Delta       int
}

func (e *RegionBusyError) Error() string {
	return fmt.Sprintf("heap: cannot shrink region by %d bytes from %d: trailing bytes are allocated or would leave an undersized block", -e.Delta, e.CurrentSize)
}

// CorruptionError reports a boundary-tag mismatch or broken invariant
// detected mid-operation. This is always fatal: the caller should log it
// and terminate the process rather than attempt repair.
type CorruptionError struct {
	Offset int
	Why    string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("heap: corrupted metadata at offset %d: %s", e.Offset, e.Why)
}
