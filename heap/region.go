// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "encoding/binary"

// Region is the simulated heap: a contiguous, byte-addressable area of
// current_size bytes, partitioned end-to-end into blocks. Unlike
// lldb/memfiler.go's MemFiler, which pages a virtual file, Region is a
// single flat []byte: the backing memory is a fixed in-process region, not
// a paged or persistent store.
type Region struct {
	bytes   []byte
	minSize int
	maxSize int
}

// NewRegion allocates a Region of the given initial size (bounded by
// [minSize, maxSize]) and writes a single free block spanning it.
func NewRegion(initialSize, minSize, maxSize int) *Region {
	r := &Region{
		bytes:   make([]byte, initialSize),
		minSize: minSize,
		maxSize: maxSize,
	}
	r.FirstBlock().write(initialSize, false)
	return r
}

func (r *Region) readWord(off Address) uint32 {
	return binary.BigEndian.Uint32(r.bytes[off : off+HDR])
}

func (r *Region) writeWord(off Address, w uint32) {
	binary.BigEndian.PutUint32(r.bytes[off:off+HDR], w)
}

func (r *Region) byteLen() int { return len(r.bytes) }

// Size returns current_size, the region's current length in bytes.
func (r *Region) Size() int { return len(r.bytes) }

// MinSize returns the configured floor for Size.
func (r *Region) MinSize() int { return r.minSize }

// MaxSize returns the configured ceiling for Size.
func (r *Region) MaxSize() int { return r.maxSize }

// FirstBlock returns the block at the region's base.
func (r *Region) FirstBlock() Block { return Block{store: r, Off: 0} }

// BlockAt returns a Block view at the given header offset. The caller is
// responsible for off being a valid block boundary.
func (r *Region) BlockAt(off Address) Block { return Block{store: r, Off: off} }

// Payload returns a slice of the region's raw bytes covering off:off+n. It
// aliases the Region's backing array; callers must not retain it across a
// mutating operation.
func (r *Region) Payload(off Address, n int) []byte {
	return r.bytes[off : int(off)+n]
}

// Bytes returns the region's raw backing array for read-only traversal
// (the dumper). This must not be called while a mutating operation is in
// progress; the driver enforces that by dumping only after trace replay
// completes.
func (r *Region) Bytes() []byte { return r.bytes }

// Grow extends the region by delta bytes (delta > 0) and returns the
// offset where the new trailing space begins. It does not write any tag;
// the caller (Allocator.ResizeRegion) is responsible for forming the new
// trailing free block and coalescing it with a free predecessor.
func (r *Region) Grow(delta int) Address {
	tail := Address(len(r.bytes))
	r.bytes = append(r.bytes, make([]byte, delta)...)
	return tail
}

// Shrink truncates the region by delta bytes (delta > 0). The caller must
// have already verified the removed tail is entirely free.
func (r *Region) Shrink(delta int) {
	r.bytes = r.bytes[:len(r.bytes)-delta]
}
