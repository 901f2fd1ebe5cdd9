// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "github.com/cznic/mathutil"

// HDR is the size, in bytes, of a block header or footer word.
const HDR = 4

// MinBlockSize is the smallest size a block may have: two tags plus at
// least 8 bytes of payload. The 8-byte payload floor also covers the two
// Address-sized link words an explicit free block needs, so there is no
// separate, larger floor for the explicit collection.
const MinBlockSize = 2*HDR + 8

const (
	sizeMask     = uint32(1)<<29 - 1
	allocatedBit = uint32(1) << 29
)

// Address is a byte offset from the start of a Region. It doubles as the
// "pointer" type the allocator hands back to callers: NoAddress is the NONE
// sentinel, safe because a live payload address is always >= HDR.
type Address int32

// NoAddress is the sentinel for "no block".
const NoAddress Address = 0

// packTag packs a block size and allocated flag into a boundary-tag word.
// The two reserved bits are always written as zero.
func packTag(size int, allocated bool) uint32 {
	w := uint32(size) & sizeMask
	if allocated {
		w |= allocatedBit
	}
	return w
}

func tagSize(word uint32) int        { return int(word & sizeMask) }
func tagAllocated(word uint32) bool  { return word&allocatedBit != 0 }
func roundUp8(n int) int             { return (n + 7) &^ 7 }

// requiredBlockSize returns the total block size (header + payload +
// footer) needed to satisfy a payload request of n bytes, rounded up to a
// multiple of 8 and clamped to MinBlockSize.
func requiredBlockSize(n int) int {
	return mathutil.Max(roundUp8(n+2*HDR), MinBlockSize)
}

// wordStore is the narrow surface Block needs from its backing Region: read
// and write a 4-byte boundary-tag word at a given offset, and report the
// current region size. Keeping this as an interface (rather than having
// Block reach into Region directly) lets Block's tag arithmetic be tested
// in isolation from Region's growth/shrink bookkeeping.
type wordStore interface {
	readWord(off Address) uint32
	writeWord(off Address, w uint32)
	byteLen() int
}

// Block is a view of one block's boundary tags inside a wordStore. It does
// not own any memory itself; Off identifies the header's offset.
type Block struct {
	store wordStore
	Off   Address
}

// Size returns the block's total size (header + payload + footer).
func (b Block) Size() int { return tagSize(b.store.readWord(b.Off)) }

// Allocated reports whether the block is currently in use.
func (b Block) Allocated() bool { return tagAllocated(b.store.readWord(b.Off)) }

// FooterOffset returns the offset of this block's footer word.
func (b Block) FooterOffset() Address { return b.Off + Address(b.Size()) - HDR }

// PayloadOffset returns the address of the block's payload (header address
// + HDR), which is the address allocate() returns to callers.
func (b Block) PayloadOffset() Address { return b.Off + HDR }

// PayloadSize returns the number of usable payload bytes in the block.
func (b Block) PayloadSize() int { return b.Size() - 2*HDR }

// write sets both the header and footer to the given size/allocated pair.
// Every write touches both tags so no stale footer ever survives past the
// operation that changes it.
func (b Block) write(size int, allocated bool) {
	w := packTag(size, allocated)
	b.store.writeWord(b.Off, w)
	b.store.writeWord(b.Off+Address(size)-HDR, w)
}

// SetAllocated rewrites both tags with the current size and a new
// allocated flag.
func (b Block) SetAllocated(allocated bool) { b.write(b.Size(), allocated) }

// Resize rewrites both tags for a new size, keeping (or changing) the
// allocated flag, and moves the footer to match.
func (b Block) Resize(newSize int, allocated bool) { b.write(newSize, allocated) }

// TagsConsistent reports whether the header and footer agree on this
// block's size and allocated flag.
func (b Block) TagsConsistent() bool {
	return b.store.readWord(b.Off) == b.store.readWord(b.FooterOffset())
}

// Successor returns the block immediately following this one, if any.
func (b Block) Successor() (Block, bool) {
	next := b.Off + Address(b.Size())
	if int(next) >= b.store.byteLen() {
		return Block{}, false
	}
	return Block{store: b.store, Off: next}, true
}

// Predecessor returns the block immediately preceding this one, discovered
// via the footer word immediately before this block's header. Returns
// false for the region's first block.
func (b Block) Predecessor() (Block, bool) {
	if b.Off == 0 {
		return Block{}, false
	}
	footerOff := b.Off - HDR
	sz := tagSize(b.store.readWord(footerOff))
	predOff := b.Off - Address(sz)
	return Block{store: b.store, Off: predOff}, true
}
