// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

// noLink is the free-list terminator. It must differ from any valid header
// offset: offset 0 (the region's very first block) is a legitimate free
// block and must stay distinguishable from "no link", so the public
// NoAddress (0) sentinel cannot double as this list's terminator.
const noLink Address = -1

// ExplicitFreeCollection threads a doubly linked list through the payload
// of free blocks: the first two Address-sized (4-byte) words of a free
// block's payload hold the previous and next free block's header offsets.
// Insertion is LIFO at the head. Grounded on lldb/flt.go's link/unlink,
// adapted from on-disk handles to in-process Address offsets — there is no
// relocation to survive here, but Region.Grow can reallocate the backing
// slice, and indices (unlike a Go pointer into the old backing array)
// remain valid across that.
type ExplicitFreeCollection struct {
	region *Region
	head   Address
}

// NewExplicitFreeCollection returns an empty explicit free list over
// region. The caller must register any pre-existing free blocks (e.g. the
// region's initial single free block) via OnFreed.
func NewExplicitFreeCollection(region *Region) *ExplicitFreeCollection {
	return &ExplicitFreeCollection{region: region, head: noLink}
}

func (c *ExplicitFreeCollection) prevOf(off Address) Address {
	return Address(c.region.readWord(off + HDR))
}

func (c *ExplicitFreeCollection) nextOf(off Address) Address {
	return Address(c.region.readWord(off + HDR + 4))
}

func (c *ExplicitFreeCollection) setPrev(off, v Address) {
	c.region.writeWord(off+HDR, uint32(v))
}

func (c *ExplicitFreeCollection) setNext(off, v Address) {
	c.region.writeWord(off+HDR+4, uint32(v))
}

func (c *ExplicitFreeCollection) insert(off Address) {
	c.setPrev(off, noLink)
	c.setNext(off, c.head)
	if c.head != noLink {
		c.setPrev(c.head, off)
	}
	c.head = off
}

func (c *ExplicitFreeCollection) remove(off Address) {
	p, n := c.prevOf(off), c.nextOf(off)
	if p != noLink {
		c.setNext(p, n)
	} else {
		c.head = n
	}
	if n != noLink {
		c.setPrev(n, p)
	}
}

// Iterate walks the free list head to tail. The next pointer is captured
// before visit runs so a visitor that mutates the just-visited block's own
// links (it never needs to) cannot derail traversal.
func (c *ExplicitFreeCollection) Iterate(visit func(off Address) bool) {
	for off := c.head; off != noLink; {
		next := c.nextOf(off)
		if !visit(off) {
			return
		}
		off = next
	}
}

func (c *ExplicitFreeCollection) OnFreed(off Address) { c.insert(off) }

func (c *ExplicitFreeCollection) OnAllocated(off Address) { c.remove(off) }

// OnSplit registers the new remainder block. original's own membership is
// unchanged here; the Allocator always follows a split with OnAllocated on
// the (now allocated) original.
func (c *ExplicitFreeCollection) OnSplit(original, remainder Address) {
	c.insert(remainder)
}

// OnCoalesced unlinks blocks about to be merged away. It must run before
// their header words are overwritten with the merged block's tag, since
// remove reads each block's still-intact link words.
func (c *ExplicitFreeCollection) OnCoalesced(absorbed []Address) {
	for _, off := range absorbed {
		c.remove(off)
	}
}

func (c *ExplicitFreeCollection) OnRegionGrown(tail Address) { c.insert(tail) }

func (c *ExplicitFreeCollection) OnRegionShrunk(removed []Address) {
	for _, off := range removed {
		c.remove(off)
	}
}

var _ FreeCollection = (*ExplicitFreeCollection)(nil)
