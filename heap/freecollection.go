// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

// FreeCollection is the query/notification surface a placement policy and
// the Allocator use to find and track free blocks. Two implementations
// exist (ImplicitFreeCollection, ExplicitFreeCollection); both satisfy this
// interface so the Allocator and the placement policies never branch on
// which one is in use. Grounded on the FLT/flt split in lldb/flt.go: an
// abstract free-list surface backed by a concrete doubly-linked
// implementation.
type FreeCollection interface {
	// Iterate visits every free block's header offset in this
	// collection's native traversal order — address-ascending for the
	// implicit variant, list order for the explicit one — calling visit
	// for each. It stops as soon as visit returns false.
	Iterate(visit func(off Address) bool)

	// OnFreed registers off as newly free.
	OnFreed(off Address)

	// OnAllocated removes off, previously free, from the collection.
	OnAllocated(off Address)

	// OnSplit registers remainder, a new free block created by shrinking
	// original. It does not touch original's membership; the caller
	// follows with OnAllocated(original) once original's allocated flag
	// is set.
	OnSplit(original, remainder Address)

	// OnCoalesced removes the given free blocks, which are about to be
	// merged into a single survivor the caller will register separately
	// via OnFreed.
	OnCoalesced(absorbed []Address)

	// OnRegionGrown registers a newly appended trailing free block that
	// did not coalesce with a pre-existing trailing free block.
	OnRegionGrown(tail Address)

	// OnRegionShrunk removes free blocks about to be truncated off the
	// end of the region.
	OnRegionShrunk(removed []Address)
}
