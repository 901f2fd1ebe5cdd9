// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

// placementPolicy picks one free block satisfying a size request, scanning
// a FreeCollection in its native traversal order. Parameterizing over
// FreeCollection (rather than over Region directly) is what lets the same
// first-fit/best-fit code work for both collection variants.
type placementPolicy interface {
	find(fc FreeCollection, region *Region, required int) (Address, bool)
}

type firstFitPolicy struct{}

// find returns the first free block in traversal order big enough for
// required bytes.
func (firstFitPolicy) find(fc FreeCollection, region *Region, required int) (off Address, ok bool) {
	fc.Iterate(func(candidate Address) bool {
		if region.BlockAt(candidate).Size() >= required {
			off, ok = candidate, true
			return false
		}
		return true
	})
	return
}

type bestFitPolicy struct{}

// find returns the smallest free block big enough for required bytes,
// ties broken by earliest in traversal order. It always scans the entire
// collection, even for the explicit variant's list traversal.
func (bestFitPolicy) find(fc FreeCollection, region *Region, required int) (off Address, ok bool) {
	bestSize := 0
	fc.Iterate(func(candidate Address) bool {
		size := region.BlockAt(candidate).Size()
		if size >= required && (!ok || size < bestSize) {
			off, bestSize, ok = candidate, size, true
		}
		return true
	})
	return
}
