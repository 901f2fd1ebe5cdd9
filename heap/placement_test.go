// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "testing"

// fakeCollection lets placement policies be tested against a scripted
// traversal order without an Allocator or Region driving it.
type fakeCollection struct {
	order []Address
}

func (f *fakeCollection) Iterate(visit func(Address) bool) {
	for _, off := range f.order {
		if !visit(off) {
			return
		}
	}
}
func (f *fakeCollection) OnFreed(Address)              {}
func (f *fakeCollection) OnAllocated(Address)          {}
func (f *fakeCollection) OnSplit(Address, Address)     {}
func (f *fakeCollection) OnCoalesced([]Address)        {}
func (f *fakeCollection) OnRegionGrown(Address)         {}
func (f *fakeCollection) OnRegionShrunk([]Address)      {}

var _ FreeCollection = (*fakeCollection)(nil)

func regionWithHoles(sizes []int) (*Region, []Address) {
	total := 0
	for _, s := range sizes {
		total += s
	}
	r := NewRegion(total, total, total)
	off := Address(0)
	var offs []Address
	for _, s := range sizes {
		r.BlockAt(off).Resize(s, false)
		offs = append(offs, off)
		off += Address(s)
	}
	return r, offs
}

func TestFirstFitPicksFirstBigEnough(t *testing.T) {
	r, offs := regionWithHoles([]int{40, 24, 32})
	fc := &fakeCollection{order: offs}

	got, ok := (firstFitPolicy{}).find(fc, r, 24)
	if !ok || got != offs[0] {
		t.Fatalf("first-fit = (%v, %v), want (%v, true)", got, ok, offs[0])
	}
}

func TestBestFitPicksSmallestBigEnough(t *testing.T) {
	r, offs := regionWithHoles([]int{40, 24, 32})
	fc := &fakeCollection{order: offs}

	got, ok := (bestFitPolicy{}).find(fc, r, 24)
	if !ok || got != offs[1] {
		t.Fatalf("best-fit = (%v, %v), want (%v, true)", got, ok, offs[1])
	}
}

func TestBestFitTieBreaksByTraversalOrder(t *testing.T) {
	r, offs := regionWithHoles([]int{32, 32})
	fc := &fakeCollection{order: offs}

	got, ok := (bestFitPolicy{}).find(fc, r, 24)
	if !ok || got != offs[0] {
		t.Fatalf("best-fit tie-break = (%v, %v), want (%v, true)", got, ok, offs[0])
	}
}

func TestPlacementNoFit(t *testing.T) {
	r, offs := regionWithHoles([]int{16, 24})
	fc := &fakeCollection{order: offs}

	if _, ok := (firstFitPolicy{}).find(fc, r, 1000); ok {
		t.Error("first-fit found a block that does not exist")
	}
	if _, ok := (bestFitPolicy{}).find(fc, r, 1000); ok {
		t.Error("best-fit found a block that does not exist")
	}
}
