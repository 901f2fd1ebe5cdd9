// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "testing"

func collectOffsets(fc FreeCollection) []Address {
	var got []Address
	fc.Iterate(func(off Address) bool {
		got = append(got, off)
		return true
	})
	return got
}

func TestExplicitInsertIsLIFO(t *testing.T) {
	r := NewRegion(96, 96, 96)
	for off := 0; off < 96; off += 32 {
		r.BlockAt(Address(off)).Resize(32, false)
	}
	fc := NewExplicitFreeCollection(r)
	fc.OnFreed(0)
	fc.OnFreed(32)
	fc.OnFreed(64)

	got := collectOffsets(fc)
	want := []Address{64, 32, 0}
	if len(got) != len(want) {
		t.Fatalf("Iterate returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Iterate()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExplicitRemoveFromMiddle(t *testing.T) {
	r := NewRegion(96, 96, 96)
	for off := 0; off < 96; off += 32 {
		r.BlockAt(Address(off)).Resize(32, false)
	}
	fc := NewExplicitFreeCollection(r)
	fc.OnFreed(0)
	fc.OnFreed(32)
	fc.OnFreed(64)

	fc.OnAllocated(32) // remove the middle node

	got := collectOffsets(fc)
	want := []Address{64, 0}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Iterate() after removing middle = %v, want %v", got, want)
	}
}

func TestExplicitRemoveHeadAndTail(t *testing.T) {
	r := NewRegion(64, 64, 64)
	r.BlockAt(0).Resize(32, false)
	r.BlockAt(32).Resize(32, false)
	fc := NewExplicitFreeCollection(r)
	fc.OnFreed(0)
	fc.OnFreed(32)

	fc.OnAllocated(32) // remove head
	got := collectOffsets(fc)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("after removing head: %v, want [0]", got)
	}

	fc.OnAllocated(0) // remove the now-only node
	got = collectOffsets(fc)
	if len(got) != 0 {
		t.Fatalf("after removing last node: %v, want empty", got)
	}
}

func TestExplicitFirstBlockAtOffsetZeroSurvivesInList(t *testing.T) {
	// Regression: offset 0 is a legitimate free block and must not be
	// confused with the list's "no link" terminator.
	r := NewRegion(32, 32, 32)
	fc := NewExplicitFreeCollection(r)
	fc.OnFreed(r.FirstBlock().Off)

	got := collectOffsets(fc)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("Iterate() = %v, want [0]", got)
	}
}
