// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkInvariants walks every block and asserts tag consistency, block size
// bounds, the size-partition invariant, and no-adjacent-free-blocks. The
// alignment residue documented in DESIGN.md (payload addresses sit at a
// fixed HDR-byte offset from an 8-byte-aligned block boundary) is checked
// on live addresses by TestS6_RandomizedSoak, not here.
func checkInvariants(t *testing.T, a *Allocator) {
	t.Helper()
	r := a.Region()
	var sum int
	prevFree := false
	off := Address(0)
	for int(off) < r.Size() {
		b := r.BlockAt(off)
		require.True(t, b.TagsConsistent(), "header/footer mismatch at offset %d", off)
		size := b.Size()
		require.True(t, size >= MinBlockSize && size%8 == 0, "bad block size %d at %d", size, off)
		if !b.Allocated() {
			require.False(t, prevFree, "two adjacent free blocks at offset %d", off)
		}
		prevFree = !b.Allocated()
		sum += size
		off += Address(size)
	}
	assert.Equal(t, r.Size(), sum, "block sizes do not partition current_size")
}

func newTestAllocator(t *testing.T, fc FreeCollectionKind, pp PlacementPolicyKind) *Allocator {
	t.Helper()
	a, err := NewAllocator(Config{FreeCollection: fc, Placement: pp, InitialSize: 4000, MaximumSize: 400000})
	require.NoError(t, err)
	return a
}

func TestS1_FreeAllReturnsSingleBlock(t *testing.T) {
	for _, fc := range []FreeCollectionKind{Implicit, Explicit} {
		a := newTestAllocator(t, fc, FirstFit)

		p0, err := a.Allocate(16)
		require.NoError(t, err)
		p1, err := a.Allocate(32)
		require.NoError(t, err)

		require.NoError(t, a.Free(p0))
		require.NoError(t, a.Free(p1))

		checkInvariants(t, a)
		first := a.Region().FirstBlock()
		assert.Equal(t, 4000, first.Size())
		assert.False(t, first.Allocated())
	}
}

func TestS2_FirstFitReusesHole(t *testing.T) {
	a := newTestAllocator(t, Implicit, FirstFit)

	p0, err := a.Allocate(24)
	require.NoError(t, err)
	p1, err := a.Allocate(24)
	require.NoError(t, err)
	_, err = a.Allocate(24)
	require.NoError(t, err)

	require.NoError(t, a.Free(p1))

	p3, err := a.Allocate(16)
	require.NoError(t, err)

	assert.Equal(t, p1, p3, "ref 3 should reuse ref 1's hole under first-fit")
	_ = p0
	checkInvariants(t, a)
}

func TestS3_BestFitPicksExactHole(t *testing.T) {
	a := newTestAllocator(t, Implicit, BestFit)

	tmp, err := a.Allocate(16) // block size 24: the pre-existing "16-byte hole"
	require.NoError(t, err)
	p0, err := a.Allocate(24) // block size 32
	require.NoError(t, err)
	p1, err := a.Allocate(24) // block size 32: the "24-byte hole" once freed
	require.NoError(t, err)
	_, err = a.Allocate(24)
	require.NoError(t, err)

	require.NoError(t, a.Free(tmp))
	require.NoError(t, a.Free(p1))

	p3, err := a.Allocate(16) // needs block size 24: exact match is tmp's hole
	require.NoError(t, err)

	assert.Equal(t, tmp, p3, "best-fit should pick the exact-size hole, not the larger one")
	_ = p0
	checkInvariants(t, a)
}

func TestS4_ReallocatePreservesPrefix(t *testing.T) {
	a := newTestAllocator(t, Implicit, FirstFit)

	p0, err := a.Allocate(100)
	require.NoError(t, err)
	payload := a.Region().Payload(p0, 100)
	for i := range payload {
		payload[i] = byte(i)
	}
	want := append([]byte(nil), payload...)

	p1, err := a.Reallocate(p0, 200)
	require.NoError(t, err)
	assert.NotEqual(t, NoAddress, p1)

	got := a.Region().Payload(p1, 100)
	assert.Equal(t, want, got)

	require.NoError(t, a.Free(p1))
	checkInvariants(t, a)
}

func TestS5_OutOfMemoryAtCapacity(t *testing.T) {
	a := newTestAllocator(t, Implicit, FirstFit)

	_, err := a.Allocate(3992)
	require.NoError(t, err)

	_, err = a.Allocate(1)
	require.Error(t, err)
	var oom *OutOfMemoryError
	assert.ErrorAs(t, err, &oom)
	checkInvariants(t, a)
}

func TestS6_RandomizedSoak(t *testing.T) {
	for _, fc := range []FreeCollectionKind{Implicit, Explicit} {
		for _, pp := range []PlacementPolicyKind{FirstFit, BestFit} {
			a := newTestAllocator(t, fc, pp)
			rng := rand.New(rand.NewSource(42))
			var live []Address

			for i := 0; i < 1000; i++ {
				if len(live) == 0 || rng.Intn(2) == 0 {
					size := rng.Intn(200) + 1
					addr, err := a.Allocate(size)
					if err == nil {
						live = append(live, addr)
					}
				} else {
					idx := rng.Intn(len(live))
					addr := live[idx]
					live = append(live[:idx], live[idx+1:]...)
					require.NoError(t, a.Free(addr))
				}
				checkInvariants(t, a)
				for _, addr := range live {
					assert.Equal(t, HDR, int(addr)%8, "address %d not at the deterministic alignment residue", addr)
				}
			}
		}
	}
}

// Policy selectivity over non-adjacent holes of distinct sizes is covered by
// TestFirstFitPicksFirstBigEnough and TestBestFitPicksSmallestBigEnough in
// placement_test.go, against a fakeCollection that controls traversal order
// directly instead of relying on Allocator.Free's coalescing to leave holes
// apart.

func TestCorruptedSuccessorTagIsFatal(t *testing.T) {
	a := newTestAllocator(t, Implicit, FirstFit)
	p0, err := a.Allocate(16)
	require.NoError(t, err)
	_, err = a.Allocate(16)
	require.NoError(t, err)

	block0 := a.Region().BlockAt(p0 - HDR)
	succ := a.Region().BlockAt(block0.Off + Address(block0.Size()))
	garbage := a.Region().Payload(succ.FooterOffset(), HDR)
	garbage[0] ^= 0xFF

	err = a.Free(p0)
	var corrupt *CorruptionError
	assert.ErrorAs(t, err, &corrupt)
}

func TestResizeRegionGrowCoalescesWithFreeTail(t *testing.T) {
	a := newTestAllocator(t, Implicit, FirstFit)
	_, err := a.Allocate(3900) // leaves a small free tail
	require.NoError(t, err)

	require.NoError(t, a.ResizeRegion(800))
	checkInvariants(t, a)
	assert.Equal(t, 4800, a.Region().Size())
}

func TestResizeRegionOutOfBounds(t *testing.T) {
	a := newTestAllocator(t, Implicit, FirstFit)
	err := a.ResizeRegion(-4000)
	var oob *RegionOutOfBoundsError
	assert.ErrorAs(t, err, &oob)

	a2, err := NewAllocator(Config{InitialSize: 4000, MaximumSize: 4000})
	require.NoError(t, err)
	err = a2.ResizeRegion(8)
	assert.ErrorAs(t, err, &oob)
}

func TestResizeRegionBusyWhenTailAllocated(t *testing.T) {
	// Start one stride above the 4000-byte floor so the shrink below stays
	// in bounds and reaches the busy check rather than the bounds check.
	a, err := NewAllocator(Config{InitialSize: 4008, MaximumSize: 400000})
	require.NoError(t, err)
	_, err = a.Allocate(4000) // block size 4008: consumes the whole region
	require.NoError(t, err)

	err = a.ResizeRegion(-8)
	var busy *RegionBusyError
	assert.ErrorAs(t, err, &busy)
}

func TestFreeNoAddressIsNoop(t *testing.T) {
	a := newTestAllocator(t, Implicit, FirstFit)
	require.NoError(t, a.Free(NoAddress))
	checkInvariants(t, a)
}

func TestFreeAlreadyFreeIsInvalid(t *testing.T) {
	a := newTestAllocator(t, Implicit, FirstFit)
	p, err := a.Allocate(16)
	require.NoError(t, err)
	require.NoError(t, a.Free(p))

	err = a.Free(p)
	var invalid *InvalidFreeError
	assert.ErrorAs(t, err, &invalid)
}
