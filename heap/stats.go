// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

// AllocStats is a point-in-time, non-destructive snapshot of heap health.
// Grounded on lldb/falloc.go's AllocStats (TotalAtoms/AllocAtoms/FreeAtoms/
// AllocBytes), adapted to bytes throughout since this simulator has no
// atom quantization.
type AllocStats struct {
	BlockCount     int
	FreeBlockCount int
	AllocBytes     int64
	FreeBytes      int64
	LargestFree    int64
}

// Stats computes an AllocStats by walking the region once, in O(B).
func (a *Allocator) Stats() AllocStats {
	var s AllocStats
	off := Address(0)
	end := a.region.byteLen()
	for int(off) < end {
		b := a.region.BlockAt(off)
		size := b.Size()
		s.BlockCount++
		if b.Allocated() {
			s.AllocBytes += int64(b.PayloadSize())
		} else {
			s.FreeBlockCount++
			s.FreeBytes += int64(size)
			if int64(size) > s.LargestFree {
				s.LargestFree = int64(size)
			}
		}
		off += Address(size)
	}
	return s
}
