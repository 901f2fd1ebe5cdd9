// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

// Allocator orchestrates placement, splitting, coalescing, and free
// collection bookkeeping over a Region. It owns its Region and Config and
// is not safe for concurrent use — there is exactly one caller and no
// operation suspends.
//
// The split-on-alloc and four-way coalesce-on-free structure (isolated /
// right-join / left-join / middle-join) is a direct structural adaptation of
// lldb/falloc.go's alloc/free2, generalized from on-disk atoms to
// in-process bytes and from a single FLT-backed free list to the pluggable
// FreeCollection interface.
type Allocator struct {
	region *Region
	fc     FreeCollection
	policy placementPolicy
	cfg    Config
}

// NewAllocator constructs an Allocator from cfg, allocating a fresh Region
// of cfg.InitialSize bytes as one large free block.
func NewAllocator(cfg Config) (*Allocator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	region := NewRegion(cfg.InitialSize, defaultInitialSize, cfg.MaximumSize)

	var fc FreeCollection
	switch cfg.FreeCollection {
	case Explicit:
		fc = NewExplicitFreeCollection(region)
	default:
		fc = NewImplicitFreeCollection(region)
	}
	fc.OnFreed(region.FirstBlock().Off)

	var policy placementPolicy
	switch cfg.Placement {
	case BestFit:
		policy = bestFitPolicy{}
	default:
		policy = firstFitPolicy{}
	}

	return &Allocator{region: region, fc: fc, policy: policy, cfg: cfg}, nil
}

// Region exposes the backing Region for read-only traversal (the dumper)
// and diagnostics. Callers must not mutate it directly.
func (a *Allocator) Region() *Region { return a.region }

// Config returns the configuration the Allocator was constructed with.
func (a *Allocator) Config() Config { return a.cfg }

// Allocate reserves requestBytes of payload and returns its address, or an
// *OutOfMemoryError if no free block is big enough. It never grows the
// region itself — growth only happens via ResizeRegion.
func (a *Allocator) Allocate(requestBytes int) (Address, error) {
	required := requiredBlockSize(requestBytes)

	off, ok := a.policy.find(a.fc, a.region, required)
	if !ok {
		return NoAddress, &OutOfMemoryError{Requested: requestBytes}
	}

	chosen := a.region.BlockAt(off)
	if remainder := chosen.Size() - required; remainder >= MinBlockSize {
		remainderOff := off + Address(required)
		chosen.Resize(required, false)
		a.region.BlockAt(remainderOff).Resize(remainder, false)
		a.fc.OnSplit(off, remainderOff)
	}

	chosen.SetAllocated(true)
	a.fc.OnAllocated(off)
	return chosen.PayloadOffset(), nil
}

// Free releases the block at addr. A NoAddress addr is a no-op. Coalesces
// with a free successor and/or predecessor before re-registering the
// surviving free block, fixing both boundary tags on every merge so no
// stale footer survives a coalesce.
func (a *Allocator) Free(addr Address) error {
	if addr == NoAddress {
		return nil
	}

	b, err := a.blockForAddress(addr)
	if err != nil {
		return err
	}
	if !b.Allocated() {
		return &InvalidFreeError{Addr: addr, Why: "block already free"}
	}

	// Successor and Predecessor are reached by the allocator's own
	// boundary-tag arithmetic, never from a caller-supplied address, so a
	// tag mismatch here means the heap's own metadata is broken rather
	// than that Free was asked to release something bogus. Checked before
	// any tag is rewritten, so a corrupt heap is reported with the heap
	// left exactly as found.
	succ, hasSucc := b.Successor()
	if hasSucc && !succ.TagsConsistent() {
		return &CorruptionError{Offset: int(succ.Off), Why: "successor header/footer mismatch"}
	}
	pred, hasPred := b.Predecessor()
	if hasPred && !pred.TagsConsistent() {
		return &CorruptionError{Offset: int(pred.Off), Why: "predecessor header/footer mismatch"}
	}

	b.SetAllocated(false)
	size := b.Size()

	var absorbed []Address
	if hasSucc && !succ.Allocated() {
		absorbed = append(absorbed, succ.Off)
		size += succ.Size()
	}

	survivorOff := b.Off
	if hasPred && !pred.Allocated() {
		absorbed = append(absorbed, pred.Off)
		size += pred.Size()
		survivorOff = pred.Off
	}

	if len(absorbed) > 0 {
		a.fc.OnCoalesced(absorbed)
	}
	a.region.BlockAt(survivorOff).Resize(size, false)
	a.fc.OnFreed(survivorOff)
	return nil
}

// Reallocate resizes the block at addr to newRequest bytes, copying
// min(old, new) payload bytes, and returns the (possibly new) address. A
// NoAddress addr behaves like Allocate; a zero newRequest behaves like
// Free. On failure the original block is left completely untouched: either
// the reallocation fully succeeds or nothing changes.
func (a *Allocator) Reallocate(addr Address, newRequest int) (Address, error) {
	if addr == NoAddress {
		return a.Allocate(newRequest)
	}
	if newRequest == 0 {
		return NoAddress, a.Free(addr)
	}

	old, err := a.blockForAddress(addr)
	if err != nil {
		return NoAddress, err
	}
	if !old.Allocated() {
		return NoAddress, &InvalidFreeError{Addr: addr, Why: "not a live allocated block"}
	}
	oldPayload := old.PayloadSize()

	newAddr, err := a.Allocate(newRequest)
	if err != nil {
		return NoAddress, err
	}

	n := oldPayload
	if newRequest < n {
		n = newRequest
	}
	copy(a.region.Payload(newAddr, n), a.region.Payload(addr, n))

	if err := a.Free(addr); err != nil {
		return NoAddress, err
	}
	return newAddr, nil
}

// ResizeRegion adjusts current_size by deltaBytes. Growth appends a new
// trailing free block, coalescing it with a free trailing block if one
// exists. Shrinking requires the trailing deltaBytes to be covered
// entirely by free blocks, and any free block cut short to keep at least
// MinBlockSize bytes; otherwise it fails with *RegionBusyError.
func (a *Allocator) ResizeRegion(deltaBytes int) error {
	newSize := a.region.Size() + deltaBytes
	if newSize < a.region.MinSize() || newSize > a.region.MaxSize() {
		return &RegionOutOfBoundsError{
			CurrentSize: a.region.Size(),
			Delta:       deltaBytes,
			MinSize:     a.region.MinSize(),
			MaxSize:     a.region.MaxSize(),
		}
	}

	switch {
	case deltaBytes > 0:
		return a.growRegion(deltaBytes)
	case deltaBytes < 0:
		return a.shrinkRegion(-deltaBytes)
	default:
		return nil
	}
}

func (a *Allocator) growRegion(delta int) error {
	oldSize := a.region.Size()
	lastOff, lastSize := a.trailingBlock(oldSize)
	lastBlock := a.region.BlockAt(lastOff)
	lastWasFree := !lastBlock.Allocated()

	tailStart := a.region.Grow(delta)
	a.region.BlockAt(tailStart).Resize(delta, false)

	if lastWasFree {
		a.fc.OnCoalesced([]Address{lastOff})
		a.region.BlockAt(lastOff).Resize(lastSize+delta, false)
		a.fc.OnFreed(lastOff)
		return nil
	}

	a.fc.OnRegionGrown(tailStart)
	return nil
}

func (a *Allocator) shrinkRegion(delta int) error {
	curSize := a.region.Size()
	remaining := delta
	end := Address(curSize)

	var absorbed []Address
	partialOff := NoAddress
	partialSize := 0
	haveParital := false

	for remaining > 0 {
		if int(end) <= 0 {
			return &RegionBusyError{CurrentSize: curSize, Delta: -delta}
		}
		off, size := a.trailingBlock(int(end))
		blk := a.region.BlockAt(off)
		if blk.Allocated() {
			return &RegionBusyError{CurrentSize: curSize, Delta: -delta}
		}

		if size <= remaining {
			absorbed = append(absorbed, off)
			remaining -= size
			end = off
			continue
		}

		newSize := size - remaining
		if newSize < MinBlockSize {
			return &RegionBusyError{CurrentSize: curSize, Delta: -delta}
		}
		partialOff, partialSize, haveParital = off, newSize, true
		remaining = 0
	}

	if len(absorbed) > 0 {
		a.fc.OnRegionShrunk(absorbed)
	}
	if haveParital {
		a.region.BlockAt(partialOff).Resize(partialSize, false)
	}
	a.region.Shrink(delta)
	return nil
}

// trailingBlock returns the offset and size of the block that currently
// ends at byte offset end, discovered via the footer immediately before
// end, mirroring Block.Predecessor's technique.
func (a *Allocator) trailingBlock(end int) (Address, int) {
	footerOff := Address(end) - HDR
	size := tagSize(a.region.readWord(footerOff))
	return Address(end) - Address(size), size
}

// blockForAddress validates addr as a live block's payload address and
// returns its Block view.
func (a *Allocator) blockForAddress(addr Address) (Block, error) {
	headerOff := addr - HDR
	if headerOff < 0 || int(headerOff) >= a.region.byteLen() {
		return Block{}, &InvalidFreeError{Addr: addr, Why: "address out of region bounds"}
	}
	b := a.region.BlockAt(headerOff)
	if !b.TagsConsistent() {
		return Block{}, &InvalidFreeError{Addr: addr, Why: "header/footer mismatch"}
	}
	return b, nil
}
