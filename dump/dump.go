// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dump snapshots a heap.Allocator's region to a textual format: one
// line per header-sized (4-byte) offset from the region's base up to
// current_size, independent of block boundaries. This preserves the
// original dumper's stride-based walk rather than a block-by-block one.
package dump

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/TaseenHakim/heapsim/heap"
)

// Write emits the heap snapshot for region to w: one "<offset>, 0x%08X" line
// per heap.HDR-byte stride. The word is interpreted big-endian, matching
// heap.Block's own boundary-tag encoding, so a snapshot round-trips through
// the same byte order the allocator used to write it.
func Write(w io.Writer, region *heap.Region) error {
	bytes := region.Bytes()
	bw := bufio.NewWriter(w)

	for off := 0; off+heap.HDR <= len(bytes); off += heap.HDR {
		word := binary.BigEndian.Uint32(bytes[off : off+heap.HDR])
		if _, err := fmt.Fprintf(bw, "%d, 0x%08X\n", off, word); err != nil {
			return errors.Wrap(err, "dump: writing snapshot line")
		}
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "dump: flushing snapshot")
	}
	return nil
}
