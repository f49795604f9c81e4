// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package indel

// DepthBuffer holds one sample's estimated read depth per position.  The
// estimate counts reads by a different method than indel support, so an
// indel's read count can exceed the depth at its anchor.
type DepthBuffer struct {
	depth map[PosType]uint32
}

// NewDepthBuffer creates an empty DepthBuffer.
func NewDepthBuffer() *DepthBuffer {
	return &DepthBuffer{depth: make(map[PosType]uint32)}
}

// Inc adds one read to the depth at pos.
func (b *DepthBuffer) Inc(pos PosType) {
	b.depth[pos]++
}

// IncRange adds one read to the depth at every position in [start, end).
func (b *DepthBuffer) IncRange(start, end PosType) {
	for pos := start; pos < end; pos++ {
		b.depth[pos]++
	}
}

// Val returns the depth at pos, or 0 if no read covered it.
func (b *DepthBuffer) Val(pos PosType) uint32 {
	return b.depth[pos]
}
