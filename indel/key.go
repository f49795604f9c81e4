// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package indel

import (
	"fmt"

	"github.com/grailbio/indelsync/interval"
)

// PosType is the integer type used to represent genomic positions.
type PosType = interval.PosType

// Type is the class of an indel.
type Type uint8

const (
	// Insert is a simple insertion of Length bases before Pos.
	Insert Type = iota
	// Delete is a simple deletion of Length bases starting at Pos.
	Delete
	// Swap deletes SwapDLength bases starting at Pos and inserts Length bases
	// in their place.
	Swap
	// BreakpointLeft is an open-ended breakpoint whose left side is anchored
	// at Pos; the sequence to its right is unknown.
	BreakpointLeft
	// BreakpointRight is an open-ended breakpoint whose right side is anchored
	// at Pos.
	BreakpointRight
)

var typeNames = [...]string{"INSERT", "DELETE", "SWAP", "BP_LEFT", "BP_RIGHT"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Key identifies an indel.  Keys are totally ordered by (Pos, Type, Length,
// SwapDLength); Buffer iterates them in that order.
type Key struct {
	// Pos is the 0-based position of the first reference base affected by the
	// indel.  Pos-1 is the last unaffected (anchor) base.
	Pos         PosType
	Type        Type
	Length      int
	SwapDLength int
}

// IsBreakpoint reports whether k is an open-ended breakpoint.
func (k Key) IsBreakpoint() bool {
	return k.Type == BreakpointLeft || k.Type == BreakpointRight
}

// MaxLength returns the larger of the inserted and deleted lengths.
func (k Key) MaxLength() int {
	if k.SwapDLength > k.Length {
		return k.SwapDLength
	}
	return k.Length
}

// DeletedLength returns the number of reference bases removed by k.
func (k Key) DeletedLength() int {
	switch k.Type {
	case Delete:
		return k.Length
	case Swap:
		return k.SwapDLength
	}
	return 0
}

// DepthPos returns the position at which depth estimates for k are queried.
func (k Key) DepthPos() PosType {
	return k.Pos - 1
}

// Less reports whether k sorts before o.
func (k Key) Less(o Key) bool {
	return k.compare(o) < 0
}

func (k Key) compare(o Key) int {
	switch {
	case k.Pos != o.Pos:
		if k.Pos < o.Pos {
			return -1
		}
		return 1
	case k.Type != o.Type:
		return int(k.Type) - int(o.Type)
	case k.Length != o.Length:
		return k.Length - o.Length
	}
	return k.SwapDLength - o.SwapDLength
}

func (k Key) String() string {
	if k.Type == Swap {
		return fmt.Sprintf("%d:%v:%d/%d", k.Pos+1, k.Type, k.Length, k.SwapDLength)
	}
	return fmt.Sprintf("%d:%v:%d", k.Pos+1, k.Type, k.Length)
}

// Observation is one read's evidence for an indel, attributed to the sample
// whose Synchronizer inserts it.
type Observation struct {
	Key Key
	// ReadName identifies the supporting read.  It is empty for indels declared
	// by an external source, which contribute no read support.
	ReadName string
	// InsertSeq holds the inserted bases seen in this read.  For breakpoints it
	// may be a prefix or suffix of the full inserted sequence.
	InsertSeq string
	// IsExternalCandidate marks indels declared by an external truth set.
	IsExternalCandidate bool
}
