// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package indel

import (
	"strings"
)

// RefSeq gives access to the reference bases of the contig under analysis.
type RefSeq interface {
	// Base returns the upper-case reference base at pos, or 'N' when pos is
	// outside the sequence.
	Base(pos PosType) byte
}

// StringRef is a RefSeq backed by a string holding the reference bases for
// positions [Offset, Offset+len(Seq)).
type StringRef struct {
	Seq    string
	Offset PosType
}

// Base implements RefSeq.
func (r StringRef) Base(pos PosType) byte {
	i := pos - r.Offset
	if i < 0 || int(i) >= len(r.Seq) {
		return 'N'
	}
	return r.Seq[i]
}

// maxRepeatScan bounds the number of unit copies counted on each side of an
// indel.
const maxRepeatScan = 1000

// ReportInfo describes the repeat context of a simple insertion or deletion.
type ReportInfo struct {
	// IndelSeq is the inserted or deleted sequence.
	IndelSeq string
	// RepeatUnit is the shortest sequence whose repetition forms IndelSeq.  It
	// is empty when the context is undefined (swaps, breakpoints, unknown
	// sequence).
	RepeatUnit string
	// RefRepeatCount is the number of adjacent RepeatUnit copies in the
	// reference at the indel.
	RefRepeatCount int
	// IndelRepeatCount is the copy count on the indel allele.
	IndelRepeatCount int
}

// IsHomopolymer reports whether the indel sits in a single-base repeat tract
// long enough to be prone to polymerase slippage.
func (ri ReportInfo) IsHomopolymer() bool {
	return len(ri.RepeatUnit) == 1 && (ri.RefRepeatCount >= 2 || ri.IndelRepeatCount >= 2)
}

// NewReportInfo computes the repeat context of key.  insertSeq is the
// inserted sequence of an Insert key and is ignored otherwise.
func NewReportInfo(key Key, insertSeq string, ref RefSeq) ReportInfo {
	var ri ReportInfo
	switch key.Type {
	case Insert:
		ri.IndelSeq = insertSeq
	case Delete:
		var sb strings.Builder
		for i := 0; i < key.Length; i++ {
			sb.WriteByte(ref.Base(key.Pos + PosType(i)))
		}
		ri.IndelSeq = sb.String()
	default:
		return ri
	}
	unit := repeatUnit(ri.IndelSeq)
	if unit == "" {
		return ri
	}
	k := PosType(len(unit))
	nCopy := 0
	for pos := key.Pos - k; nCopy < maxRepeatScan && matchRef(ref, pos, unit); pos -= k {
		nCopy++
	}
	right := 0
	for pos := key.Pos; right < maxRepeatScan && matchRef(ref, pos, unit); pos += k {
		right++
	}
	nCopy += right
	indelCopies := len(ri.IndelSeq) / len(unit)
	ri.RepeatUnit = unit
	ri.RefRepeatCount = nCopy
	if key.Type == Insert {
		ri.IndelRepeatCount = nCopy + indelCopies
	} else {
		ri.IndelRepeatCount = nCopy - indelCopies
		if ri.IndelRepeatCount < 0 {
			ri.IndelRepeatCount = 0
		}
	}
	return ri
}

// repeatUnit returns the shortest unit that tiles seq, or "" if seq is empty
// or contains anything other than ACGT.
func repeatUnit(seq string) string {
	n := len(seq)
	if n == 0 {
		return ""
	}
	for i := 0; i < n; i++ {
		switch seq[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return ""
		}
	}
	for k := 1; k < n; k++ {
		if n%k != 0 {
			continue
		}
		if seq == strings.Repeat(seq[:k], n/k) {
			return seq[:k]
		}
	}
	return seq
}

func matchRef(ref RefSeq, pos PosType, unit string) bool {
	for i := 0; i < len(unit); i++ {
		if ref.Base(pos+PosType(i)) != unit[i] {
			return false
		}
	}
	return true
}
