// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package candidate

import (
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/indelsync/indel"
)

// readTier classifies a record by mapping quality.
type readTier int

const (
	tierNone readTier = iota
	tier1
	tier2
)

func classifyRecord(rec *sam.Record, opts *Opts) readTier {
	if rec.Flags&sam.Unmapped != 0 || int(rec.Flags)&opts.FlagExclude != 0 {
		return tierNone
	}
	mapq := int(rec.MapQ)
	switch {
	case mapq >= opts.MinMapq:
		return tier1
	case mapq >= opts.Tier2MinMapq:
		return tier2
	}
	return tierNone
}

// observeRecord adds rec's contribution to depth (tier 1) or depth2 (tier 2)
// and passes the indels of tier 1 reads to emit.
//
// An insertion at either end of the alignment becomes an open breakpoint
// carrying the inserted bases seen so far: BreakpointRight when it precedes
// the first aligned base, BreakpointLeft when it follows the last one.
// Breakpoint keys have zero length, so reads seeing different amounts of the
// inserted sequence share one key.  A deletion adjacent to an insertion
// becomes a single Swap.
func observeRecord(rec *sam.Record, opts *Opts, depth, depth2 *indel.DepthBuffer, emit func(indel.Observation)) {
	tier := classifyRecord(rec, opts)
	if tier == tierNone {
		return
	}
	if tier == tier2 {
		refPos := indel.PosType(rec.Pos)
		for _, op := range rec.Cigar {
			n := indel.PosType(op.Len())
			switch op.Type() {
			case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
				depth2.IncRange(refPos, refPos+n)
				refPos += n
			case sam.CigarDeletion, sam.CigarSkipped:
				refPos += n
			}
		}
		return
	}

	seq := rec.Seq.Expand()
	cigar := rec.Cigar
	// first and last index of ops that consume reference bases.
	first, last := -1, -1
	for i, op := range cigar {
		if op.Type().Consumes().Reference > 0 {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return
	}

	refPos := indel.PosType(rec.Pos)
	readPos := 0
	for i := 0; i < len(cigar); i++ {
		op := cigar[i]
		n := op.Len()
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			depth.IncRange(refPos, refPos+indel.PosType(n))
			refPos += indel.PosType(n)
			readPos += n
		case sam.CigarSoftClipped:
			readPos += n
		case sam.CigarSkipped:
			refPos += indel.PosType(n)
		case sam.CigarInsertion:
			ins := insertBases(seq, readPos, n)
			readPos += n
			switch {
			case i < first:
				emit(indel.Observation{
					Key:       indel.Key{Pos: refPos, Type: indel.BreakpointRight},
					ReadName:  rec.Name,
					InsertSeq: ins,
				})
			case i > last:
				emit(indel.Observation{
					Key:       indel.Key{Pos: refPos, Type: indel.BreakpointLeft},
					ReadName:  rec.Name,
					InsertSeq: ins,
				})
			case i+1 < len(cigar) && cigar[i+1].Type() == sam.CigarDeletion:
				del := cigar[i+1].Len()
				emit(indel.Observation{
					Key:       indel.Key{Pos: refPos, Type: indel.Swap, Length: n, SwapDLength: del},
					ReadName:  rec.Name,
					InsertSeq: ins,
				})
				refPos += indel.PosType(del)
				i++
			default:
				emit(indel.Observation{
					Key:       indel.Key{Pos: refPos, Type: indel.Insert, Length: n},
					ReadName:  rec.Name,
					InsertSeq: ins,
				})
			}
		case sam.CigarDeletion:
			if i+1 < len(cigar) && cigar[i+1].Type() == sam.CigarInsertion && i+1 <= last {
				m := cigar[i+1].Len()
				emit(indel.Observation{
					Key:       indel.Key{Pos: refPos, Type: indel.Swap, Length: m, SwapDLength: n},
					ReadName:  rec.Name,
					InsertSeq: insertBases(seq, readPos, m),
				})
				readPos += m
				i++
			} else {
				emit(indel.Observation{
					Key:      indel.Key{Pos: refPos, Type: indel.Delete, Length: n},
					ReadName: rec.Name,
				})
			}
			refPos += indel.PosType(n)
		}
	}
}

// insertBases returns the n read bases starting at from, or "" when the record
// carries no sequence.
func insertBases(seq []byte, from, n int) string {
	if from+n > len(seq) {
		return ""
	}
	return string(seq[from : from+n])
}
