// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package indel

import (
	"blainsmith.com/go/seahash"
	gunsafe "github.com/grailbio/base/unsafe"
)

// Status is the cached candidacy decision for an indel.  It moves from
// Unevaluated to one of the two terminal values exactly once.
type Status uint8

const (
	// Unevaluated means the joint candidacy test has not run yet.
	Unevaluated Status = iota
	// Candidate means the indel is promoted to genotyping in every sample.
	Candidate
	// NotCandidate means the indel was rejected in every sample.
	NotCandidate
)

var statusNames = [...]string{"unevaluated", "candidate", "not-candidate"}

func (s Status) String() string {
	return statusNames[s]
}

// Evaluated reports whether the candidacy test has been run.
func (s Status) Evaluated() bool {
	return s != Unevaluated
}

func statusOf(isCandidate bool) Status {
	if isCandidate {
		return Candidate
	}
	return NotCandidate
}

// Data is the evidence one sample holds for one indel.
type Data struct {
	// readIDs holds the seahash of each supporting read name seen in this
	// sample.
	readIDs map[uint64]struct{}
	// nSynced counts insertions of this indel made on behalf of other samples.
	nSynced int
	// IsExternalCandidate is set once any observation declares the indel
	// externally.
	IsExternalCandidate bool
	// Status is the cached joint decision.  Only Synchronizer writes it.
	Status Status

	insertSeq insertSeqManager
}

func newData() *Data {
	return &Data{readIDs: make(map[uint64]struct{})}
}

// NReads returns the number of distinct reads supporting the indel in this
// sample.
func (d *Data) NReads() int {
	return len(d.readIDs)
}

// NSynced returns the number of times the indel was inserted into this sample
// because another sample observed it.
func (d *Data) NSynced() int {
	return d.nSynced
}

// InsertSize returns the length of the inserted sequence known so far.  It
// does not finalize the sequence, so later observations may still extend it.
func (d *Data) InsertSize() int {
	return d.insertSeq.size()
}

// InsertSeq returns the consensus inserted sequence, finalizing it.
func (d *Data) InsertSeq() string {
	return d.insertSeq.finalize()
}

// addRead records readName as support, reporting false if it was already
// present.
func (d *Data) addRead(readName string) bool {
	id := readID(readName)
	if _, ok := d.readIDs[id]; ok {
		return false
	}
	d.readIDs[id] = struct{}{}
	return true
}

func readID(readName string) uint64 {
	return seahash.Sum64(gunsafe.StringToBytes(readName))
}

// insertSeqManager accumulates the inserted sequences seen for one indel and
// settles on a consensus when first asked for the sequence.
type insertSeqManager struct {
	obs       map[string]int
	consensus string
	done      bool
	// breakpoint consensus is the longest observation, since each read sees
	// only part of an open-ended insertion.
	breakpoint bool
}

func (m *insertSeqManager) add(seq string, breakpoint bool) {
	if seq == "" || m.done {
		return
	}
	if m.obs == nil {
		m.obs = make(map[string]int)
		m.breakpoint = breakpoint
	}
	m.obs[seq]++
}

func (m *insertSeqManager) size() int {
	if m.done {
		return len(m.consensus)
	}
	n := 0
	for seq := range m.obs {
		if len(seq) > n {
			n = len(seq)
		}
	}
	return n
}

func (m *insertSeqManager) finalize() string {
	if m.done {
		return m.consensus
	}
	best, bestCount := "", 0
	for seq, count := range m.obs {
		if m.better(seq, count, best, bestCount) {
			best, bestCount = seq, count
		}
	}
	m.consensus = best
	m.done = true
	m.obs = nil
	return best
}

// better orders candidate consensus sequences.  Ties fall through to lexical
// order so the choice doesn't depend on map iteration.
func (m *insertSeqManager) better(seq string, count int, best string, bestCount int) bool {
	if bestCount == 0 {
		return true
	}
	if m.breakpoint && len(seq) != len(best) {
		return len(seq) > len(best)
	}
	if count != bestCount {
		return count > bestCount
	}
	return seq < best
}
