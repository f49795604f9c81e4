// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package indel

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// groupSample is the SyncGroup's view of one registered sample.
type groupSample struct {
	buf      *Buffer
	depth    *DepthBuffer
	depth2   *DepthBuffer
	opts     SampleOpts
	maxDepth float64
}

// SyncGroup is the registry of all samples analyzed jointly over one region.
// It is filled once with RegisterSample and read-only afterwards, apart from
// the buffers it references.
//
// A SyncGroup and its buffers must be used by one goroutine at a time.
// Independent regions should use independent groups.
type SyncGroup struct {
	samples []*groupSample
	stats   Stats
}

// NewSyncGroup creates a group with room for nSample samples.
func NewSyncGroup(nSample int) *SyncGroup {
	return &SyncGroup{samples: make([]*groupSample, nSample)}
}

// RegisterSample installs the buffers and options for sample idx.  depth holds
// the primary (tier 1) depth estimate and depth2 the secondary (tier 2) one.
// maxDepth <= 0 disables the depth ceiling for this sample.
//
// Registering an index twice, or outside [0, Len()), is a fatal error.
func (g *SyncGroup) RegisterSample(idx int, buf *Buffer, depth, depth2 *DepthBuffer, opts SampleOpts, maxDepth float64) error {
	if idx < 0 || idx >= len(g.samples) {
		return errors.E(errors.Invalid, errors.Fatal,
			fmt.Sprintf("sample index %d out of range [0, %d)", idx, len(g.samples)))
	}
	if g.samples[idx] != nil {
		return errors.E(errors.Invalid, errors.Fatal,
			fmt.Sprintf("sample index %d registered twice", idx))
	}
	if buf == nil || depth == nil || depth2 == nil {
		return errors.E(errors.Invalid, errors.Fatal,
			fmt.Sprintf("sample index %d: nil buffer", idx))
	}
	if err := opts.Validate(); err != nil {
		return errors.E(err, fmt.Sprintf("sample index %d", idx))
	}
	g.samples[idx] = &groupSample{
		buf:      buf,
		depth:    depth,
		depth2:   depth2,
		opts:     opts,
		maxDepth: maxDepth,
	}
	return nil
}

// Len returns the number of samples in the group.
func (g *SyncGroup) Len() int {
	return len(g.samples)
}

// Complete reports whether every sample index has been registered.
func (g *SyncGroup) Complete() bool {
	for _, s := range g.samples {
		if s == nil {
			return false
		}
	}
	return true
}

// Buffer returns sample idx's indel buffer.
func (g *SyncGroup) Buffer(idx int) *Buffer {
	return g.samples[idx].buf
}

// Stats returns the group's evaluation counters.
func (g *SyncGroup) Stats() *Stats {
	return &g.stats
}

// Synchronizer is one sample's handle on its SyncGroup.  It fans indel
// observations out to every sample's buffer and owns the joint candidacy
// decision, which it caches identically in every sample's Data.
type Synchronizer struct {
	group     *SyncGroup
	sampleIdx int
	opts      *Opts
	ref       RefSeq
	model     ErrorModel
}

// NewSynchronizer creates the Synchronizer for sample sampleIdx.  The group
// must be complete.
func NewSynchronizer(group *SyncGroup, sampleIdx int, opts *Opts, ref RefSeq, model ErrorModel) (*Synchronizer, error) {
	if !group.Complete() {
		return nil, errors.E(errors.Invalid, errors.Fatal, "sync group has unregistered samples")
	}
	if sampleIdx < 0 || sampleIdx >= group.Len() {
		return nil, errors.E(errors.Invalid, errors.Fatal,
			fmt.Sprintf("sample index %d out of range [0, %d)", sampleIdx, group.Len()))
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Synchronizer{
		group:     group,
		sampleIdx: sampleIdx,
		opts:      opts,
		ref:       ref,
		model:     model,
	}, nil
}

// SampleIdx returns the index of the sample this Synchronizer acts for.
func (s *Synchronizer) SampleIdx() int {
	return s.sampleIdx
}

// Buffer returns the indel buffer of this Synchronizer's sample.
func (s *Synchronizer) Buffer() *Buffer {
	return s.group.samples[s.sampleIdx].buf
}

// InsertIndel adds obs to this sample's buffer, then registers its key in
// every other sample's buffer as a synced insertion.  It returns true if the
// key was new to this sample.
func (s *Synchronizer) InsertIndel(obs Observation) bool {
	isNovel, _ := s.group.samples[s.sampleIdx].buf.Insert(obs, false)
	for i, sample := range s.group.samples {
		if i == s.sampleIdx {
			continue
		}
		sample.buf.Insert(obs, true)
	}
	return isNovel
}

// IsCandidateIndel returns the joint candidacy decision for key, where data is
// this sample's Data for key.  The first call for a key runs the test over all
// samples and stamps the result into every sample's Data; later calls from any
// sample return the cached result.
//
// A sample with no entry for key means InsertIndel was bypassed; the returned
// error is fatal.
func (s *Synchronizer) IsCandidateIndel(key Key, data *Data) (bool, error) {
	if data.Status.Evaluated() {
		return data.Status == Candidate, nil
	}
	all := make([]*Data, len(s.group.samples))
	for i, sample := range s.group.samples {
		if i == s.sampleIdx {
			all[i] = data
			continue
		}
		d := sample.buf.Lookup(key)
		if d == nil {
			return false, errors.E(errors.Integrity, errors.Fatal,
				fmt.Sprintf("indel %v: no entry in sample %d while evaluating from sample %d", key, i, s.sampleIdx))
		}
		all[i] = d
	}
	isCandidate := s.test(key, all)
	status := statusOf(isCandidate)
	for _, d := range all {
		d.Status = status
	}
	s.group.stats.Evaluated++
	if isCandidate {
		s.group.stats.Candidates++
	}
	if log.At(log.Debug) {
		log.Debug.Printf("indel %v: %v (sample %d)", key, status, s.sampleIdx)
	}
	return isCandidate, nil
}

// test runs the joint candidacy test; the first rejecting stage decides.
func (s *Synchronizer) test(key Key, all []*Data) bool {
	st := &s.group.stats
	for _, d := range all {
		if d.IsExternalCandidate {
			st.External++
			return true
		}
	}

	var insertSeq string
	if key.Type == Insert {
		insertSeq = JointInsertSeq(key, all)
	}
	ri := NewReportInfo(key, insertSeq, s.ref)
	if ri.IsHomopolymer() {
		st.HpolTested++
		if !s.passHpolNoise(key, ri, all) {
			st.HpolFail++
			return false
		}
		st.HpolPass++
	} else {
		st.GenericTested++
		if !s.passMinCount(all) {
			st.MinCountFail++
			return false
		}
		if !s.passMinFrac(key, all) {
			st.MinFracFail++
			return false
		}
	}

	// InsertSize, not InsertSeq: the sequence may still grow.
	if key.IsBreakpoint() && jointInsertSize(all) < s.opts.MinCandidateIndelOpenLength {
		st.OpenLengthFail++
		return false
	}

	pos := key.DepthPos()
	for _, sample := range s.group.samples {
		if sample.maxDepth <= 0 {
			continue
		}
		depth := float64(sample.depth.Val(pos)) + float64(sample.depth2.Val(pos))
		if depth > sample.maxDepth {
			st.MaxDepthFail++
			return false
		}
	}
	return true
}

// passHpolNoise reports whether the support in any sample is too high to be
// explained by the homopolymer's expected sequencing error rate.
func (s *Synchronizer) passHpolNoise(key Key, ri ReportInfo, all []*Data) bool {
	refErrorProb, _ := s.model.IndelErrorProb(ri)
	pos := key.DepthPos()
	for i, d := range all {
		nIndel := d.NReads()
		// Support and depth are counted differently, so support may exceed
		// depth.
		nTotal := int(s.group.samples[i].depth.Val(pos))
		if nTotal < nIndel {
			nTotal = nIndel
		}
		if IsRejectBinomialGteNSuccess(s.opts.HpolMinPValue, refErrorProb, nIndel, nTotal) {
			return true
		}
	}
	return false
}

func (s *Synchronizer) passMinCount(all []*Data) bool {
	total := 0
	for i, d := range all {
		n := d.NReads()
		if n >= s.group.samples[i].opts.MinCandidateIndelReads {
			return true
		}
		total += n
	}
	return total >= s.opts.DefaultMinCandidateIndelReads
}

func (s *Synchronizer) passMinFrac(key Key, all []*Data) bool {
	isSmall := key.MaxLength() <= s.opts.MaxSmallCandidateIndelSize
	pos := key.DepthPos()
	for i, d := range all {
		sample := s.group.samples[i]
		// The depth estimate counts reads differently from support, so the
		// fraction may exceed 1.
		depth := sample.depth.Val(pos)
		if depth < 1 {
			depth = 1
		}
		frac := float64(d.NReads()) / float64(depth)
		minFrac := s.opts.MinCandidateIndelReadFrac
		if isSmall && sample.opts.MinSmallCandidateIndelReadFrac > minFrac {
			minFrac = sample.opts.MinSmallCandidateIndelReadFrac
		}
		if frac >= minFrac {
			return true
		}
	}
	return false
}

// JointInsertSeq returns the inserted sequence the samples in all agree on for
// key, finalizing it.  Open breakpoints take the longest sequence seen in any
// sample; other keys take the sequence of the sample with the most supporting
// reads.  Ties go to the lowest sample index, so the result does not depend on
// which sample asks.
func JointInsertSeq(key Key, all []*Data) string {
	best := -1
	for i, d := range all {
		if d.InsertSize() == 0 {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := all[best]
		if key.IsBreakpoint() {
			if d.InsertSize() > b.InsertSize() {
				best = i
			}
		} else if d.NReads() > b.NReads() {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return all[best].InsertSeq()
}

// jointInsertSize returns the longest inserted sequence known in any sample
// without finalizing.
func jointInsertSize(all []*Data) int {
	n := 0
	for _, d := range all {
		if size := d.InsertSize(); size > n {
			n = size
		}
	}
	return n
}
