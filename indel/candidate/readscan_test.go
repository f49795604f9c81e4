// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package candidate

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/indelsync/indel"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

var (
	chr1, _   = sam.NewReference("chr1", "", "", 1000, nil, nil)
	header, _ = sam.NewHeader(nil, []*sam.Reference{chr1})
)

func newRecord(t *testing.T, name string, pos int, mapq byte, cigar []sam.CigarOp, seq string) *sam.Record {
	r, err := sam.NewRecord(name, chr1, nil, pos, -1, 0, mapq, cigar, []byte(seq), nil, nil)
	assert.NoError(t, err)
	return r
}

func collect(rec *sam.Record, opts *Opts) ([]indel.Observation, *indel.DepthBuffer, *indel.DepthBuffer) {
	depth, depth2 := indel.NewDepthBuffer(), indel.NewDepthBuffer()
	var obs []indel.Observation
	observeRecord(rec, opts, depth, depth2, func(o indel.Observation) {
		obs = append(obs, o)
	})
	return obs, depth, depth2
}

func TestObserveRecord(t *testing.T) {
	opts := DefaultOpts
	for _, tt := range []struct {
		name  string
		cigar []sam.CigarOp
		seq   string
		want  []indel.Observation
	}{
		{
			"insert",
			[]sam.CigarOp{
				sam.NewCigarOp(sam.CigarMatch, 4),
				sam.NewCigarOp(sam.CigarInsertion, 2),
				sam.NewCigarOp(sam.CigarMatch, 4),
			},
			"ACGTTTACGT",
			[]indel.Observation{
				{Key: indel.Key{Pos: 104, Type: indel.Insert, Length: 2}, ReadName: "r", InsertSeq: "TT"},
			},
		},
		{
			"delete after soft clip",
			[]sam.CigarOp{
				sam.NewCigarOp(sam.CigarSoftClipped, 3),
				sam.NewCigarOp(sam.CigarMatch, 4),
				sam.NewCigarOp(sam.CigarDeletion, 3),
				sam.NewCigarOp(sam.CigarMatch, 4),
			},
			"NNNACGTACGT",
			[]indel.Observation{
				{Key: indel.Key{Pos: 104, Type: indel.Delete, Length: 3}, ReadName: "r"},
			},
		},
		{
			"swap",
			[]sam.CigarOp{
				sam.NewCigarOp(sam.CigarMatch, 4),
				sam.NewCigarOp(sam.CigarDeletion, 3),
				sam.NewCigarOp(sam.CigarInsertion, 1),
				sam.NewCigarOp(sam.CigarMatch, 4),
			},
			"ACGTGACGT",
			[]indel.Observation{
				{Key: indel.Key{Pos: 104, Type: indel.Swap, Length: 1, SwapDLength: 3}, ReadName: "r", InsertSeq: "G"},
			},
		},
		{
			"swap insert first",
			[]sam.CigarOp{
				sam.NewCigarOp(sam.CigarMatch, 4),
				sam.NewCigarOp(sam.CigarInsertion, 2),
				sam.NewCigarOp(sam.CigarDeletion, 1),
				sam.NewCigarOp(sam.CigarMatch, 4),
			},
			"ACGTCCACGT",
			[]indel.Observation{
				{Key: indel.Key{Pos: 104, Type: indel.Swap, Length: 2, SwapDLength: 1}, ReadName: "r", InsertSeq: "CC"},
			},
		},
		{
			"breakpoints",
			[]sam.CigarOp{
				sam.NewCigarOp(sam.CigarInsertion, 3),
				sam.NewCigarOp(sam.CigarMatch, 4),
				sam.NewCigarOp(sam.CigarInsertion, 2),
				sam.NewCigarOp(sam.CigarSoftClipped, 1),
			},
			"GGGACGTAAN",
			[]indel.Observation{
				{Key: indel.Key{Pos: 100, Type: indel.BreakpointRight}, ReadName: "r", InsertSeq: "GGG"},
				{Key: indel.Key{Pos: 104, Type: indel.BreakpointLeft}, ReadName: "r", InsertSeq: "AA"},
			},
		},
		{
			"no sequence",
			[]sam.CigarOp{
				sam.NewCigarOp(sam.CigarMatch, 4),
				sam.NewCigarOp(sam.CigarInsertion, 2),
				sam.NewCigarOp(sam.CigarMatch, 4),
			},
			"",
			[]indel.Observation{
				{Key: indel.Key{Pos: 104, Type: indel.Insert, Length: 2}, ReadName: "r"},
			},
		},
	} {
		obs, _, _ := collect(newRecord(t, "r", 100, 60, tt.cigar, tt.seq), &opts)
		expect.EQ(t, obs, tt.want, tt.name)
	}
}

func TestObserveRecordDepth(t *testing.T) {
	opts := DefaultOpts
	opts.MinMapq = 30
	opts.Tier2MinMapq = 10
	cigar := []sam.CigarOp{
		sam.NewCigarOp(sam.CigarMatch, 3),
		sam.NewCigarOp(sam.CigarDeletion, 2),
		sam.NewCigarOp(sam.CigarMatch, 3),
	}

	obs, depth, depth2 := collect(newRecord(t, "t1", 10, 30, cigar, "ACGTAC"), &opts)
	expect.EQ(t, len(obs), 1)
	for pos, want := range map[indel.PosType]uint32{9: 0, 10: 1, 12: 1, 13: 0, 14: 0, 15: 1, 17: 1, 18: 0} {
		expect.EQ(t, depth.Val(pos), want, "pos=%d", pos)
		expect.EQ(t, depth2.Val(pos), uint32(0), "pos=%d", pos)
	}

	obs, depth, depth2 = collect(newRecord(t, "t2", 10, 20, cigar, "ACGTAC"), &opts)
	expect.EQ(t, len(obs), 0)
	expect.EQ(t, depth.Val(10), uint32(0))
	expect.EQ(t, depth2.Val(10), uint32(1))
	expect.EQ(t, depth2.Val(16), uint32(1))
	expect.EQ(t, depth2.Val(13), uint32(0))

	obs, depth, depth2 = collect(newRecord(t, "t3", 10, 5, cigar, "ACGTAC"), &opts)
	expect.EQ(t, len(obs), 0)
	expect.EQ(t, depth.Val(10)+depth2.Val(10), uint32(0))

	dup := newRecord(t, "t4", 10, 60, cigar, "ACGTAC")
	dup.Flags |= sam.Duplicate
	obs, depth, _ = collect(dup, &opts)
	expect.EQ(t, len(obs), 0)
	expect.EQ(t, depth.Val(10), uint32(0))
}
