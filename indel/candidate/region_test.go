// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package candidate

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/indelsync/encoding/bamprovider"
	"github.com/grailbio/indelsync/indel"
	"github.com/grailbio/indelsync/interval"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestProcessRegionSupportOnlyInLaterSample(t *testing.T) {
	// Five normal reads insert a T into the TT at 303-304; the tumor has none.
	var normal []*sam.Record
	for _, name := range []string{"n0", "n1", "n2", "n3", "n4"} {
		normal = append(normal, newRecord(t, name, 290, 60,
			[]sam.CigarOp{matchOp(14), sam.NewCigarOp(sam.CigarInsertion, 1), matchOp(6)},
			testRef[290:304]+"T"+testRef[304:310]))
	}
	// Generic thresholds no indel here can meet, so only the homopolymer
	// test can promote it.
	strict := indel.SampleOpts{MinCandidateIndelReads: 100, MinSmallCandidateIndelReadFrac: 1}
	samples := []SampleOpts{
		{Name: "tumor", Indel: strict},
		{Name: "normal", Indel: strict},
	}
	sources := []source{
		{opts: &samples[0], provider: bamprovider.NewFakeProvider(header, nil)},
		{opts: &samples[1], provider: bamprovider.NewFakeProvider(header, normal)},
	}
	opts := DefaultOpts
	opts.Padding = 50
	opts.Indel.DefaultMinCandidateIndelReads = 100
	opts.Indel.MinCandidateIndelReadFrac = 1

	region := interval.Entry{RefName: "chr1", Start0: 250, End: 350}
	res, err := processRegion(region, indel.StringRef{Seq: testRef}, nil, sources, &opts, indel.DefaultErrorModel())
	assert.NoError(t, err)
	key := indel.Key{Pos: 304, Type: indel.Insert, Length: 1}
	expect.EQ(t, res.rows, []Row{
		{RefName: "chr1", Key: key, InsertSeq: "T", Sample: "tumor", Candidate: true},
		{RefName: "chr1", Key: key, InsertSeq: "T", Sample: "normal", Reads: 5, Depth: 5, Candidate: true},
	})
	expect.EQ(t, res.stats.HpolPass, int64(1))
	expect.EQ(t, res.stats.GenericTested, int64(0))
}
