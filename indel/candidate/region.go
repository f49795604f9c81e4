// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package candidate

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/indelsync/encoding/bamprovider"
	"github.com/grailbio/indelsync/encoding/vcf"
	"github.com/grailbio/indelsync/indel"
	"github.com/grailbio/indelsync/interval"
)

// Row is the decision for one indel in one sample.
type Row struct {
	RefName   string
	Key       indel.Key
	InsertSeq string
	Sample    string
	Reads     int
	Depth     uint32
	Depth2    uint32
	Candidate bool
}

// source is one sample's input to a region evaluation.
type source struct {
	opts     *SampleOpts
	provider bamprovider.Provider
}

// regionResult holds the rows of one region, in (key, sample) order.
type regionResult struct {
	rows  []Row
	stats indel.Stats
}

// processRegion evaluates every indel whose position lies in region.  Known
// indels are inserted as external candidates before any reads.  All state is
// local to the call, so regions can be processed concurrently.
func processRegion(region interval.Entry, ref indel.RefSeq, known []vcf.Indel, sources []source, opts *Opts, model indel.ErrorModel) (regionResult, error) {
	n := len(sources)
	group := indel.NewSyncGroup(n)
	depths := make([]*indel.DepthBuffer, n)
	depths2 := make([]*indel.DepthBuffer, n)
	for i, src := range sources {
		depths[i] = indel.NewDepthBuffer()
		depths2[i] = indel.NewDepthBuffer()
		if err := group.RegisterSample(i, indel.NewBuffer(), depths[i], depths2[i], src.opts.Indel, src.opts.MaxDepth); err != nil {
			return regionResult{}, err
		}
	}
	syncs := make([]*indel.Synchronizer, n)
	for i := range sources {
		var err error
		if syncs[i], err = indel.NewSynchronizer(group, i, &opts.Indel, ref, model); err != nil {
			return regionResult{}, err
		}
	}

	for _, k := range known {
		if !region.Contains(k.Pos) {
			continue
		}
		syncs[0].InsertIndel(indel.Observation{
			Key:                 knownKey(k),
			InsertSeq:           k.InsertSeq,
			IsExternalCandidate: true,
		})
	}

	for i, src := range sources {
		iter := src.provider.NewIterator(region, opts.Padding)
		nRec := 0
		for iter.Scan() {
			rec := iter.Record()
			observeRecord(rec, opts, depths[i], depths2[i], func(obs indel.Observation) {
				syncs[i].InsertIndel(obs)
			})
			sam.PutInFreePool(rec)
			nRec++
		}
		if err := iter.Close(); err != nil {
			return regionResult{}, errors.E(err, fmt.Sprintf("%s: %v", src.opts.Name, region))
		}
		log.Debug.Printf("%v: sample %s: %d records, %d indels", region, src.opts.Name, nRec, group.Buffer(i).Len())
	}

	var (
		res     regionResult
		evalErr error
	)
	group.Buffer(0).DoRange(region.Start0, region.End, func(key indel.Key, _ *indel.Data) bool {
		all := make([]*indel.Data, n)
		for i, src := range sources {
			if all[i] = group.Buffer(i).Lookup(key); all[i] == nil {
				evalErr = errors.E(errors.Integrity, errors.Fatal,
					fmt.Sprintf("indel %v: no entry in sample %s", key, src.opts.Name))
				return true
			}
		}
		isCandidate, err := syncs[0].IsCandidateIndel(key, all[0])
		if err != nil {
			evalErr = err
			return true
		}
		insertSeq := ""
		if key.Type != indel.Delete {
			insertSeq = indel.JointInsertSeq(key, all)
		}
		pos := key.DepthPos()
		for i, src := range sources {
			d := all[i]
			// Every sample sees the cached decision.
			c, err := syncs[i].IsCandidateIndel(key, d)
			if err != nil {
				evalErr = err
				return true
			}
			if c != isCandidate {
				evalErr = errors.E(errors.Integrity, errors.Fatal,
					fmt.Sprintf("indel %v: inconsistent decision in sample %s", key, src.opts.Name))
				return true
			}
			res.rows = append(res.rows, Row{
				RefName:   region.RefName,
				Key:       key,
				InsertSeq: insertSeq,
				Sample:    src.opts.Name,
				Reads:     d.NReads(),
				Depth:     depths[i].Val(pos),
				Depth2:    depths2[i].Val(pos),
				Candidate: isCandidate,
			})
		}
		return false
	})
	if evalErr != nil {
		return regionResult{}, evalErr
	}
	res.stats = *group.Stats()
	return res, nil
}

func knownKey(k vcf.Indel) indel.Key {
	switch k.Type {
	case vcf.Insertion:
		return indel.Key{Pos: k.Pos, Type: indel.Insert, Length: k.Length}
	case vcf.Deletion:
		return indel.Key{Pos: k.Pos, Type: indel.Delete, Length: k.Length}
	}
	return indel.Key{Pos: k.Pos, Type: indel.Swap, Length: k.Length, SwapDLength: k.SwapDLength}
}
