// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package candidate

import (
	"context"
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/indelsync/encoding/bamprovider"
	"github.com/grailbio/indelsync/encoding/fasta"
	"github.com/grailbio/indelsync/encoding/vcf"
	"github.com/grailbio/indelsync/indel"
	"github.com/grailbio/indelsync/interval"
)

// newProvider opens the alignments of a sample.  Tests replace it.
var newProvider = func(s *SampleOpts) bamprovider.Provider {
	return bamprovider.NewProvider(s.BAMPath, bamprovider.ProviderOpts{Index: s.IndexPath})
}

// refContext is how far beyond the read padding reference bases are loaded,
// so that repeat tracts extending out of a region are counted in full.
const refContext = 1000

// Run evaluates every indel in opts.Samples jointly and writes the per-sample
// decisions to opts.OutputPath.  It returns the merged evaluation counters.
func Run(ctx context.Context, opts Opts) (stats indel.Stats, err error) {
	if err = opts.Validate(); err != nil {
		return
	}
	var ref fasta.Fasta
	if ref, err = fasta.Open(ctx, opts.RefPath); err != nil {
		return
	}
	var regions []interval.Entry
	if regions, err = splitRegions(ref, opts.Regions, opts.RegionSize); err != nil {
		return
	}
	var known map[string][]vcf.Indel
	if opts.KnownIndelsPath != "" {
		var indels []vcf.Indel
		if indels, err = vcf.Open(ctx, opts.KnownIndelsPath, interval.Entry{}); err != nil {
			return
		}
		known = groupByRef(indels)
		log.Printf("loaded %d known indels from %s", len(indels), opts.KnownIndelsPath)
	}
	var model indel.ErrorModel = indel.DefaultErrorModel()
	if opts.ErrorModelPath != "" {
		if model, err = loadErrorModel(ctx, opts.ErrorModelPath); err != nil {
			return
		}
	}

	sources := make([]source, len(opts.Samples))
	for i := range opts.Samples {
		s := &opts.Samples[i]
		sources[i] = source{opts: s, provider: newProvider(s)}
	}
	defer func() {
		for _, src := range sources {
			if e := src.provider.Close(); e != nil && err == nil {
				err = e
			}
		}
	}()

	var results []regionResult
	if results, err = evaluateRegions(regions, ref, known, sources, &opts, model); err != nil {
		return
	}
	for _, r := range results {
		stats.Add(r.stats)
	}
	log.Printf("evaluated %d indels in %d regions: %d candidates", stats.Evaluated, len(regions), stats.Candidates)
	if err = writeRows(ctx, opts.OutputPath, results); err != nil {
		return
	}
	if opts.StatsPath != "" {
		err = WriteStats(ctx, opts.StatsPath, stats)
	}
	return
}

// evaluateRegions runs processRegion over regions on up to opts.Parallelism
// goroutines, each owning a contiguous slice of regions.  Results are returned
// in region order.
func evaluateRegions(regions []interval.Entry, ref fasta.Fasta, known map[string][]vcf.Indel,
	sources []source, opts *Opts, model indel.ErrorModel) ([]regionResult, error) {
	nRegion := len(regions)
	results := make([]regionResult, nRegion)
	if nRegion == 0 {
		return results, nil
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 || parallelism > nRegion {
		parallelism = nRegion
	}
	log.Printf("evaluating %d regions (%d jobs)", nRegion, parallelism)
	err := traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * nRegion) / parallelism
		endIdx := ((jobIdx + 1) * nRegion) / parallelism
		for i := startIdx; i < endIdx; i++ {
			region := regions[i]
			refSeq, err := loadRef(ref, region, opts.Padding+refContext)
			if err != nil {
				return err
			}
			r, err := processRegion(region, refSeq, known[region.RefName], sources, opts, model)
			if err != nil {
				return err
			}
			results[i] = r
		}
		return nil
	})
	return results, err
}

// splitRegions parses the region list (every reference sequence when empty),
// clips each region to its contig, and splits it into pieces of regionSize.
func splitRegions(ref fasta.Fasta, regionStr string, regionSize int) ([]interval.Entry, error) {
	var regions []interval.Entry
	if regionStr == "" {
		for _, name := range ref.SeqNames() {
			regions = append(regions, interval.Entry{RefName: name, Start0: 0, End: interval.PosTypeMax - 1})
		}
	} else {
		var err error
		if regions, err = interval.ParseRegionStrings(regionStr); err != nil {
			return nil, err
		}
	}
	var pieces []interval.Entry
	for _, r := range regions {
		refLen, err := ref.Len(r.RefName)
		if err != nil {
			return nil, errors.E(errors.NotExist, fmt.Sprintf("region %v", r), err)
		}
		r = r.Clip(interval.PosType(refLen))
		if r.Start0 >= r.End {
			continue
		}
		pieces = append(pieces, r.Split(interval.PosType(regionSize))...)
	}
	return pieces, nil
}

// loadRef returns the reference bases of region extended by pad on each side.
func loadRef(ref fasta.Fasta, region interval.Entry, pad int) (indel.StringRef, error) {
	refLen, err := ref.Len(region.RefName)
	if err != nil {
		return indel.StringRef{}, err
	}
	start := int64(region.Start0) - int64(pad)
	if start < 0 {
		start = 0
	}
	end := int64(region.End) + int64(pad)
	if end > int64(refLen) {
		end = int64(refLen)
	}
	if start >= end {
		return indel.StringRef{Offset: interval.PosType(start)}, nil
	}
	seq, err := ref.Get(region.RefName, uint64(start), uint64(end))
	if err != nil {
		return indel.StringRef{}, err
	}
	return indel.StringRef{Seq: seq, Offset: interval.PosType(start)}, nil
}

func groupByRef(indels []vcf.Indel) map[string][]vcf.Indel {
	m := make(map[string][]vcf.Indel)
	for _, k := range indels {
		m[k.RefName] = append(m[k.RefName], k)
	}
	for _, v := range m {
		sort.SliceStable(v, func(i, j int) bool { return v[i].Pos < v[j].Pos })
	}
	return m
}

func loadErrorModel(ctx context.Context, path string) (m *indel.TableErrorModel, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, in, &err)
	if m, err = indel.ReadErrorModel(in.Reader(ctx)); err != nil {
		err = errors.E(err, path)
	}
	return
}
