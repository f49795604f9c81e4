// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package candidate

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/indelsync/indel"
)

// SampleOpts describes one jointly analyzed sample.
type SampleOpts struct {
	// Name labels the sample in the output.  Defaults to the BAM path.
	Name string
	// BAMPath is the coordinate-sorted BAM file of the sample.
	BAMPath string
	// IndexPath is the BAM index.  Defaults to BAMPath + ".bai".
	IndexPath string
	// Indel holds the sample's candidacy thresholds.
	Indel indel.SampleOpts
	// MaxDepth is the depth ceiling of the sample.  Indels whose combined
	// tier 1 and tier 2 depth exceeds it are never candidates.  <= 0 disables
	// the ceiling.
	MaxDepth float64
}

// Opts configures Run.
type Opts struct {
	// RefPath is the reference FASTA, optionally gzipped.
	RefPath string
	// Regions restricts the analysis, e.g. "chr1:1000-2000;chr2".  Empty
	// means every reference sequence.
	Regions string
	// RegionSize is the length of the independently evaluated pieces each
	// region is split into.
	RegionSize int
	// Padding is how far before a region reads are fetched.  It should be at
	// least the longest reference span of a read.
	Padding int
	// MinMapq is the minimum mapping quality of tier 1 reads, which provide
	// indel evidence and the primary depth.
	MinMapq int
	// Tier2MinMapq is the minimum mapping quality of tier 2 reads.  Reads with
	// Tier2MinMapq <= MAPQ < MinMapq only add to the secondary depth.
	Tier2MinMapq int
	// FlagExclude drops reads with any of these SAM flags set.
	FlagExclude int
	// Parallelism is the maximum number of regions evaluated at once.  <= 0
	// means one per region.
	Parallelism int
	// Indel holds the group-wide candidacy thresholds.
	Indel indel.Opts
	// Samples lists the jointly analyzed samples, in output order.
	Samples []SampleOpts
	// KnownIndelsPath is an optional VCF of indels that are always candidates.
	KnownIndelsPath string
	// ErrorModelPath is an optional error-rate table (see
	// indel.ReadErrorModel).  The built-in model is used when empty.
	ErrorModelPath string
	// OutputPath receives one TSV row per (indel, sample).  A ".gz" suffix
	// selects bgzip compression.
	OutputPath string
	// StatsPath optionally receives the evaluation counters.
	StatsPath string
}

// DefaultOpts holds the default driver settings.
var DefaultOpts = Opts{
	RegionSize:   1000000,
	Padding:      1000,
	MinMapq:      20,
	Tier2MinMapq: 0,
	FlagExclude:  0xf04,
	Indel:        indel.DefaultOpts,
}

// Validate checks opts and fills in defaulted sample fields.
func (o *Opts) Validate() error {
	if len(o.Samples) == 0 {
		return errors.E(errors.Invalid, "no samples")
	}
	if o.RefPath == "" {
		return errors.E(errors.Invalid, "no reference path")
	}
	if o.OutputPath == "" {
		return errors.E(errors.Invalid, "no output path")
	}
	if o.Padding < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("negative padding: %d", o.Padding))
	}
	if o.MinMapq < 0 || o.MinMapq > 255 || o.Tier2MinMapq < 0 || o.Tier2MinMapq > 255 {
		return errors.E(errors.Invalid, fmt.Sprintf("mapq thresholds out of [0, 255]: %d, %d", o.MinMapq, o.Tier2MinMapq))
	}
	if err := o.Indel.Validate(); err != nil {
		return err
	}
	names := make(map[string]bool)
	for i := range o.Samples {
		s := &o.Samples[i]
		if s.BAMPath == "" {
			return errors.E(errors.Invalid, fmt.Sprintf("sample %d: no BAM path", i))
		}
		if s.Name == "" {
			s.Name = s.BAMPath
		}
		if names[s.Name] {
			return errors.E(errors.Invalid, fmt.Sprintf("duplicate sample name %s", s.Name))
		}
		names[s.Name] = true
		if err := s.Indel.Validate(); err != nil {
			return errors.E(err, fmt.Sprintf("sample %s", s.Name))
		}
	}
	return nil
}
