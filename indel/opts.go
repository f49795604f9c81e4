// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package indel

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Opts holds the group-wide candidacy thresholds.
type Opts struct {
	// DefaultMinCandidateIndelReads is the minimum number of supporting reads,
	// summed over all samples, for an indel to pass the read count test when
	// no single sample meets its own minimum.
	DefaultMinCandidateIndelReads int
	// MinCandidateIndelReadFrac is the minimum supporting-read fraction of the
	// local depth for indels longer than MaxSmallCandidateIndelSize, and the
	// floor for small indels.
	MinCandidateIndelReadFrac float64
	// MaxSmallCandidateIndelSize is the largest indel length subject to the
	// per-sample small-indel read fraction.
	MaxSmallCandidateIndelSize int
	// MinCandidateIndelOpenLength is the minimum known inserted length of an
	// open-ended breakpoint.
	MinCandidateIndelOpenLength int
	// HpolMinPValue is the significance level of the homopolymer noise test.
	// Support counts whose binomial upper-tail p-value falls below it are too
	// high to be explained by sequencing error.
	HpolMinPValue float64
}

// SampleOpts holds the per-sample candidacy thresholds.
type SampleOpts struct {
	// MinCandidateIndelReads is the number of supporting reads in this sample
	// alone that passes the read count test.
	MinCandidateIndelReads int
	// MinSmallCandidateIndelReadFrac is this sample's minimum read fraction for
	// small indels.  The effective threshold is the larger of this and
	// Opts.MinCandidateIndelReadFrac.
	MinSmallCandidateIndelReadFrac float64
}

// DefaultOpts are the default group-wide thresholds.
var DefaultOpts = Opts{
	DefaultMinCandidateIndelReads: 3,
	MinCandidateIndelReadFrac:     0.02,
	MaxSmallCandidateIndelSize:    4,
	MinCandidateIndelOpenLength:   20,
	HpolMinPValue:                 1e-9,
}

// DefaultSampleOpts are the default per-sample thresholds.
var DefaultSampleOpts = SampleOpts{
	MinCandidateIndelReads:         2,
	MinSmallCandidateIndelReadFrac: 0.1,
}

// Validate checks that the thresholds are usable.
func (o *Opts) Validate() error {
	if o.DefaultMinCandidateIndelReads < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("negative default min candidate indel reads: %v", o.DefaultMinCandidateIndelReads))
	}
	if o.MinCandidateIndelReadFrac < 0 || o.MinCandidateIndelReadFrac > 1 {
		return errors.E(errors.Invalid, fmt.Sprintf("min candidate indel read frac out of [0, 1]: %v", o.MinCandidateIndelReadFrac))
	}
	if o.MaxSmallCandidateIndelSize < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("negative max small candidate indel size: %v", o.MaxSmallCandidateIndelSize))
	}
	if o.MinCandidateIndelOpenLength < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("negative min candidate indel open length: %v", o.MinCandidateIndelOpenLength))
	}
	if o.HpolMinPValue <= 0 || o.HpolMinPValue >= 1 {
		return errors.E(errors.Invalid, fmt.Sprintf("homopolymer p-value threshold out of (0, 1): %v", o.HpolMinPValue))
	}
	return nil
}

// Validate checks that the thresholds are usable.
func (o *SampleOpts) Validate() error {
	if o.MinCandidateIndelReads < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("negative min candidate indel reads: %v", o.MinCandidateIndelReads))
	}
	if o.MinSmallCandidateIndelReadFrac < 0 || o.MinSmallCandidateIndelReadFrac > 1 {
		return errors.E(errors.Invalid, fmt.Sprintf("min small candidate indel read frac out of [0, 1]: %v", o.MinSmallCandidateIndelReadFrac))
	}
	return nil
}
