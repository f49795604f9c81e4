// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/indelsync/indel"
	"github.com/grailbio/indelsync/indel/candidate"
	"v.io/x/lib/cmdline"
)

func newCmdCandidates() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "candidates",
		Short:    "Jointly evaluate the indels of several samples",
		ArgsName: "bampath...",
	}
	defaults := candidate.DefaultOpts
	var (
		refPath      = cmd.Flags.String("ref", "", "Reference FASTA path (required)")
		regions      = cmd.Flags.String("region", "", "Restrict evaluation to these regions, separated by ';'. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>")
		regionSize   = cmd.Flags.Int("region-size", defaults.RegionSize, "Length of the pieces each region is split into for parallel evaluation")
		padding      = cmd.Flags.Int("padding", defaults.Padding, "Reads starting this far before a region are scanned; at least the longest read span")
		mapq         = cmd.Flags.Int("mapq", defaults.MinMapq, "Reads with MAPQ below this level only count toward the secondary depth")
		mapq2        = cmd.Flags.Int("mapq2", defaults.Tier2MinMapq, "Reads with MAPQ below this level are skipped")
		flagExclude  = cmd.Flags.Int("flag-exclude", defaults.FlagExclude, "Reads with a FLAG bit intersecting this value are skipped")
		parallelism  = cmd.Flags.Int("parallelism", runtime.NumCPU(), "Maximum number of regions evaluated at once")
		names        = cmd.Flags.String("names", "", "Comma-separated sample names, one per BAM. Defaults to the BAM paths")
		indexes      = cmd.Flags.String("index", "", "Comma-separated BAM index paths, one per BAM. Defaults to bampath + .bai")
		maxDepths    = cmd.Flags.String("max-depth", "", "Comma-separated depth ceilings, one per BAM, or one for all. 0 disables the ceiling")
		minReads     = cmd.Flags.Int("min-reads", indel.DefaultSampleOpts.MinCandidateIndelReads, "Minimum supporting reads in one sample")
		minSmallFrac = cmd.Flags.Float64("min-small-frac", indel.DefaultSampleOpts.MinSmallCandidateIndelReadFrac, "Minimum supporting read fraction of small indels in one sample")
		minTotal     = cmd.Flags.Int("min-total-reads", defaults.Indel.DefaultMinCandidateIndelReads, "Minimum supporting reads summed over all samples")
		minFrac      = cmd.Flags.Float64("min-frac", defaults.Indel.MinCandidateIndelReadFrac, "Minimum supporting read fraction in one sample")
		maxSmall     = cmd.Flags.Int("max-small-size", defaults.Indel.MaxSmallCandidateIndelSize, "Indels up to this length are small")
		minOpen      = cmd.Flags.Int("min-open-length", defaults.Indel.MinCandidateIndelOpenLength, "Minimum inserted bases seen for an open breakpoint")
		hpolPValue   = cmd.Flags.Float64("hpol-pvalue", defaults.Indel.HpolMinPValue, "Homopolymer indels need support with a noise p-value below this in some sample")
		knownIndels  = cmd.Flags.String("known-indels", "", "VCF of indels that are always candidates")
		errorModel   = cmd.Flags.String("error-model", "", "Homopolymer error rate table. Defaults to the built-in rates")
		outPath      = cmd.Flags.String("out", "", "Output TSV path; a .gz suffix selects bgzip (required)")
		statsPath    = cmd.Flags.String("stats", "", "Optional path for the evaluation counters")
	)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("candidates takes one or more BAM paths")
		}
		sampleNames, err := splitList(*names, len(argv), "names")
		if err != nil {
			return err
		}
		indexPaths, err := splitList(*indexes, len(argv), "index")
		if err != nil {
			return err
		}
		depths, err := parseMaxDepths(*maxDepths, len(argv))
		if err != nil {
			return err
		}
		opts := candidate.DefaultOpts
		opts.RefPath = *refPath
		opts.Regions = *regions
		opts.RegionSize = *regionSize
		opts.Padding = *padding
		opts.MinMapq = *mapq
		opts.Tier2MinMapq = *mapq2
		opts.FlagExclude = *flagExclude
		opts.Parallelism = *parallelism
		opts.Indel = indel.Opts{
			DefaultMinCandidateIndelReads: *minTotal,
			MinCandidateIndelReadFrac:     *minFrac,
			MaxSmallCandidateIndelSize:    *maxSmall,
			MinCandidateIndelOpenLength:   *minOpen,
			HpolMinPValue:                 *hpolPValue,
		}
		opts.KnownIndelsPath = *knownIndels
		opts.ErrorModelPath = *errorModel
		opts.OutputPath = *outPath
		opts.StatsPath = *statsPath
		for i, path := range argv {
			opts.Samples = append(opts.Samples, candidate.SampleOpts{
				Name:      sampleNames[i],
				BAMPath:   path,
				IndexPath: indexPaths[i],
				Indel: indel.SampleOpts{
					MinCandidateIndelReads:         *minReads,
					MinSmallCandidateIndelReadFrac: *minSmallFrac,
				},
				MaxDepth: depths[i],
			})
		}
		stats, err := candidate.Run(vcontext.Background(), opts)
		if err != nil {
			return err
		}
		log.Printf("%d of %d indels are candidates", stats.Candidates, stats.Evaluated)
		return nil
	})
	return cmd
}

func newCmdErrorModel() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "error-model",
		Short:    "Write the built-in homopolymer error rate table",
		ArgsName: "path",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("error-model takes one pathname argument, but got %v", argv)
		}
		return writeErrorModel(vcontext.Background(), argv[0])
	})
	return cmd
}

func writeErrorModel(ctx context.Context, path string) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, out, &err)
	_, err = indel.DefaultErrorModel().WriteTo(out.Writer(ctx))
	return
}

// splitList splits a comma-separated per-sample flag.  An empty flag yields n
// empty values.
func splitList(s string, n int, flagName string) ([]string, error) {
	if s == "" {
		return make([]string, n), nil
	}
	vals := strings.Split(s, ",")
	if len(vals) != n {
		return nil, fmt.Errorf("-%s has %d values, but there are %d BAMs", flagName, len(vals), n)
	}
	return vals, nil
}

func parseMaxDepths(s string, n int) ([]float64, error) {
	depths := make([]float64, n)
	if s == "" {
		return depths, nil
	}
	vals := strings.Split(s, ",")
	if len(vals) != 1 && len(vals) != n {
		return nil, fmt.Errorf("-max-depth has %d values, but there are %d BAMs", len(vals), n)
	}
	for i := range depths {
		v := vals[0]
		if len(vals) == n {
			v = vals[i]
		}
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("-max-depth: %v", err)
		}
		depths[i] = d
	}
	return depths, nil
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-indel-candidates",
			Short:    "Joint indel candidacy for multi-sample analyses",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdCandidates(),
				newCmdErrorModel(),
			},
		})
}
