// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
bio-indel-candidates decides which indels are candidates for variant calling
when several samples of one individual are analyzed together.  Every indel
seen in any sample is evaluated once against the evidence of all samples, so
the samples always agree on the candidate set.

Sample usage:
bio-indel-candidates candidates \
    -ref hg19.fa \
    -names tumor,normal \
    -known-indels known.vcf.gz \
    -out candidates.tsv.gz \
    tumor.bam normal.bam

The output has one row per (indel, sample), with the sample's supporting read
count, its depths, and the shared decision.

bio-indel-candidates error-model out.tsv writes the built-in homopolymer error
rates, as a starting point for a custom -error-model table.
*/
package main
