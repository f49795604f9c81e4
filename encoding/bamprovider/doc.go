// Package bamprovider provides utilities for reading the alignments of one
// genomic region out of an indexed BAM file, so that several regions can be
// scanned in parallel from the same file.
//
// The Provider is the interface for region reads.  BAMProvider implements it
// for *.bam files with a *.bai index, and NewFakeProvider serves in-memory
// records for tests.
package bamprovider
