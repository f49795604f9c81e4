package bamprovider

import (
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/indelsync/interval"
)

// Provider allows reading regions of a BAM file in parallel. Thread safe.
type Provider interface {
	// GetHeader returns the header for the provided BAM data.  The callee
	// must not modify the returned header object.
	//
	// REQUIRES: Close has not been called.
	GetHeader() (*sam.Header, error)

	// NewIterator returns an iterator over the mapped records on
	// region.RefName whose alignment start lies in
	// [region.Start0-padding, region.End).  Records starting up to padding
	// bases before the region may still overlap it.  A region on a
	// reference absent from the header yields no records and no error.
	//
	// REQUIRES: Close has not been called.
	NewIterator(region interval.Entry, padding int) Iterator

	// Close must be called exactly once. It returns any error encountered
	// by the provider, or any iterator created by the provider.
	//
	// REQUIRES: All the iterators created by NewIterator have been closed.
	Close() error
}

// Iterator iterates over sam.Records in a particular genomic range, in
// coordinate order. Thread compatible.
type Iterator interface {
	// Scan returns where there are any records remaining in the iterator,
	// and if so, advances the iterator to the next record. If the iterator
	// reaches the end of its range, Scan() returns false.  If an error
	// occurs, Scan() returns false and the error can be retrieved by
	// calling Err().
	//
	// REQUIRES: Close has not been called.
	Scan() bool

	// Record returns the current record in the iterator. This must be
	// called only after a call to Scan() returns true.
	//
	// REQUIRES: Close has not been called.
	Record() *sam.Record

	// Err returns the error encoutered during iteration, or nil if no error
	// occurred.  An io.EOF error will be translated to nil.
	Err() error

	// Close must be called exactly once. It returns the value of Err().
	Close() error
}

// ProviderOpts defines options for NewProvider.
type ProviderOpts struct {
	// Index specifies the name of the BAM index file. If Index=="", it
	// defaults to path + ".bai".
	Index string
}

// NewProvider creates a Provider for the BAM file at path.
func NewProvider(path string, optList ...ProviderOpts) Provider {
	var opts ProviderOpts
	for _, o := range optList {
		if o.Index != "" {
			opts.Index = o.Index
		}
	}
	return &BAMProvider{Path: path, Index: opts.Index}
}

// refByName returns the reference called name, or nil.
func refByName(header *sam.Header, name string) *sam.Reference {
	for _, ref := range header.Refs() {
		if ref.Name() == name {
			return ref
		}
	}
	return nil
}

// recordRange is the half-open range [start, limit) of alignment starts on
// one reference.
type recordRange struct {
	refID        int
	start, limit int
}

func newRecordRange(ref *sam.Reference, region interval.Entry, padding int) recordRange {
	start := int(region.Start0) - padding
	if start < 0 {
		start = 0
	}
	limit := int(region.End)
	if limit > ref.Len() {
		limit = ref.Len()
	}
	return recordRange{refID: ref.ID(), start: start, limit: limit}
}

// position reports whether rec precedes, falls in or follows the range:
// -1, 0 or 1 respectively.
func (r recordRange) position(rec *sam.Record) int {
	if rec.Ref == nil || rec.Ref.ID() < 0 {
		// Unmapped records sort after every mapped one.
		return 1
	}
	switch id := rec.Ref.ID(); {
	case id < r.refID:
		return -1
	case id > r.refID:
		return 1
	}
	switch {
	case rec.Pos < r.start:
		return -1
	case rec.Pos >= r.limit:
		return 1
	}
	return 0
}
