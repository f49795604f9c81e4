// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package indel

import (
	"github.com/biogo/store/llrb"
)

type bufferEntry struct {
	key  Key
	data *Data
}

// Compare implements llrb.Comparable.
func (e *bufferEntry) Compare(c llrb.Comparable) int {
	return e.key.compare(c.(*bufferEntry).key)
}

// Buffer holds one sample's evidence for every indel seen in the current
// analysis region, ordered by Key.
type Buffer struct {
	tree llrb.Tree
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Insert folds obs into the buffer.  isSynced marks an insertion made because
// another sample observed the indel: it registers the key but adds no read
// support here.
//
// isNovel is true if the key was not present before.  isRepeatObs is true if
// the (key, read) pair had already been recorded.
func (b *Buffer) Insert(obs Observation, isSynced bool) (isNovel, isRepeatObs bool) {
	var data *Data
	if c := b.tree.Get(&bufferEntry{key: obs.Key}); c != nil {
		data = c.(*bufferEntry).data
	} else {
		data = newData()
		b.tree.Insert(&bufferEntry{key: obs.Key, data: data})
		isNovel = true
	}
	if obs.IsExternalCandidate {
		data.IsExternalCandidate = true
	}
	if isSynced {
		data.nSynced++
		return isNovel, false
	}
	if obs.ReadName != "" {
		isRepeatObs = !data.addRead(obs.ReadName)
	}
	if !isRepeatObs {
		data.insertSeq.add(obs.InsertSeq, obs.Key.IsBreakpoint())
	}
	return isNovel, isRepeatObs
}

// Lookup returns the evidence for key, or nil if the key was never inserted.
func (b *Buffer) Lookup(key Key) *Data {
	c := b.tree.Get(&bufferEntry{key: key})
	if c == nil {
		return nil
	}
	return c.(*bufferEntry).data
}

// Len returns the number of distinct keys in the buffer.
func (b *Buffer) Len() int {
	return b.tree.Len()
}

// DoRange calls fn for every key with from <= Pos < to in increasing order,
// stopping early if fn returns true.
func (b *Buffer) DoRange(from, to PosType, fn func(key Key, data *Data) (done bool)) {
	if from >= to {
		return
	}
	lo := &bufferEntry{key: Key{Pos: from}}
	hi := &bufferEntry{key: Key{Pos: to}}
	b.tree.DoRange(func(c llrb.Comparable) bool {
		e := c.(*bufferEntry)
		return fn(e.key, e.data)
	}, lo, hi)
}
