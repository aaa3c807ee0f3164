// Copyright © 2024 The skani-go Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package markerindex is the inverted marker index ("KmerToSketch") and the
// Screener built on top of it. This is core engine code: built once over a
// fixed reference set and never mutated afterwards.
package markerindex

import (
	"github.com/alienzj/skani-go"
)

// PostingList is a small-vector of reference-sketch indices: up to
// skani.KmerSmallVecSize entries live inline, avoiding a heap allocation for
// the common case of a marker shared by only a handful of genomes. Larger
// lists spill into overflow. Insertion order is preserved across the
// inline/overflow boundary.
type PostingList struct {
	inline  [skani.KmerSmallVecSize]uint32
	n       int
	overflow []uint32
}

// Append records that reference sketch idx contains this marker. Duplicates
// within one sketch are allowed and simply appended again, matching the
// "a marker may appear multiple times in a sketch" invariant.
func (p *PostingList) Append(idx uint32) {
	if p.n < skani.KmerSmallVecSize {
		p.inline[p.n] = idx
		p.n++
		return
	}
	p.overflow = append(p.overflow, idx)
}

// Len returns the number of entries in the posting list.
func (p *PostingList) Len() int {
	return p.n + len(p.overflow)
}

// ForEach calls fn once per entry, in insertion order.
func (p *PostingList) ForEach(fn func(refIdx uint32)) {
	for i := 0; i < p.n; i++ {
		fn(p.inline[i])
	}
	for _, idx := range p.overflow {
		fn(idx)
	}
}

// MarkerIndex maps a 64-bit marker k-mer to the ordered list of reference
// sketches containing it. It is the core "KmerToSketch" structure from the
// spec: a low-overhead map keyed by already-hashed 64-bit integers, sized
// lazily rather than pre-reserved.
type MarkerIndex struct {
	postings map[uint64]*PostingList
}

// Build constructs the inverted marker index over refs. For each reference
// at position i, for each marker m in refs[i].MarkerSeeds, i is appended to
// the posting list of m.
func Build(refs []skani.Sketch) *MarkerIndex {
	idx := &MarkerIndex{postings: make(map[uint64]*PostingList)}
	for i, ref := range refs {
		for _, marker := range ref.MarkerSeeds {
			pl, ok := idx.postings[marker]
			if !ok {
				pl = &PostingList{}
				idx.postings[marker] = pl
			}
			pl.Append(uint32(i))
		}
	}
	return idx
}

// Lookup returns the posting list for a marker, or nil if the marker never
// appears in any reference sketch.
func (idx *MarkerIndex) Lookup(marker uint64) *PostingList {
	if idx == nil {
		return nil
	}
	return idx.postings[marker]
}

// Len returns the number of distinct markers indexed.
func (idx *MarkerIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.postings)
}
