package markerindex

import (
	"testing"

	"github.com/alienzj/skani-go"
)

func markerSketch(name string, markers ...uint64) skani.Sketch {
	return skani.Sketch{FileName: name, MarkerSeeds: markers}
}

func TestBuildInsertionOrder(t *testing.T) {
	refs := []skani.Sketch{
		markerSketch("a", 1, 2, 3),
		markerSketch("b", 2, 3, 4),
		markerSketch("c", 3),
	}
	idx := Build(refs)

	pl := idx.Lookup(3)
	if pl == nil || pl.Len() != 3 {
		t.Fatalf("expected marker 3 to have 3 postings, got %v", pl)
	}
	var order []uint32
	pl.ForEach(func(refIdx uint32) { order = append(order, refIdx) })
	want := []uint32{0, 1, 2}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("posting order = %v, want %v", order, want)
		}
	}
}

func TestBuildDuplicateMarkerWithinSketch(t *testing.T) {
	refs := []skani.Sketch{markerSketch("a", 5, 5, 5)}
	idx := Build(refs)
	pl := idx.Lookup(5)
	if pl.Len() != 3 {
		t.Fatalf("expected 3 postings for a repeated marker, got %d", pl.Len())
	}
}

func TestPostingListSpillsToOverflow(t *testing.T) {
	var refs []skani.Sketch
	for i := 0; i < skani.KmerSmallVecSize+5; i++ {
		refs = append(refs, markerSketch("x", 42))
	}
	idx := Build(refs)
	pl := idx.Lookup(42)
	if pl.Len() != len(refs) {
		t.Fatalf("posting list length = %d, want %d", pl.Len(), len(refs))
	}
	count := 0
	pl.ForEach(func(uint32) { count++ })
	if count != len(refs) {
		t.Fatalf("ForEach visited %d entries, want %d", count, len(refs))
	}
}

func TestLookupMissingMarker(t *testing.T) {
	idx := Build(nil)
	if pl := idx.Lookup(999); pl != nil {
		t.Fatalf("expected nil posting list for unseen marker, got %v", pl)
	}
}
