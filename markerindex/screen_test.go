package markerindex

import (
	"testing"

	"github.com/alienzj/skani-go"
)

func buildRefsAndIndex(n int, sharedMarkers int) ([]skani.Sketch, *MarkerIndex) {
	refs := make([]skani.Sketch, n)
	for i := range refs {
		markers := make([]uint64, 0, sharedMarkers+1)
		for j := 0; j < sharedMarkers; j++ {
			markers = append(markers, uint64(j))
		}
		markers = append(markers, uint64(1000+i)) // one marker unique to this ref
		refs[i] = skani.Sketch{FileName: "ref", MarkerSeeds: markers}
	}
	return refs, Build(refs)
}

func TestScreenRefsSmallQueryBypass(t *testing.T) {
	refs, idx := buildRefsAndIndex(5, 30)
	query := &skani.Sketch{MarkerSeeds: make([]uint64, 19)} // < 20
	params := skani.SketchParams{}

	survivors := ScreenRefs(0.9, idx, query, params, refs)
	if len(survivors) != len(refs) {
		t.Fatalf("small query bypass: got %d survivors, want %d", len(survivors), len(refs))
	}
	for i := range refs {
		if _, ok := survivors[i]; !ok {
			t.Fatalf("small query bypass: missing ref %d", i)
		}
	}
}

func TestScreenRefsCutoffMonotonicity(t *testing.T) {
	refs, idx := buildRefsAndIndex(10, 40)
	markers := make([]uint64, 40)
	for i := range markers {
		markers[i] = uint64(i)
	}
	query := &skani.Sketch{MarkerSeeds: markers}
	params := skani.SketchParams{}

	low := ScreenRefs(0.5, idx, query, params, refs)
	high := ScreenRefs(0.99, idx, query, params, refs)
	if len(high) > len(low) {
		t.Fatalf("increasing identity should never enlarge survivor set: low=%d high=%d", len(low), len(high))
	}
}

func TestScreenRefsStrictGreaterThan(t *testing.T) {
	// A single shared marker with exactly one posting gives count=1;
	// threshold floors to max(x,1)=1, and count must be strictly greater
	// than the threshold to pass, so count==1 never survives.
	refs := []skani.Sketch{{FileName: "r0", MarkerSeeds: []uint64{7}}}
	idx := Build(refs)
	query := &skani.Sketch{MarkerSeeds: make([]uint64, 25)}
	query.MarkerSeeds[0] = 7
	params := skani.SketchParams{}

	survivors := ScreenRefs(0.99, idx, query, params, refs)
	if _, ok := survivors[0]; ok {
		t.Fatalf("count==1 should not survive the strict > threshold")
	}
}

func TestScreenRefsFilenamesNoBypass(t *testing.T) {
	refs := []skani.Sketch{{FileName: "only-ref", MarkerSeeds: []uint64{1, 2, 3}}}
	idx := Build(refs)
	// Fewer than 20 markers: screen_refs would bypass, but
	// screen_refs_filenames never bypasses, so an unrelated query finds
	// nothing.
	query := &skani.Sketch{MarkerSeeds: []uint64{99}}
	params := skani.SketchParams{}

	names := ScreenRefsFilenames(0.99, idx, query, params, refs)
	if len(names) != 0 {
		t.Fatalf("expected no filename survivors for an unrelated tiny query, got %v", names)
	}
}

func TestScreenRefsAAvsDNAMarkerK(t *testing.T) {
	refs, idx := buildRefsAndIndex(3, 25)
	markers := make([]uint64, 25)
	for i := range markers {
		markers[i] = uint64(i)
	}
	query := &skani.Sketch{MarkerSeeds: markers}

	dnaSurvivors := ScreenRefs(0.9, idx, query, skani.SketchParams{UseAA: false}, refs)
	aaSurvivors := ScreenRefs(0.9, idx, query, skani.SketchParams{UseAA: true}, refs)
	// DNA uses a bigger marker k (15) than AA (7) in this implementation,
	// so the DNA cutoff is stricter and should never admit more refs.
	if len(dnaSurvivors) > len(aaSurvivors) {
		t.Fatalf("DNA cutoff (k=%d) should be at least as strict as AA (k=%d): dna=%d aa=%d",
			skani.KMarkerDNA, skani.KMarkerAA, len(dnaSurvivors), len(aaSurvivors))
	}
}
