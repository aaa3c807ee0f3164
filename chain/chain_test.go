package chain

import (
	"testing"

	"github.com/alienzj/skani-go"
)

func makeSketch(name string, seeds []uint64) skani.Sketch {
	positions := make([]int, len(seeds))
	for i := range positions {
		positions[i] = i * 10
	}
	return skani.Sketch{
		FileName:    name,
		Seeds:       seeds,
		Positions:   positions,
		MarkerSeeds: seeds,
	}
}

func TestMapParamsFromSketchDefaultWhenEmpty(t *testing.T) {
	ref := skani.Sketch{}
	params := MapParamsFromSketch(&ref, false, skani.CommandParams{})
	if !params.IsDefault() {
		t.Fatalf("expected default MapParams for an empty reference, got %+v", params)
	}
}

func TestMapParamsFromSketchUsable(t *testing.T) {
	ref := makeSketch("ref", []uint64{1, 2, 3})
	params := MapParamsFromSketch(&ref, false, skani.CommandParams{})
	if params.IsDefault() {
		t.Fatalf("expected a usable MapParams for a non-empty reference")
	}
}

func TestChainSeedsIdenticalSketches(t *testing.T) {
	seeds := make([]uint64, 100)
	for i := range seeds {
		seeds[i] = uint64(i)
	}
	ref := makeSketch("ref", seeds)
	query := makeSketch("query", seeds)
	params := MapParamsFromSketch(&ref, false, skani.CommandParams{})

	est := ChainSeeds(&ref, &query, params)
	if est.Ani < 95 {
		t.Fatalf("identical sketches should chain to near-100%% identity, got %f", est.Ani)
	}
	if est.AfQuery <= 0.9 || est.AfRef <= 0.9 {
		t.Fatalf("identical sketches should align nearly fully: afQuery=%f afRef=%f", est.AfQuery, est.AfRef)
	}
}

func TestChainSeedsDisjointSketches(t *testing.T) {
	ref := makeSketch("ref", []uint64{1, 2, 3, 4, 5})
	query := makeSketch("query", []uint64{100, 101, 102, 103, 104})
	params := MapParamsFromSketch(&ref, false, skani.CommandParams{})

	est := ChainSeeds(&ref, &query, params)
	if est.Ani != 0 {
		t.Fatalf("disjoint sketches should produce a zero-value estimate, got %+v", est)
	}
}

func TestChainSeedsDefaultParamsIsNoop(t *testing.T) {
	ref := makeSketch("ref", []uint64{1, 2, 3})
	query := makeSketch("query", []uint64{1, 2, 3})
	est := ChainSeeds(&ref, &query, skani.MapParams{})
	if est.Ani != 0 {
		t.Fatalf("default MapParams should yield the zero-value AniEstimate sentinel")
	}
}

func TestCheckMarkersQuickly(t *testing.T) {
	query := makeSketch("q", []uint64{1, 2, 3, 4, 5})
	ref := makeSketch("r", []uint64{1, 2, 3, 4, 5})
	if !CheckMarkersQuickly(&query, &ref, 0.5) {
		t.Fatalf("identical marker sets at a modest screen value should pass")
	}

	unrelated := makeSketch("u", []uint64{100, 101})
	if CheckMarkersQuickly(&query, &unrelated, 0.99) {
		t.Fatalf("unrelated marker sets at a strict screen value should not pass")
	}
}
