package pairwise

import (
	"testing"

	"github.com/alienzj/skani-go"
)

func sketchFor(name string, seeds []uint64) skani.Sketch {
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

func TestDistFlushesFirstWriteBeforeAnyRow(t *testing.T) {
	refs := []skani.Sketch{sketchFor("ref", seedsRange(100))}
	queries := []skani.Sketch{sketchFor("query", seedsRange(100))}

	var calls []bool
	flush := func(results []skani.AniEstimate, firstWrite bool) error {
		calls = append(calls, firstWrite)
		return nil
	}

	if _, err := Dist(refs, queries, Options{CmdParams: skani.CommandParams{Screen: true}}, flush); err != nil {
		t.Fatal(err)
	}
	if len(calls) == 0 || !calls[0] {
		t.Fatalf("expected the first flush call to have firstWrite=true, got %v", calls)
	}
	for _, c := range calls[1:] {
		if c {
			t.Fatalf("only the first flush call should have firstWrite=true, got %v", calls)
		}
	}
}

func TestDistIdenticalSketchesProduceResult(t *testing.T) {
	refs := []skani.Sketch{sketchFor("ref", seedsRange(100))}
	queries := []skani.Sketch{sketchFor("query", seedsRange(100))}

	results, err := Dist(refs, queries, Options{CmdParams: skani.CommandParams{Screen: true}}, noopFlush)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one surviving pair, got %d", len(results))
	}
	if results[0].Ani < 90 {
		t.Fatalf("identical sketches should chain to high identity, got %f", results[0].Ani)
	}
}

func TestTriangleOnlyReportsUpperTriangle(t *testing.T) {
	sketches := []skani.Sketch{
		sketchFor("a", seedsRange(100)),
		sketchFor("b", seedsRange(100)),
		sketchFor("c", seedsRange(100)),
	}

	results, err := Triangle(sketches, Options{CmdParams: skani.CommandParams{}}, noopFlush)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range results {
		if e.RefName == e.QueryName {
			t.Fatalf("a sketch should never be chained against itself: %+v", e)
		}
	}
	// a-b, a-c, b-c: three upper-triangle pairs, all identical sketches.
	if len(results) != 3 {
		t.Fatalf("expected 3 upper-triangle pairs, got %d: %+v", len(results), results)
	}
}

func TestDiscardBelowThreshold(t *testing.T) {
	results := []skani.AniEstimate{
		{Ani: 0.05, RefName: "r1", QueryName: "q1"},
		{Ani: 50, RefName: "r2", QueryName: "q2"},
	}
	kept := discardBelowThreshold(results)
	if len(kept) != 1 || kept[0].RefName != "r2" {
		t.Fatalf("expected only the above-threshold result to survive, got %+v", kept)
	}
}

func noopFlush(results []skani.AniEstimate, firstWrite bool) error { return nil }

func seedsRange(n int) []uint64 {
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = uint64(i)
	}
	return seeds
}
