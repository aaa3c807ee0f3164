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

// Package pairwise is the PairwiseDriver core (§4.3, §4.4): the Dist and
// Triangle nested-parallel loops that drive the Screener, Chainer and
// regression collaborators over a set of sketches and stream results out
// through a ResultSink-shaped callback.
//
// The teacher's worker-pool idiom (unikmer/cmd/db-search.go and friends:
// runtime.GOMAXPROCS plus a channel-and-WaitGroup token pool) is replaced
// here with golang.org/x/sync/errgroup's bounded SetLimit, which is the
// shape the rest of the retrieval pack's manifests reach for when they need
// a capped worker pool. The errgroup runs the outer loop (one task per query
// or matrix row); each task walks its references sequentially.
package pairwise

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alienzj/skani-go"
	"github.com/alienzj/skani-go/chain"
	"github.com/alienzj/skani-go/markerindex"
	"github.com/alienzj/skani-go/regression"
)

// FlushFunc is called by the driver every time the accumulator should be
// streamed out: once at startup with firstWrite=true to truncate any
// preexisting output file, then every IntermediateWriteCount completed
// outer units with firstWrite=false (§4.3 "streaming flush").
type FlushFunc func(results []skani.AniEstimate, firstWrite bool) error

// Options bundles the run-wide knobs both drivers need.
type Options struct {
	Threads   int
	CmdParams skani.CommandParams
	Model     *regression.Model
}

// Dist computes one row of results per query against every reference,
// optionally screening references down first. Screening is mandatory in
// Triangle mode but optional here (§4.3 item 2): when CmdParams.Screen is
// false the driver falls back to chain.CheckMarkersQuickly as a cheap
// per-pair pre-filter instead of building a MarkerIndex.
//
// Regression (if Options.Model is set) is applied once over the whole
// accumulator after every query has been processed, never per pair, per
// §4.4's placement rule.
func Dist(refs, queries []skani.Sketch, opts Options, flush FlushFunc) ([]skani.AniEstimate, error) {
	var idx *markerindex.MarkerIndex
	if opts.CmdParams.Screen {
		idx = markerindex.Build(refs)
	}

	var mu sync.Mutex
	var accumulated []skani.AniEstimate
	completed := 0

	if err := flush(nil, true); err != nil {
		return nil, err
	}

	g := new(errgroup.Group)
	if opts.Threads > 0 {
		g.SetLimit(opts.Threads)
	}

	for qi := range queries {
		query := &queries[qi]
		g.Go(func() error {
			rowResults := distRow(refs, query, idx, opts)

			mu.Lock()
			accumulated = append(accumulated, rowResults...)
			completed++
			shouldFlush := completed%skani.IntermediateWriteCount == 0
			var snapshot []skani.AniEstimate
			if shouldFlush {
				snapshot = make([]skani.AniEstimate, len(accumulated))
				copy(snapshot, accumulated)
			}
			mu.Unlock()

			if shouldFlush {
				if err := flush(snapshot, false); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Model != nil {
		for i := range accumulated {
			regression.PredictFromAniRes(&accumulated[i], opts.Model)
		}
	}
	accumulated = discardBelowThreshold(accumulated)

	if err := flush(accumulated, false); err != nil {
		return nil, err
	}
	return accumulated, nil
}

// distRow computes query's results against every candidate reference,
// screening first if idx is non-nil.
func distRow(refs []skani.Sketch, query *skani.Sketch, idx *markerindex.MarkerIndex, opts Options) []skani.AniEstimate {
	var candidates map[int]struct{}
	if idx != nil {
		screenVal := opts.CmdParams.ScreenVal
		if screenVal == 0 {
			screenVal = defaultScreenCutoff(query.UseAA)
		}
		candidates = markerindex.ScreenRefs(screenVal, idx, query, skani.SketchParams{UseAA: query.UseAA}, refs)
	}

	var results []skani.AniEstimate
	for ri := range refs {
		ref := &refs[ri]
		if idx != nil {
			if _, ok := candidates[ri]; !ok {
				continue
			}
		} else {
			screenVal := opts.CmdParams.ScreenVal
			if screenVal == 0 {
				screenVal = defaultScreenCutoff(query.UseAA)
			}
			if !chain.CheckMarkersQuickly(query, ref, screenVal) {
				continue
			}
		}

		params := chain.MapParamsFromSketch(ref, query.UseAA, opts.CmdParams)
		if params.IsDefault() {
			continue
		}
		est := chain.ChainSeeds(ref, query, params)
		if est.Ani <= skani.DiscardAniThreshold {
			continue
		}
		if est.AfQuery < opts.CmdParams.MinAF || est.AfRef < opts.CmdParams.MinAF {
			continue
		}
		results = append(results, est)
	}
	return results
}

// Triangle computes the upper triangle (i < j) of the all-against-all
// matrix over sketches, which doubles as both the reference and query set.
// Screening via a MarkerIndex is mandatory (§4.4): Triangle mode is only
// ever invoked on a single shared sketch set, so the index is built once
// and reused for every row. Regression, when Options.Model is set, is
// applied inline per pair rather than once at the end, per §4.4/§9's
// "Regression application placement" distinction from Dist mode.
func Triangle(sketches []skani.Sketch, opts Options, flush FlushFunc) ([]skani.AniEstimate, error) {
	idx := markerindex.Build(sketches)

	var mu sync.Mutex
	var accumulated []skani.AniEstimate
	completed := 0

	if err := flush(nil, true); err != nil {
		return nil, err
	}

	g := new(errgroup.Group)
	if opts.Threads > 0 {
		g.SetLimit(opts.Threads)
	}

	for i := range sketches {
		i := i
		g.Go(func() error {
			rowResults := triangleRow(sketches, i, idx, opts)

			mu.Lock()
			accumulated = append(accumulated, rowResults...)
			completed++
			shouldFlush := completed%skani.IntermediateWriteCount == 0
			var snapshot []skani.AniEstimate
			if shouldFlush {
				snapshot = make([]skani.AniEstimate, len(accumulated))
				copy(snapshot, accumulated)
			}
			mu.Unlock()

			if shouldFlush {
				if err := flush(snapshot, false); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	accumulated = discardBelowThreshold(accumulated)
	if err := flush(accumulated, false); err != nil {
		return nil, err
	}
	return accumulated, nil
}

func triangleRow(sketches []skani.Sketch, i int, idx *markerindex.MarkerIndex, opts Options) []skani.AniEstimate {
	query := &sketches[i]

	screenVal := opts.CmdParams.ScreenVal
	if screenVal == 0 {
		screenVal = defaultScreenCutoff(query.UseAA)
	}
	candidates := markerindex.ScreenRefs(screenVal, idx, query, skani.SketchParams{UseAA: query.UseAA}, sketches)

	var results []skani.AniEstimate
	for j := i + 1; j < len(sketches); j++ {
		if _, ok := candidates[j]; !ok {
			continue
		}
		ref := &sketches[j]

		params := chain.MapParamsFromSketch(ref, query.UseAA, opts.CmdParams)
		if params.IsDefault() {
			continue
		}
		est := chain.ChainSeeds(ref, query, params)
		if est.Ani <= skani.DiscardAniThreshold {
			continue
		}
		if est.AfQuery < opts.CmdParams.MinAF || est.AfRef < opts.CmdParams.MinAF {
			continue
		}
		if opts.Model != nil {
			regression.PredictFromAniRes(&est, opts.Model)
		}
		results = append(results, est)
	}
	return results
}

func defaultScreenCutoff(useAA bool) float64 {
	if useAA {
		return skani.SearchAAICutoffDefault
	}
	return skani.SearchANICutoffDefault
}

// discardBelowThreshold drops results at or below DiscardAniThreshold,
// the "no-op result" rule shared by both drivers (§4.3/§4.4).
func discardBelowThreshold(results []skani.AniEstimate) []skani.AniEstimate {
	out := results[:0]
	for _, e := range results {
		if e.Ani > skani.DiscardAniThreshold {
			out = append(out, e)
		}
	}
	return out
}
