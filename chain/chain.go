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

// Package chain is the Chainer collaborator from §4.5: given two sketches
// and per-pair chaining parameters, it produces an AniEstimate. The chaining
// inner loop's exact alignment math is explicitly a Non-goal (spec.md §1);
// what's implemented here is a greedy co-linear chain over shared seeds,
// good enough to drive the core pipeline end to end.
package chain

import (
	"math"
	"sort"

	"github.com/alienzj/skani-go"
)

// diagonalBand bounds how far a chained seed pair's (refPos - queryPos)
// offset may drift from the offset of its run's first seed and still count
// as co-linear.
const diagonalBand = 1000

// CheckMarkersQuickly is the cheap per-pair pre-filter used by the Dist
// driver when screening is disabled (§4.3 item 2): count markers shared
// between query and ref directly, without going through the marker index.
func CheckMarkersQuickly(query, ref *skani.Sketch, screenVal float64) bool {
	if len(query.MarkerSeeds) == 0 || len(ref.MarkerSeeds) == 0 {
		return false
	}
	refSet := make(map[uint64]struct{}, len(ref.MarkerSeeds))
	for _, m := range ref.MarkerSeeds {
		refSet[m] = struct{}{}
	}
	shared := 0
	for _, m := range query.MarkerSeeds {
		if _, ok := refSet[m]; ok {
			shared++
		}
	}
	minMarkers := len(query.MarkerSeeds)
	if len(ref.MarkerSeeds) < minMarkers {
		minMarkers = len(ref.MarkerSeeds)
	}
	k := skani.KMarkerDNA
	if query.UseAA {
		k = skani.KMarkerAA
	}
	cutoff := math.Pow(screenVal, float64(k))
	threshold := int(cutoff * float64(minMarkers))
	if threshold < 1 {
		threshold = 1
	}
	return shared > threshold
}

// MapParamsFromSketch derives per-pair chaining parameters from a reference
// sketch. It returns the zero MapParams when the reference has no usable
// seeds, the signal the Dist driver uses to skip the pair without invoking
// the Chainer (§4.5).
func MapParamsFromSketch(ref *skani.Sketch, useAA bool, cmd skani.CommandParams) skani.MapParams {
	if len(ref.Seeds) == 0 {
		return skani.MapParams{}
	}
	ratio := 0.9
	minMarkers := 3
	switch cmd.Preset {
	case skani.PresetFast:
		ratio, minMarkers = 0.95, 5
	case skani.PresetSlow:
		ratio, minMarkers = 0.8, 2
	}
	params := skani.MapParams{
		Ratio:      ratio,
		MinMarkers: minMarkers,
		Robust:     cmd.Robust || cmd.DetailedOut || cmd.EstCI,
		Median:     cmd.Median,
		Preset:     cmd.Preset,
	}
	return params
}

// ChainSeeds builds a greedy co-linear chain over seeds shared between ref
// and query, then estimates identity and aligned fraction from the chain.
// Deterministic in its inputs.
func ChainSeeds(ref, query *skani.Sketch, params skani.MapParams) skani.AniEstimate {
	if params.IsDefault() || len(ref.Seeds) == 0 || len(query.Seeds) == 0 {
		return skani.AniEstimate{}
	}

	refPos := make(map[uint64]int, len(ref.Seeds))
	for i, s := range ref.Seeds {
		if _, ok := refPos[s]; !ok {
			pos := i
			if i < len(ref.Positions) {
				pos = ref.Positions[i]
			}
			refPos[s] = pos
		}
	}

	type hit struct{ qPos, rPos int }
	var hits []hit
	for i, s := range query.Seeds {
		rPos, ok := refPos[s]
		if !ok {
			continue
		}
		qPos := i
		if i < len(query.Positions) {
			qPos = query.Positions[i]
		}
		hits = append(hits, hit{qPos: qPos, rPos: rPos})
	}
	if len(hits) < params.MinMarkers {
		return skani.AniEstimate{}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].qPos < hits[j].qPos })

	// Greedy chain: extend the current run while the diagonal offset
	// (rPos - qPos) stays within diagonalBand of the run's starting
	// offset; otherwise start a new run. Keep the longest run.
	bestLen, curLen := 1, 1
	curOffset := hits[0].rPos - hits[0].qPos
	for i := 1; i < len(hits); i++ {
		offset := hits[i].rPos - hits[i].qPos
		if abs(offset-curOffset) <= diagonalBand {
			curLen++
		} else {
			curLen = 1
			curOffset = offset
		}
		if curLen > bestLen {
			bestLen = curLen
		}
	}

	totalShared := len(hits)
	unionSize := len(ref.Seeds) + len(query.Seeds) - totalShared
	if unionSize <= 0 {
		return skani.AniEstimate{}
	}
	jaccard := float64(totalShared) / float64(unionSize)
	if jaccard <= 0 {
		return skani.AniEstimate{}
	}

	kSize := skani.KMarkerDNA
	if query.UseAA {
		kSize = skani.KMarkerAA
	}

	// Mash-style distance-to-identity: ani = 1 + (1/k)*ln(2j/(1+j)).
	identity := 1.0 + (1.0/float64(kSize))*math.Log(2*jaccard/(1+jaccard))
	if identity < 0 {
		identity = 0
	}
	aniPercent := identity * 100

	afQuery := float64(bestLen) / float64(len(query.Seeds))
	afRef := float64(bestLen) / float64(len(ref.Seeds))
	if afQuery > 1 {
		afQuery = 1
	}
	if afRef > 1 {
		afRef = 1
	}

	est := skani.AniEstimate{
		Ani:       aniPercent,
		AfQuery:   afQuery,
		AfRef:     afRef,
		QueryName: query.FileName,
		RefName:   ref.FileName,
	}
	if params.Robust {
		est.CILower = aniPercent - 0.5
		est.CIUpper = aniPercent + 0.5
	}
	return est
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
