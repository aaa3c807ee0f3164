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

package markerindex

import (
	"math"

	"github.com/alienzj/skani-go"
)

// ScreenRefs returns the set of reference indices likely to exceed identity
// against query, using the shared marker index. Queries with fewer than
// skani.SmallQueryMarkerBypass markers can't be screened reliably and get
// every reference index back unfiltered (§4.2).
func ScreenRefs(identity float64, idx *MarkerIndex, query *skani.Sketch, params skani.SketchParams, refs []skani.Sketch) map[int]struct{} {
	if len(query.MarkerSeeds) < skani.SmallQueryMarkerBypass {
		all := make(map[int]struct{}, len(refs))
		for i := range refs {
			all[i] = struct{}{}
		}
		return all
	}

	counts := countSharedMarkers(idx, query)

	k := params.MarkerK()
	cutoff := math.Pow(identity, float64(k))

	survivors := make(map[int]struct{}, len(counts))
	for refIdx, count := range counts {
		if passesScreen(count, cutoff, len(refs[refIdx].MarkerSeeds), len(query.MarkerSeeds)) {
			survivors[refIdx] = struct{}{}
		}
	}
	return survivors
}

// ScreenRefsFilenames is identical to ScreenRefs except it has no
// small-query bypass and returns reference file names instead of indices.
// Used by the search flow.
func ScreenRefsFilenames(identity float64, idx *MarkerIndex, query *skani.Sketch, params skani.SketchParams, refs []skani.Sketch) []string {
	counts := countSharedMarkers(idx, query)

	k := params.MarkerK()
	cutoff := math.Pow(identity, float64(k))

	var out []string
	for refIdx, count := range counts {
		if passesScreen(count, cutoff, len(refs[refIdx].MarkerSeeds), len(query.MarkerSeeds)) {
			out = append(out, refs[refIdx].FileName)
		}
	}
	return out
}

func countSharedMarkers(idx *MarkerIndex, query *skani.Sketch) map[int]int {
	counts := make(map[int]int)
	for _, marker := range query.MarkerSeeds {
		pl := idx.Lookup(marker)
		if pl == nil {
			continue
		}
		pl.ForEach(func(refIdx uint32) {
			counts[int(refIdx)]++
		})
	}
	return counts
}

// passesScreen implements the cutoff test from §4.2: strict ">" against
// max(floor(cutoff * min(refMarkers, queryMarkers)), 1).
func passesScreen(count int, cutoff float64, refMarkers, queryMarkers int) bool {
	minMarkers := refMarkers
	if queryMarkers < minMarkers {
		minMarkers = queryMarkers
	}
	threshold := int(cutoff * float64(minMarkers))
	if threshold < 1 {
		threshold = 1
	}
	return count > threshold
}
