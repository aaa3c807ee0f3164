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

// Package skani holds the shared data model for the pairwise ANI/AAI
// estimator: sketches, run parameters, and the per-pair result type.
// Everything in this file is read-only data once a run starts.
package skani

// Marker k-mer sizes used by the Screener's cutoff formula: one fixed k for
// amino-acid mode and a separate one for nucleotide mode.
const (
	KMarkerAA  = 7
	KMarkerDNA = 15
)

// Default screening identity thresholds, used when CommandParams.ScreenVal
// is left at its zero value.
const (
	SearchANICutoffDefault = 0.80
	SearchAAICutoffDefault = 0.65
)

// INTERMEDIATE_WRITE_COUNT (see pairwise.FlushFunc): number of
// completed outer units between streaming flushes of the shared accumulator.
const IntermediateWriteCount = 30

// KmerSmallVecSize is the number of inline slots in a posting list before it
// spills to the heap. Posting lists are short in the common case (tens of
// entries), so a small inline array avoids the bulk of allocations.
const KmerSmallVecSize = 8

// DiscardAniThreshold: results at or below this identity (on the chainer's
// percent scale) are considered no-ops and never reported.
const DiscardAniThreshold = 0.1

// SmallQueryMarkerBypass: queries with fewer markers than this can't be
// screened reliably, so the Screener returns every reference unfiltered.
const SmallQueryMarkerBypass = 20

// SketchParams is the immutable per-run sketching configuration. All
// sketches in a single run are expected to share one SketchParams value.
type SketchParams struct {
	C     int  // sampling density ("compression")
	K     int  // seed k-mer length
	UseAA bool // amino-acid vs nucleotide mode
}

// Equal reports whether two SketchParams describe the same sketching scheme.
func (p SketchParams) Equal(o SketchParams) bool {
	return p.C == o.C && p.K == o.K && p.UseAA == o.UseAA
}

// MarkerK returns the effective marker k-mer size the Screener's cutoff
// formula should use for this run's mode.
func (p SketchParams) MarkerK() int {
	if p.UseAA {
		return KMarkerAA
	}
	return KMarkerDNA
}

// Sketch is a single reference or query item: an ordered multiset of marker
// seeds (used for screening) plus whatever the Chainer needs for the full
// seed-chaining pass. The full seed set, sequence length and contig names
// are opaque to the core and only passed through to the Chainer.
type Sketch struct {
	FileName    string
	MarkerSeeds []uint64
	Seeds       []uint64
	Positions   []int // position of Seeds[i] along the sequence, parallel to Seeds
	SeqLength   int
	ContigNames []string
	UseAA       bool
}

// CommandParams is the run-time configuration assembled from CLI flags.
type CommandParams struct {
	Screen            bool
	ScreenVal         float64
	RefsAreSketch     bool
	QueriesAreSketch  bool
	IndividualContigR bool
	IndividualContigQ bool
	LearnedANI        bool
	EstCI             bool
	DetailedOut       bool
	MaxResults        int
	OutFileName       string
	Sparse            bool
	FullMatrix        bool
	Distance          bool
	MinAF             float64
	Robust            bool
	Median            bool
	Preset            ChainPreset

	RefFiles   []string
	QueryFiles []string
}

// MapParams are the per-pair chaining knobs the Chainer derives from a
// reference sketch. A zero-valued MapParams marks a pair as unusable; the
// Dist and Triangle drivers and the search command skip such a pair without
// invoking the Chainer.
type MapParams struct {
	Ratio      float64
	MinMarkers int
	Robust     bool
	Median     bool
	Preset     ChainPreset
}

// ChainPreset mirrors the CLI's --slow/--medium/--fast chaining presets.
type ChainPreset uint8

const (
	PresetMedium ChainPreset = iota
	PresetSlow
	PresetFast
)

// IsDefault reports whether m is the zero value, i.e. "this pair is
// unusable" per §4.5.
func (m MapParams) IsDefault() bool {
	return m == MapParams{}
}

// AniEstimate is the result of chaining one pair. Ani is on a 0-100 percent
// scale; AfQuery/AfRef are aligned fractions in [0, 1]. The zero value has
// Ani == 0, matching the "unusable pair" sentinel used throughout the core.
type AniEstimate struct {
	Ani       float64
	AfQuery   float64
	AfRef     float64
	CILower   float64
	CIUpper   float64
	QueryName string
	RefName   string
}
