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

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/alienzj/skani-go"
	"github.com/alienzj/skani-go/pairwise"
	"github.com/alienzj/skani-go/regression"
	"github.com/alienzj/skani-go/resultsink"
	"github.com/alienzj/skani-go/sketchio"
)

var distCmd = &cobra.Command{
	Use:   "dist",
	Short: "compute ANI/AAI of every query against every reference",
	Long: `compute ANI/AAI of every query against every reference

With no -r/-q given, the first positional argument is the query and the
remaining positional arguments are references (so a plain two-file
invocation produces a single result row).

Each reference genome is screened against a query with a shared marker
index (or, with --no-marker-index, a cheap per-pair marker check) before
the surviving candidates are chained into identity and aligned-fraction
estimates.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		refFiles, queryFiles := resolveDistInputs(cmd, args)

		if len(refFiles) == 0 || len(queryFiles) == 0 {
			checkErrorWithCode(skani.ErrEmptyInput, 1)
		}

		useAA := getFlagBool(cmd, "a")
		k := skani.KMarkerDNA
		if useAA {
			k = skani.KMarkerAA
		}
		if kFlag := getFlagInt(cmd, "k"); kFlag > 0 {
			k = kFlag
		}
		params := skani.SketchParams{C: getFlagPositiveInt(cmd, "c"), K: k, UseAA: useAA}

		refs, refParams := loadSketches(refFiles, params, getFlagBool(cmd, "refs-are-sketch"), getFlagBool(cmd, "ri"), opt)
		queries, queryParams := loadSketches(queryFiles, params, getFlagBool(cmd, "queries-are-sketch"), getFlagBool(cmd, "qi"), opt)

		if len(refs) == 0 || len(queries) == 0 {
			checkErrorWithCode(skani.ErrEmptyInput, 1)
		}

		// §7.1: loaded query sketch parameters differing from loaded
		// reference sketch parameters in Dist mode is a fatal
		// configuration conflict, distinct from the softer
		// loaded-vs-CLI-flag mismatch that loadSketches only warns about.
		if !refParams.Equal(queryParams) {
			checkError(skani.ErrIncompatibleSketchParams)
		}

		cmdParams := skani.CommandParams{
			Screen:            !getFlagBool(cmd, "no-marker-index"),
			ScreenVal:         getFlagFloat64(cmd, "s"),
			IndividualContigR: getFlagBool(cmd, "ri"),
			IndividualContigQ: getFlagBool(cmd, "qi"),
			MaxResults:        getFlagInt(cmd, "n"),
			OutFileName:       getFlagString(cmd, "o"),
			MinAF:             getFlagFloat64(cmd, "min-af"),
			LearnedANI:        getFlagBool(cmd, "learned-ani"),
			EstCI:             getFlagBool(cmd, "ci"),
			DetailedOut:       getFlagBool(cmd, "detailed"),
			Robust:            getFlagBool(cmd, "robust"),
			Median:            getFlagBool(cmd, "median"),
			Preset:            chainPresetFromFlags(cmd),
		}

		var model *regression.Model
		if m, ok := regression.GetModel(params.C, cmdParams.LearnedANI); ok {
			model = m
		}

		flush := func(results []skani.AniEstimate, firstWrite bool) error {
			return resultsink.WriteQueryRefList(results, cmdParams.OutFileName, cmdParams.MaxResults, useAA, cmdParams.EstCI, cmdParams.DetailedOut, firstWrite)
		}

		_, err := pairwise.Dist(refs, queries, pairwise.Options{Threads: opt.NumCPUs, CmdParams: cmdParams, Model: model}, flush)
		checkError(err)
	},
}

// resolveDistInputs assembles the reference and query file lists from
// positional args and the -r/-q/--rl/--ql flags, and enforces the
// conflicting-input-selector rule: an individual-contig flag (--ri/--qi)
// may not be combined with the corresponding list-file flag (--rl/--ql),
// since "split into per-contig sketches" and "load a pre-enumerated file
// list" are contradictory ways of describing the same input side.
func resolveDistInputs(cmd *cobra.Command, args []string) (refFiles, queryFiles []string) {
	ri := getFlagBool(cmd, "ri")
	qi := getFlagBool(cmd, "qi")
	rl := getFlagString(cmd, "rl")
	ql := getFlagString(cmd, "ql")

	if ri && rl != "" {
		checkErrorWithCode(fmt.Errorf("--ri cannot be combined with --rl: conflicting reference input selectors"), 2)
	}
	if qi && ql != "" {
		checkErrorWithCode(fmt.Errorf("--qi cannot be combined with --ql: conflicting query input selectors"), 2)
	}

	refFiles = getFlagStringSlice(cmd, "r")
	queryFiles = getFlagStringSlice(cmd, "q")

	if rl != "" {
		refFiles = append(refFiles, getFileListFromArgsAndFile(cmd, nil, "rl")...)
	}
	if ql != "" {
		queryFiles = append(queryFiles, getFileListFromArgsAndFile(cmd, nil, "ql")...)
	}

	// With no explicit -r/-q, the first positional argument is the query
	// and the rest are references, so a bare "dist A B" invocation
	// produces exactly one query-against-one-reference result row.
	if len(refFiles) == 0 && len(queryFiles) == 0 && len(args) > 0 {
		queryFiles = append(queryFiles, args[0])
		refFiles = append(refFiles, args[1:]...)
		return refFiles, queryFiles
	}
	queryFiles = append(queryFiles, args...)
	return refFiles, queryFiles
}

// chainPresetFromFlags resolves the mutually-exclusive --slow/--medium/
// --fast chaining-preset flags, defaulting to PresetMedium.
func chainPresetFromFlags(cmd *cobra.Command) skani.ChainPreset {
	switch {
	case getFlagBool(cmd, "fast"):
		return skani.PresetFast
	case getFlagBool(cmd, "slow"):
		return skani.PresetSlow
	default:
		return skani.PresetMedium
	}
}

// loadSketches loads files either as persisted sketch databases or as raw
// FASTA/FASTQ to be sketched fresh, per the corresponding --*-are-sketch
// flag. When individualContig is set (the --ri/--qi flags), each input file
// is split into one sketch per contig instead of one sketch per file. It
// returns the effective SketchParams actually in force for this side: the
// loaded database's params when isSketch, otherwise the requested params,
// used by the caller to enforce §7.1's ref-vs-query fatal conflict check.
func loadSketches(files []string, params skani.SketchParams, isSketch, individualContig bool, opt *Options) ([]skani.Sketch, skani.SketchParams) {
	if isSketch {
		loadedParams, sketches, err := sketchio.SketchesFromSketch(files)
		checkError(err)
		if !loadedParams.Equal(params) && loadedParams != (skani.SketchParams{}) {
			if opt.Verbose {
				log.Warningf("loaded sketch parameters (%+v) differ from requested parameters (%+v); using the loaded ones", loadedParams, params)
			}
		}
		return sketches, loadedParams
	}
	if len(files) > 0 {
		if looksSketch, err := sketchio.IsSketchFile(files[0]); err == nil && looksSketch && opt.Verbose {
			log.Warningf("%s looks like a sketch database; pass the matching --*-are-sketch flag to load it directly instead of re-sketching", files[0])
		}
	}
	if individualContig {
		sketches, err := sketchio.FastxToMultipleSketchRewrite(files, params, !params.UseAA)
		checkError(err)
		return sketches, params
	}
	sketches, err := sketchio.FastxToSketches(files, params, !params.UseAA)
	checkError(err)
	return sketches, params
}

func init() {
	RootCmd.AddCommand(distCmd)

	distCmd.Flags().StringSliceP("r", "r", nil, "reference genome file(s)")
	distCmd.Flags().StringSliceP("q", "q", nil, "query genome file(s)")
	distCmd.Flags().String("rl", "", "file listing reference genome files, one per line")
	distCmd.Flags().String("ql", "", "file listing query genome files, one per line")
	distCmd.Flags().Bool("ri", false, "split each reference into one sketch per contig")
	distCmd.Flags().Bool("qi", false, "split each query into one sketch per contig")
	distCmd.Flags().Bool("refs-are-sketch", false, "treat reference inputs as pre-built sketch databases")
	distCmd.Flags().Bool("queries-are-sketch", false, "treat query inputs as pre-built sketch databases")
	distCmd.Flags().BoolP("a", "a", false, "amino-acid mode (AAI instead of ANI)")
	distCmd.Flags().IntP("c", "c", 125, "sketch compression factor")
	distCmd.Flags().IntP("k", "k", 0, "seed k-mer length override (0 = mode default)")
	distCmd.Flags().Bool("no-marker-index", false, "disable marker-index screening; use a cheap per-pair check instead")
	distCmd.Flags().Float64P("s", "s", 0, "override the default screening identity cutoff")
	distCmd.Flags().IntP("n", "n", 0, "maximum results reported per query (0 = unlimited)")
	distCmd.Flags().StringP("o", "o", "-", `output file ("-" for stdout)`)
	distCmd.Flags().Float64("min-af", 0, "minimum aligned fraction (query and reference) to report a pair")
	distCmd.Flags().Bool("learned-ani", false, "apply the learned-ANI regression correction")
	distCmd.Flags().Bool("ci", false, "estimate and report a confidence interval")
	distCmd.Flags().Bool("detailed", false, "add Ref_name and Query_name columns to the output")
	distCmd.Flags().Bool("robust", false, "fill the +/-0.5 identity interval fields of each estimate; the identity itself is unchanged")
	distCmd.Flags().Bool("median", false, "recorded in the chaining parameters; does not change the identity estimate")
	distCmd.Flags().Bool("slow", false, "chaining preset: slower, more sensitive")
	distCmd.Flags().Bool("fast", false, "chaining preset: faster, less sensitive")
}
