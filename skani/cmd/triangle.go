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
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/alienzj/skani-go"
	"github.com/alienzj/skani-go/pairwise"
	"github.com/alienzj/skani-go/regression"
	"github.com/alienzj/skani-go/resultsink"
)

var triangleCmd = &cobra.Command{
	Use:   "triangle",
	Short: "all-vs-all ANI/AAI across one set of genomes",
	Long: `all-vs-all ANI/AAI across one set of genomes

Screening via the shared marker index is mandatory in this mode (unlike
dist, there is no --no-marker-index override): every row of the matrix
reuses one index built once over the whole input set.

Output defaults to a lower-triangle phylip identity matrix; --full-matrix
fills in both triangles, --distance reports 100-identity instead of
identity, and --sparse/-E switches to the same tab-separated pair-list
format dist uses, unbounded by a max-results-per-query cap.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		files := getFileListFromArgsAndFile(cmd, args, "l")
		if len(files) == 0 {
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

		individualContig := getFlagBool(cmd, "i")
		sketches, _ := loadSketches(files, params, getFlagBool(cmd, "are-sketch"), individualContig, opt)
		if len(sketches) == 0 {
			checkErrorWithCode(skani.ErrEmptyInput, 1)
		}

		sparse := getFlagBool(cmd, "sparse")
		fullMatrix := getFlagBool(cmd, "full-matrix")
		distance := getFlagBool(cmd, "distance")

		cmdParams := skani.CommandParams{
			Screen:            true,
			ScreenVal:         getFlagFloat64(cmd, "s"),
			IndividualContigR: individualContig,
			IndividualContigQ: individualContig,
			OutFileName:       getFlagString(cmd, "o"),
			MinAF:             getFlagFloat64(cmd, "min-af"),
			LearnedANI:        getFlagBool(cmd, "learned-ani"),
			EstCI:             getFlagBool(cmd, "ci"),
			DetailedOut:       getFlagBool(cmd, "detailed"),
			Robust:            getFlagBool(cmd, "robust"),
			Median:            getFlagBool(cmd, "median"),
			Preset:            chainPresetFromFlags(cmd),
			Sparse:            sparse,
			FullMatrix:        fullMatrix,
			Distance:          distance,
		}

		var model *regression.Model
		if m, ok := regression.GetModel(params.C, cmdParams.LearnedANI); ok {
			model = m
		}

		// Every intermediate flush streams the sparse pair-list format
		// regardless of the final output format, matching the Rust
		// original (triangle.rs): partial output survives an interrupted
		// run even in phylip mode. Only the single final call renders a
		// phylip matrix, and it does so after Triangle returns, from its
		// full accumulator, since FlushFunc has no way to tell an
		// intermediate false-write from the final one.
		flush := func(results []skani.AniEstimate, firstWrite bool) error {
			return resultsink.WriteSparseMatrix(results, cmdParams.OutFileName, useAA, cmdParams.EstCI, cmdParams.DetailedOut, firstWrite)
		}

		results, err := pairwise.Triangle(sketches, pairwise.Options{Threads: opt.NumCPUs, CmdParams: cmdParams, Model: model}, flush)
		checkError(err)

		if !sparse {
			names := make([]string, len(sketches))
			for i, s := range sketches {
				names[i] = s.FileName
			}
			if len(results) == 0 {
				log.Warning("triangle produced no results; no phylip matrix written")
				return
			}
			out, err := resultsink.WritePhylipMatrix(results, names, fullMatrix, distance)
			checkError(err)
			checkError(writePhylipOutput(cmdParams.OutFileName, out))
		}
	},
}

func writePhylipOutput(outFile string, data []byte) error {
	if isStdout(outFile) {
		_, err := os.Stdout.Write(data)
		return err
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

func init() {
	RootCmd.AddCommand(triangleCmd)

	triangleCmd.Flags().StringP("l", "l", "", "file listing input genome files, one per line")
	triangleCmd.Flags().Bool("i", false, "split each input into one sketch per contig")
	triangleCmd.Flags().Bool("are-sketch", false, "treat inputs as pre-built sketch databases")
	triangleCmd.Flags().BoolP("a", "a", false, "amino-acid mode (AAI instead of ANI)")
	triangleCmd.Flags().IntP("c", "c", 125, "sketch compression factor")
	triangleCmd.Flags().IntP("k", "k", 0, "seed k-mer length override (0 = mode default)")
	triangleCmd.Flags().Float64P("s", "s", 0, "override the default screening identity cutoff")
	triangleCmd.Flags().StringP("o", "o", "-", `output file ("-" for stdout)`)
	triangleCmd.Flags().Float64("min-af", 0, "minimum aligned fraction (query and reference) to report a pair")
	triangleCmd.Flags().Bool("learned-ani", false, "apply the learned-ANI regression correction")
	triangleCmd.Flags().Bool("ci", false, "estimate and report a confidence interval")
	triangleCmd.Flags().Bool("detailed", false, "add Ref_name and Query_name columns to the output")
	triangleCmd.Flags().Bool("robust", false, "fill the +/-0.5 identity interval fields of each estimate; the identity itself is unchanged")
	triangleCmd.Flags().Bool("median", false, "recorded in the chaining parameters; does not change the identity estimate")
	triangleCmd.Flags().Bool("slow", false, "chaining preset: slower, more sensitive")
	triangleCmd.Flags().Bool("fast", false, "chaining preset: faster, less sensitive")
	triangleCmd.Flags().Bool("full-matrix", false, "emit both triangles of the phylip matrix instead of the lower triangle")
	triangleCmd.Flags().BoolP("sparse", "E", false, "emit a sparse tab-separated pair list instead of a phylip matrix")
	triangleCmd.Flags().Bool("distance", false, "report 100-identity instead of identity")
}
