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
	"os"
	"path/filepath"
	"runtime"
	"sort"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/shenwei356/stable"
	"github.com/shenwei356/util/bytesize"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"

	"github.com/alienzj/skani-go"
	"github.com/alienzj/skani-go/chain"
	"github.com/alienzj/skani-go/markerindex"
	"github.com/alienzj/skani-go/sketchio"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "screen a query against a pre-built sketch database directory",
	Long: `screen a query against a pre-built sketch database directory

Loads every file directly under -d as a sketch database (any other file
in that directory makes the load fail), screens the query against
the resulting marker index, chains the survivors, and reports the top -n
hits ranked by identity (end-to-end scenario 4: "search -d <dir> query.fa
--median -n 5").
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		if len(args) == 0 {
			checkErrorWithCode(fmt.Errorf("a query genome file is required"), 1)
		}
		queryFile := args[0]

		dbDir := getFlagString(cmd, "d")
		if dbDir == "" {
			checkErrorWithCode(fmt.Errorf("-d (sketch database directory) is required"), 1)
		}
		expanded, err := homedir.Expand(dbDir)
		checkError(err)
		dbDir = expanded

		ok, err := pathutil.DirExists(dbDir)
		checkError(err)
		if !ok {
			checkErrorWithCode(fmt.Errorf("sketch database directory %s does not exist", dbDir), 1)
		}

		dbFiles, err := filepath.Glob(filepath.Join(dbDir, "*"))
		checkError(err)
		if len(dbFiles) == 0 {
			checkErrorWithCode(skani.ErrEmptyInput, 1)
		}

		dbParams, refs, err := sketchio.SketchesFromSketch(dbFiles)
		checkError(err)
		if len(refs) == 0 {
			checkErrorWithCode(skani.ErrEmptyInput, 1)
		}

		var totalSeeds float64
		for _, r := range refs {
			totalSeeds += float64(len(r.Seeds))
		}
		if opt.Verbose {
			log.Infof("loaded %d reference sketches (%s seeds) from %s", len(refs), bytesize.ByteSize(totalSeeds), dbDir)
		}

		useAA := dbParams.UseAA
		queries, err := sketchio.FastxToSketches([]string{queryFile}, dbParams, !dbParams.UseAA)
		checkError(err)
		if len(queries) == 0 {
			checkErrorWithCode(skani.ErrEmptyInput, 1)
		}
		query := &queries[0]

		idx := markerindex.Build(refs)
		screenVal := getFlagFloat64(cmd, "s")
		if screenVal == 0 {
			if useAA {
				screenVal = skani.SearchAAICutoffDefault
			} else {
				screenVal = skani.SearchANICutoffDefault
			}
		}
		candidates := markerindex.ScreenRefs(screenVal, idx, query, dbParams, refs)

		cmdParams := skani.CommandParams{
			MinAF:  getFlagFloat64(cmd, "min-af"),
			Robust: getFlagBool(cmd, "robust"),
			Median: getFlagBool(cmd, "median"),
			Preset: chainPresetFromFlags(cmd),
		}

		var results []skani.AniEstimate
		for refIdx := range candidates {
			ref := &refs[refIdx]
			params := chain.MapParamsFromSketch(ref, useAA, cmdParams)
			if params.IsDefault() {
				continue
			}
			est := chain.ChainSeeds(ref, query, params)
			if est.Ani <= skani.DiscardAniThreshold {
				continue
			}
			if est.AfQuery < cmdParams.MinAF || est.AfRef < cmdParams.MinAF {
				continue
			}
			results = append(results, est)
		}

		sort.Slice(results, func(i, j int) bool { return results[i].Ani > results[j].Ani })
		maxResults := getFlagInt(cmd, "n")
		if maxResults > 0 && len(results) > maxResults {
			results = results[:maxResults]
		}

		idLabel := "ANI"
		if useAA {
			idLabel = "AAI"
		}
		style := &stable.TableStyle{
			Name:      "plain",
			HeaderRow: stable.RowStyle{Begin: "", Sep: "  ", End: ""},
			DataRow:   stable.RowStyle{Begin: "", Sep: "  ", End: ""},
			Padding:   "",
		}
		columns := []stable.Column{
			{Header: "Ref_file"},
			{Header: "Query_file"},
			{Header: idLabel, Align: stable.AlignRight},
			{Header: "Align_fraction_ref", Align: stable.AlignRight},
			{Header: "Align_fraction_query", Align: stable.AlignRight},
		}
		tbl := stable.New()
		tbl.HeaderWithFormat(columns)
		for _, e := range results {
			tbl.AddRow([]interface{}{
				e.RefName, e.QueryName,
				fmt.Sprintf("%.2f", e.Ani),
				fmt.Sprintf("%.4f", e.AfRef),
				fmt.Sprintf("%.4f", e.AfQuery),
			})
		}
		os.Stdout.Write(tbl.Render(style))
	},
}

func init() {
	RootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("d", "d", "", "sketch database directory (required)")
	searchCmd.Flags().Float64P("s", "s", 0, "override the default screening identity cutoff")
	searchCmd.Flags().IntP("n", "n", 10, "maximum hits to report")
	searchCmd.Flags().Float64("min-af", 0, "minimum aligned fraction (query and reference) to report a hit")
	searchCmd.Flags().Bool("robust", false, "fill the +/-0.5 identity interval fields of each estimate; the identity itself is unchanged")
	searchCmd.Flags().Bool("median", false, "recorded in the chaining parameters; does not change the identity estimate")
	searchCmd.Flags().Bool("slow", false, "chaining preset: slower, more sensitive")
	searchCmd.Flags().Bool("fast", false, "chaining preset: faster, less sensitive")
}
