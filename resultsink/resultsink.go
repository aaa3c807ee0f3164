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

// Package resultsink is the ResultSink external collaborator (§5): turning
// an accumulator of AniEstimate values into the query-ref-list, sparse, and
// phylip output formats. WriteQueryRefList and WriteSparseMatrix honor the
// "first_write" append-vs-overwrite contract the core streaming-flush
// invariant depends on (§4.3, §4.4): firstWrite truncates and writes a
// header, every later call appends without one. WritePhylipMatrix instead
// returns the rendered matrix for the caller to write.
package resultsink

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/twotwotwo/sorts/sortutil"

	"github.com/alienzj/skani-go"
)

func openOut(file string, gzipped, firstWrite bool) (io.WriteCloser, error) {
	if file == "" || file == "-" {
		return nopCloser{os.Stdout}, nil
	}

	flag := os.O_WRONLY | os.O_CREATE
	if firstWrite {
		flag |= os.O_TRUNC
	} else {
		flag |= os.O_APPEND
	}
	f, err := os.OpenFile(file, flag, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", file)
	}
	if gzipped {
		return gzipCloser{gzip.NewWriter(f), f}, nil
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

type gzipCloser struct {
	gw *gzip.Writer
	f  *os.File
}

func (g gzipCloser) Write(p []byte) (int, error) { return g.gw.Write(p) }
func (g gzipCloser) Close() error {
	if err := g.gw.Close(); err != nil {
		g.f.Close()
		return err
	}
	return g.f.Close()
}

// queryRefHeader returns the header columns active for the given flags,
// matching the presence/absence columns the core's detailed/CI output
// toggles control.
func queryRefHeader(useAA, estCI, detailed bool) []string {
	idLabel := "ANI"
	if useAA {
		idLabel = "AAI"
	}
	cols := []string{"Ref_file", "Query_file", idLabel, "Align_fraction_ref", "Align_fraction_query"}
	if estCI {
		cols = append(cols, idLabel+"_CI_lower", idLabel+"_CI_upper")
	}
	if detailed {
		cols = append(cols, "Ref_name", "Query_name")
	}
	return cols
}

func writeQueryRefRow(w *bufio.Writer, e skani.AniEstimate, useAA, estCI, detailed bool) {
	fmt.Fprintf(w, "%s\t%s\t%.2f\t%.4f\t%.4f", e.RefName, e.QueryName, e.Ani, e.AfRef, e.AfQuery)
	if estCI {
		fmt.Fprintf(w, "\t%.2f\t%.2f", e.CILower, e.CIUpper)
	}
	if detailed {
		fmt.Fprintf(w, "\t%s\t%s", e.RefName, e.QueryName)
	}
	w.WriteByte('\n')
}

// WriteQueryRefList appends (or, if firstWrite, truncates and writes a
// header then appends) one row per result, sorted within the batch by
// descending identity and capped at maxResultsPerQuery per distinct query
// name when maxResultsPerQuery > 0 (§5 "Dist mode output").
func WriteQueryRefList(results []skani.AniEstimate, outFile string, maxResultsPerQuery int, useAA, estCI, detailed, firstWrite bool) error {
	out, err := openOut(outFile, false, firstWrite)
	if err != nil {
		return err
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	if firstWrite {
		w.WriteString(joinTabs(queryRefHeader(useAA, estCI, detailed)))
		w.WriteByte('\n')
	}

	for _, group := range groupByQuery(results) {
		sort.Slice(group, func(i, j int) bool { return group[i].Ani > group[j].Ani })
		if maxResultsPerQuery > 0 && len(group) > maxResultsPerQuery {
			group = group[:maxResultsPerQuery]
		}
		for _, e := range group {
			writeQueryRefRow(w, e, useAA, estCI, detailed)
		}
	}

	return w.Flush()
}

// WriteSparseMatrix writes the same row format as WriteQueryRefList, with
// no per-query grouping or truncation: every pair above the discard
// threshold that the Triangle driver kept is written (§5 "Triangle --sparse
// output").
func WriteSparseMatrix(results []skani.AniEstimate, outFile string, useAA, estCI, detailed, firstWrite bool) error {
	out, err := openOut(outFile, false, firstWrite)
	if err != nil {
		return err
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	if firstWrite {
		w.WriteString(joinTabs(queryRefHeader(useAA, estCI, detailed)))
		w.WriteByte('\n')
	}
	for _, e := range results {
		writeQueryRefRow(w, e, useAA, estCI, detailed)
	}
	return w.Flush()
}

// WritePhylipMatrix renders the full pairwise accumulator as a PHYLIP-style
// distance/identity matrix: a leading record count, then one row per name
// with that name followed by its values (§5 "Triangle phylip output"). With
// fullMatrix every row has one value per column; otherwise row i holds only
// columns 0..i (lower triangle with the diagonal). Missing pairs (never
// chained, or discarded) are held as NaN and printed as "NA", since a 0
// would be indistinguishable from a genuine zero-identity result.
func WritePhylipMatrix(results []skani.AniEstimate, names []string, fullMatrix, distance bool) ([]byte, error) {
	ordered := append([]string(nil), names...)
	sortutil.Strings(ordered)

	index := make(map[string]int, len(ordered))
	for i, n := range ordered {
		index[n] = i
	}

	n := len(ordered)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			matrix[i][j] = math.NaN()
		}
		matrix[i][i] = valueFor(100, distance)
	}

	for _, e := range results {
		i, okI := index[e.RefName]
		j, okJ := index[e.QueryName]
		if !okI || !okJ {
			continue
		}
		v := valueFor(e.Ani, distance)
		matrix[i][j] = v
		matrix[j][i] = v
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", n)
	for i, name := range ordered {
		buf.WriteString(name)
		upperBound := n
		if !fullMatrix {
			upperBound = i + 1
		}
		for j := 0; j < upperBound; j++ {
			fmt.Fprintf(&buf, "\t%s", formatPhylipValue(matrix[i][j]))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func valueFor(ani float64, distance bool) float64 {
	if distance {
		return 100 - ani
	}
	return ani
}

func formatPhylipValue(v float64) string {
	if v != v { // NaN
		return "NA"
	}
	return fmt.Sprintf("%.4f", v)
}

func joinTabs(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += "\t"
		}
		out += c
	}
	return out
}

func groupByQuery(results []skani.AniEstimate) [][]skani.AniEstimate {
	order := make([]string, 0)
	groups := make(map[string][]skani.AniEstimate)
	for _, e := range results {
		if _, ok := groups[e.QueryName]; !ok {
			order = append(order, e.QueryName)
		}
		groups[e.QueryName] = append(groups[e.QueryName], e)
	}
	out := make([][]skani.AniEstimate, 0, len(order))
	for _, name := range order {
		out = append(out, groups[name])
	}
	return out
}
