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
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alienzj/skani-go"
	"github.com/alienzj/skani-go/sketchio"
)

var sketchCmd = &cobra.Command{
	Use:   "sketch",
	Short: "build a reusable sketch database from FASTA/FASTQ inputs",
	Long: `build a reusable sketch database from FASTA/FASTQ inputs

Writes one sketch per input file (or, with --i, one sketch per contig) into
the output database named by -o, readable back by dist/triangle/search via
their --*-are-sketch flags or -d sketch-directory flag.
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

		var sketches []skani.Sketch
		var err error
		if getFlagBool(cmd, "i") {
			sketches, err = sketchio.FastxToMultipleSketchRewrite(files, params, !params.UseAA)
		} else {
			sketches, err = sketchio.FastxToSketches(files, params, !params.UseAA)
		}
		checkError(err)

		outFile := getFlagString(cmd, "o")
		checkError(sketchio.SaveSketches(outFile, params, sketches))

		totalSeeds := 0
		for _, s := range sketches {
			totalSeeds += len(s.Seeds)
		}
		log.Infof("wrote %d sketches (%s seeds total) to %s", len(sketches), humanize.Comma(int64(totalSeeds)), outFile)
	},
}

func init() {
	RootCmd.AddCommand(sketchCmd)

	sketchCmd.Flags().StringP("l", "l", "", "file listing input genome files, one per line")
	sketchCmd.Flags().Bool("i", false, "split each input into one sketch per contig")
	sketchCmd.Flags().BoolP("a", "a", false, "amino-acid mode")
	sketchCmd.Flags().IntP("c", "c", 125, "sketch compression factor")
	sketchCmd.Flags().IntP("k", "k", 0, "seed k-mer length override (0 = mode default)")
	sketchCmd.Flags().StringP("o", "o", "markers.bin", "output sketch database file")
}
