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

package sketchio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alienzj/skani-go"
)

func TestSaveAndLoadSketches(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.sketch")

	params := skani.SketchParams{C: 125, K: 15, UseAA: false}
	sketches := []skani.Sketch{
		{FileName: "a.fna", SeqLength: 100, Seeds: []uint64{1, 2}},
		{FileName: "b.fna", SeqLength: 200, Seeds: []uint64{3, 4, 5}},
	}

	if err := SaveSketches(file, params, sketches); err != nil {
		t.Fatalf("SaveSketches: %v", err)
	}

	loadedParams, loaded, err := SketchesFromSketch([]string{file})
	if err != nil {
		t.Fatalf("SketchesFromSketch: %v", err)
	}
	if !loadedParams.Equal(params) {
		t.Fatalf("unmatch params: got %+v, want %+v", loadedParams, params)
	}
	if len(loaded) != len(sketches) {
		t.Fatalf("unmatch sketch count: got %d, want %d", len(loaded), len(sketches))
	}
	for i, sk := range sketches {
		if loaded[i].FileName != sk.FileName {
			t.Errorf("sketch %d: unmatch FileName", i)
		}
	}
}

func TestSketchesFromSketchIncompatibleParams(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.sketch")
	fileB := filepath.Join(dir, "b.sketch")

	if err := SaveSketches(fileA, skani.SketchParams{C: 125, K: 15}, []skani.Sketch{{FileName: "a"}}); err != nil {
		t.Fatalf("SaveSketches a: %v", err)
	}
	if err := SaveSketches(fileB, skani.SketchParams{C: 1000, K: 7, UseAA: true}, []skani.Sketch{{FileName: "b"}}); err != nil {
		t.Fatalf("SaveSketches b: %v", err)
	}

	if _, _, err := SketchesFromSketch([]string{fileA, fileB}); err == nil {
		t.Fatal("expected an error loading sketch databases with incompatible parameters")
	}
}

func TestIsSketchFile(t *testing.T) {
	dir := t.TempDir()
	sketchFile := filepath.Join(dir, "db.sketch")
	if err := SaveSketches(sketchFile, skani.SketchParams{C: 125, K: 15}, []skani.Sketch{{FileName: "a"}}); err != nil {
		t.Fatalf("SaveSketches: %v", err)
	}
	ok, err := IsSketchFile(sketchFile)
	if err != nil {
		t.Fatalf("IsSketchFile: %v", err)
	}
	if !ok {
		t.Error("expected a saved sketch database to be recognized as one")
	}

	fastaFile := filepath.Join(dir, "genome.fna")
	if err := os.WriteFile(fastaFile, []byte(">chr1\nACGT\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	ok, err = IsSketchFile(fastaFile)
	if err != nil {
		t.Fatalf("IsSketchFile: %v", err)
	}
	if ok {
		t.Error("expected a FASTA file not to be recognized as a sketch database")
	}
}
