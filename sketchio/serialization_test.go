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
	"bytes"
	"io"
	"testing"

	"github.com/alienzj/skani-go"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	params := skani.SketchParams{C: 125, K: 15, UseAA: false}
	sketches := []skani.Sketch{
		{
			FileName:    "a.fna",
			SeqLength:   1000,
			ContigNames: []string{"chr1"},
			Seeds:       []uint64{1, 2, 3},
			Positions:   []int{0, 10, 20},
			MarkerSeeds: []uint64{1},
		},
		{
			FileName:    "b.fna",
			SeqLength:   2000,
			ContigNames: []string{"chr1", "chr2"},
			Seeds:       nil,
			Positions:   nil,
			MarkerSeeds: nil,
		},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, params, uint64(len(sketches)))
	for _, sk := range sketches {
		if err := w.Write(sk); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if !r.Params.Equal(params) {
		t.Fatalf("header params mismatch: got %+v, want %+v", r.Params, params)
	}
	if r.NumSketches != uint64(len(sketches)) {
		t.Fatalf("unmatch NumSketches: got %d, want %d", r.NumSketches, len(sketches))
	}

	var got []skani.Sketch
	for {
		sk, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			t.Fatalf("Read: %v", err)
		}
		got = append(got, sk)
	}

	if len(got) != len(sketches) {
		t.Fatalf("unmatch sketch count: got %d, want %d", len(got), len(sketches))
	}
	for i, sk := range sketches {
		if got[i].FileName != sk.FileName {
			t.Errorf("sketch %d: unmatch FileName: got %s, want %s", i, got[i].FileName, sk.FileName)
		}
		if got[i].SeqLength != sk.SeqLength {
			t.Errorf("sketch %d: unmatch SeqLength", i)
		}
		if len(got[i].ContigNames) != len(sk.ContigNames) {
			t.Errorf("sketch %d: unmatch ContigNames length", i)
		}
		if len(got[i].Seeds) != len(sk.Seeds) {
			t.Errorf("sketch %d: unmatch Seeds length", i)
		}
		for j, s := range sk.Seeds {
			if got[i].Seeds[j] != s {
				t.Errorf("sketch %d: unmatch seed %d", i, j)
			}
		}
	}
}

func TestWriterFlushCountMismatch(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, skani.SketchParams{C: 10, K: 15}, 2)
	if err := w.Write(skani.Sketch{FileName: "only-one"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err == nil {
		t.Fatal("expected Flush to report a count mismatch")
	}
}

func TestReaderInvalidMagic(t *testing.T) {
	if _, err := NewReader(bytes.NewReader([]byte("not-a-sketch-db"))); err != ErrInvalidFormat {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}
