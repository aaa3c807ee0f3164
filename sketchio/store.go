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
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"

	"github.com/alienzj/skani-go"
)

// IsSketchFile sniffs the first 8 bytes of file for the markers.bin/.sketch
// magic number, so callers can tell a persisted sketch database apart from
// a raw FASTA/FASTQ input (the CommandParams.RefsAreSketch/QueriesAreSketch
// flags let the user assert this directly instead).
func IsSketchFile(file string) (bool, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return false, err
	}
	defer fh.Close()

	var m [8]byte
	_, err = io.ReadFull(fh, m[:])
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return m == Magic, nil
}

// SaveSketches writes sketches to outFile as a single markers.bin-style
// database, all sharing params.
func SaveSketches(outFile string, params skani.SketchParams, sketches []skani.Sketch) error {
	fh, err := xopen.WopenGzip(outFile)
	if err != nil {
		return errors.Wrapf(err, "creating %s", outFile)
	}
	defer fh.Close()

	w := NewWriter(fh, params, uint64(len(sketches)))
	for _, sk := range sketches {
		if err := w.Write(sk); err != nil {
			return errors.Wrapf(err, "writing sketch %s", sk.FileName)
		}
	}
	return w.Flush()
}

// SketchesFromSketch loads every sketch database named in files, checking
// that they all declare compatible SketchParams (§6 "Persisted sketch
// files"). Returns the shared params and the concatenated sketch list.
func SketchesFromSketch(files []string) (skani.SketchParams, []skani.Sketch, error) {
	var params skani.SketchParams
	var sketches []skani.Sketch

	for i, file := range files {
		fh, err := xopen.Ropen(file)
		if err != nil {
			return params, nil, errors.Wrapf(err, "opening %s", file)
		}

		r, err := NewReader(fh)
		if err != nil {
			fh.Close()
			return params, nil, errors.Wrapf(err, "reading header of %s", file)
		}

		if i == 0 {
			params = r.Params
		} else if !params.Equal(r.Params) {
			fh.Close()
			return params, nil, errors.Errorf("sketch database %s has incompatible parameters with prior inputs", file)
		}

		for {
			sk, err := r.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				fh.Close()
				return params, nil, errors.Wrapf(err, "reading sketches from %s", file)
			}
			sketches = append(sketches, sk)
		}
		fh.Close()
	}

	return params, sketches, nil
}
