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

// Package sketchio is the SketchStore external collaborator (§6): building
// sketches from FASTA/FASTQ/gzipped input, and loading/saving the
// persisted .sketch/markers.bin files. Sketch construction's exact
// k-mer-minimization algorithm is a Non-goal (spec.md §1); what's here is a
// FracMinHash-style density sampler, good enough to feed the core pipeline.
package sketchio

import (
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/will-rowe/nthash"

	"github.com/alienzj/skani-go"
)

// markerDensityFactor: markers are a sparser subsample of the full seed
// set, sampled at roughly 1/(C*markerDensityFactor) instead of 1/C.
const markerDensityFactor = 20

// FastxToSketches builds one Sketch per input file (sequence records within
// a file are concatenated into a single sketch), matching §6's
// "fastx_to_sketches (one sketch per file)".
func FastxToSketches(files []string, params skani.SketchParams, canonical bool) ([]skani.Sketch, error) {
	sketches := make([]skani.Sketch, 0, len(files))
	for _, file := range files {
		sk, err := sketchFile(file, file, params, canonical)
		if err != nil {
			return nil, errors.Wrapf(err, "sketching %s", file)
		}
		sketches = append(sketches, sk)
	}
	return sketches, nil
}

// FastxToMultipleSketchRewrite builds one sketch per contig/record across
// all input files, matching §6's "fastx_to_multiple_sketch_rewrite", used
// when CommandParams.IndividualContigR/Q is set.
func FastxToMultipleSketchRewrite(files []string, params skani.SketchParams, canonical bool) ([]skani.Sketch, error) {
	var sketches []skani.Sketch
	for _, file := range files {
		reader, err := fastx.NewDefaultReader(file)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", file)
		}
		for {
			record, err := reader.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				return nil, errors.Wrapf(err, "reading %s", file)
			}
			sk, err := sketchRecord(file, string(record.Name), record, params, canonical)
			if err != nil {
				return nil, err
			}
			sk.ContigNames = []string{string(record.Name)}
			sketches = append(sketches, sk)
		}
	}
	return sketches, nil
}

func sketchFile(file, name string, params skani.SketchParams, canonical bool) (skani.Sketch, error) {
	reader, err := fastx.NewDefaultReader(file)
	if err != nil {
		return skani.Sketch{}, err
	}

	sk := skani.Sketch{FileName: name, UseAA: params.UseAA}
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return skani.Sketch{}, err
		}
		contig, err := sketchRecord(file, string(record.Name), record, params, canonical)
		if err != nil {
			return skani.Sketch{}, err
		}
		sk.ContigNames = append(sk.ContigNames, string(record.Name))
		sk.SeqLength += contig.SeqLength
		sk.Seeds = append(sk.Seeds, contig.Seeds...)
		sk.Positions = append(sk.Positions, contig.Positions...)
		sk.MarkerSeeds = append(sk.MarkerSeeds, contig.MarkerSeeds...)
	}
	return sk, nil
}

func sketchRecord(file, name string, record *fastx.Record, params skani.SketchParams, canonical bool) (skani.Sketch, error) {
	sk := skani.Sketch{FileName: name, UseAA: params.UseAA, SeqLength: len(record.Seq.Seq)}
	if len(record.Seq.Seq) < params.K {
		return sk, nil
	}

	seeds, positions, markers, err := sketchSequence(record.Seq, params, canonical)
	if err != nil {
		return skani.Sketch{}, errors.Wrapf(err, "sketching record %s in %s", name, file)
	}
	sk.Seeds = seeds
	sk.Positions = positions
	sk.MarkerSeeds = markers
	return sk, nil
}

// sketchSequence draws a FracMinHash-style sample of k-mers from s: a
// k-mer's hash h is kept as a seed iff h < maxUint64/C, and further kept as
// a marker iff h < maxUint64/(C*markerDensityFactor). Both tests use the
// same hash value (ntHash for DNA, xxhash of the encoded k-mer for amino
// acids), so markers are always a subset of seeds.
func sketchSequence(s *seq.Seq, params skani.SketchParams, canonical bool) (seeds []uint64, positions []int, markers []uint64, err error) {
	c := uint64(params.C)
	if c == 0 {
		c = 1
	}
	seedCutoff := ^uint64(0) / c
	markerCutoff := ^uint64(0) / (c * markerDensityFactor)

	if params.UseAA {
		return sketchAminoAcid(s.Seq, params.K, seedCutoff, markerCutoff)
	}
	return sketchNucleotide(s, params.K, canonical, seedCutoff, markerCutoff)
}

func sketchNucleotide(s *seq.Seq, k int, canonical bool, seedCutoff, markerCutoff uint64) ([]uint64, []int, []uint64, error) {
	if len(s.Seq) < k {
		return nil, nil, nil, nil
	}
	seqBytes := s.Seq
	hasher, err := nthash.NewHasher(&seqBytes, uint(k))
	if err != nil {
		return nil, nil, nil, err
	}

	var seeds []uint64
	var positions []int
	var markers []uint64
	idx := 0
	for {
		h, ok := hasher.Next(canonical)
		if !ok {
			break
		}
		if h < seedCutoff {
			seeds = append(seeds, h)
			positions = append(positions, idx)
			if h < markerCutoff {
				markers = append(markers, h)
			}
		}
		idx++
	}
	return seeds, positions, markers, nil
}

func sketchAminoAcid(s []byte, k int, seedCutoff, markerCutoff uint64) ([]uint64, []int, []uint64, error) {
	if len(s) < k {
		return nil, nil, nil, nil
	}
	var seeds []uint64
	var positions []int
	var markers []uint64
	for i := 0; i+k <= len(s); i++ {
		code, err := skani.EncodeAA(s[i : i+k])
		if err != nil {
			continue
		}
		h := xxhash.Sum64(uint64ToBytes(code))
		if h < seedCutoff {
			seeds = append(seeds, h)
			positions = append(positions, i)
			if h < markerCutoff {
				markers = append(markers, h)
			}
		}
	}
	return seeds, positions, markers, nil
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}
