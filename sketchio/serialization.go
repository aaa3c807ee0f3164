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
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/alienzj/skani-go"
)

// FormatVersion is the on-disk version of the markers.bin/.sketch format.
const FormatVersion uint8 = 1

// Magic is the 8-byte magic number prefixing every sketch database file.
var Magic = [8]byte{'.', 's', 'k', 'a', 'n', 'i', 'd', 'b'}

// ErrInvalidFormat means the magic number didn't match.
var ErrInvalidFormat = errors.New("sketchio: invalid sketch database format")

// ErrVersionMismatch means the file was written by an incompatible version.
var ErrVersionMismatch = errors.New("sketchio: incompatible sketch database version")

var be = binary.BigEndian

// Header is the fixed-size preamble shared by every sketch database:
// sketch parameters plus a record count, mirroring how the teacher's index
// format keeps K/Canonical/NumSigs ahead of the per-row body.
type Header struct {
	Version    uint8
	Params     skani.SketchParams
	NumSketches uint64
}

// Reader reads a sequence of Sketch records out of a markers.bin/.sketch
// file written by Writer.
type Reader struct {
	Header
	r     io.Reader
	count uint64
}

// NewReader opens r, validates the magic number and reads the header.
func NewReader(r io.Reader) (*Reader, error) {
	reader := &Reader{r: r}
	if err := reader.readHeader(); err != nil {
		return nil, err
	}
	return reader, nil
}

func (reader *Reader) readHeader() error {
	var m [8]byte
	if err := binary.Read(reader.r, be, &m); err != nil {
		return err
	}
	if m != Magic {
		return ErrInvalidFormat
	}

	var meta [4]uint8
	if err := binary.Read(reader.r, be, &meta); err != nil {
		return err
	}
	if meta[0] != FormatVersion {
		return ErrVersionMismatch
	}
	reader.Version = meta[0]
	reader.Params.K = int(meta[1])
	reader.Params.UseAA = meta[2] > 0

	var c uint32
	if err := binary.Read(reader.r, be, &c); err != nil {
		return err
	}
	reader.Params.C = int(c)

	if err := binary.Read(reader.r, be, &reader.NumSketches); err != nil {
		return err
	}
	return nil
}

// Read reads the next Sketch record, returning io.EOF once NumSketches
// records have been consumed.
func (reader *Reader) Read() (skani.Sketch, error) {
	if reader.count >= reader.NumSketches {
		return skani.Sketch{}, io.EOF
	}

	sk := skani.Sketch{UseAA: reader.Params.UseAA}

	name, err := readString(reader.r)
	if err != nil {
		return skani.Sketch{}, err
	}
	sk.FileName = name

	var seqLen uint64
	if err := binary.Read(reader.r, be, &seqLen); err != nil {
		return skani.Sketch{}, err
	}
	sk.SeqLength = int(seqLen)

	var nContigs uint32
	if err := binary.Read(reader.r, be, &nContigs); err != nil {
		return skani.Sketch{}, err
	}
	sk.ContigNames = make([]string, nContigs)
	for i := range sk.ContigNames {
		name, err := readString(reader.r)
		if err != nil {
			return skani.Sketch{}, err
		}
		sk.ContigNames[i] = name
	}

	seeds, err := readUint64Slice(reader.r)
	if err != nil {
		return skani.Sketch{}, err
	}
	sk.Seeds = seeds

	positions, err := readIntSlice(reader.r)
	if err != nil {
		return skani.Sketch{}, err
	}
	sk.Positions = positions

	markers, err := readUint64Slice(reader.r)
	if err != nil {
		return skani.Sketch{}, err
	}
	sk.MarkerSeeds = markers

	reader.count++
	return sk, nil
}

// Writer writes a sequence of Sketch records, lazily emitting the header on
// the first Write call (the teacher's Writer.Write does the same).
type Writer struct {
	Header
	w           io.Writer
	wroteHeader bool
	count       uint64
}

// NewWriter creates a Writer for numSketches records of the given params.
// NumSketches must be known up front, same constraint as the teacher's
// index.Writer.
func NewWriter(w io.Writer, params skani.SketchParams, numSketches uint64) *Writer {
	return &Writer{
		Header: Header{Version: FormatVersion, Params: params, NumSketches: numSketches},
		w:      w,
	}
}

// WriteHeader writes the file header. Called automatically by Write if not
// called explicitly first.
func (writer *Writer) WriteHeader() error {
	if writer.wroteHeader {
		return nil
	}
	w := writer.w

	if err := binary.Write(w, be, Magic); err != nil {
		return err
	}

	var useAA uint8
	if writer.Params.UseAA {
		useAA = 1
	}
	if err := binary.Write(w, be, [4]uint8{writer.Version, uint8(writer.Params.K), useAA, 0}); err != nil {
		return err
	}
	if err := binary.Write(w, be, uint32(writer.Params.C)); err != nil {
		return err
	}
	if err := binary.Write(w, be, writer.NumSketches); err != nil {
		return err
	}

	writer.wroteHeader = true
	return nil
}

// Write appends one Sketch record.
func (writer *Writer) Write(sk skani.Sketch) error {
	if !writer.wroteHeader {
		if err := writer.WriteHeader(); err != nil {
			return err
		}
	}

	if err := writeString(writer.w, sk.FileName); err != nil {
		return err
	}
	if err := binary.Write(writer.w, be, uint64(sk.SeqLength)); err != nil {
		return err
	}
	if err := binary.Write(writer.w, be, uint32(len(sk.ContigNames))); err != nil {
		return err
	}
	for _, name := range sk.ContigNames {
		if err := writeString(writer.w, name); err != nil {
			return err
		}
	}
	if err := writeUint64Slice(writer.w, sk.Seeds); err != nil {
		return err
	}
	if err := writeIntSlice(writer.w, sk.Positions); err != nil {
		return err
	}
	if err := writeUint64Slice(writer.w, sk.MarkerSeeds); err != nil {
		return err
	}

	writer.count++
	return nil
}

// Flush checks that exactly NumSketches records were written.
func (writer *Writer) Flush() error {
	if !writer.wroteHeader {
		if err := writer.WriteHeader(); err != nil {
			return err
		}
	}
	if writer.count != writer.NumSketches {
		return fmt.Errorf("sketchio: wrote %d sketches, header declared %d", writer.count, writer.NumSketches)
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, be, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, be, &n); err != nil {
		return "", err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	return string(data), nil
}

func writeUint64Slice(w io.Writer, s []uint64) error {
	if err := binary.Write(w, be, uint32(len(s))); err != nil {
		return err
	}
	return binary.Write(w, be, s)
}

func readUint64Slice(r io.Reader) ([]uint64, error) {
	var n uint32
	if err := binary.Read(r, be, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	s := make([]uint64, n)
	if err := binary.Read(r, be, s); err != nil {
		return nil, err
	}
	return s, nil
}

func writeIntSlice(w io.Writer, s []int) error {
	if err := binary.Write(w, be, uint32(len(s))); err != nil {
		return err
	}
	for _, v := range s {
		if err := binary.Write(w, be, int64(v)); err != nil {
			return err
		}
	}
	return nil
}

func readIntSlice(r io.Reader) ([]int, error) {
	var n uint32
	if err := binary.Read(r, be, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	s := make([]int, n)
	for i := range s {
		var v int64
		if err := binary.Read(r, be, &v); err != nil {
			return nil, err
		}
		s[i] = int(v)
	}
	return s, nil
}
