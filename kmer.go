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

package skani

import "errors"

// ErrIllegalBase means a residue outside the amino-acid code table below
// was detected.
var ErrIllegalBase = errors.New("skani: illegal base")

// ErrKOverflow means K is 0 or K > 12, outside what fits a uint64 at 5 bits
// per residue.
var ErrKOverflow = errors.New("skani: K (1-12) overflow")

var aaCodeTable = map[byte]uint64{
	'A': 0, 'R': 1, 'N': 2, 'D': 3, 'C': 4, 'Q': 5, 'E': 6, 'G': 7,
	'H': 8, 'I': 9, 'L': 10, 'K': 11, 'M': 12, 'F': 13, 'P': 14, 'S': 15,
	'T': 16, 'W': 17, 'Y': 18, 'V': 19, 'X': 20, '*': 21,
}

// EncodeAA packs an amino-acid k-mer (k<=12) into a uint64 using a 5-bit
// code per residue; used for AAI mode's marker/seed sets.
func EncodeAA(kmer []byte) (code uint64, err error) {
	k := len(kmer)
	if k == 0 || k > 12 {
		return 0, ErrKOverflow
	}
	for i := 0; i < k; i++ {
		v, ok := aaCodeTable[upperByte(kmer[i])]
		if !ok {
			return 0, ErrIllegalBase
		}
		code = code<<5 | v
	}
	return code, nil
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
