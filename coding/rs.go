// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "github.com/qr-codec/qrcodec/gf256"

// blocks splits data (exactly p.DataBytes() long) into p.Blocks()
// slices: p.N1 of length p.K1 followed by p.N2 of length p.K2.
func (p BlockPartition) blocks(data []byte) [][]byte {
	out := make([][]byte, 0, p.Blocks())
	for i := 0; i < p.N1; i++ {
		out = append(out, data[:p.K1])
		data = data[p.K1:]
	}
	for i := 0; i < p.N2; i++ {
		out = append(out, data[:p.K2])
		data = data[p.K2:]
	}
	return out
}

// interleave writes one byte at a time from each of blocks in turn
// (ISO/IEC 18004 §8.6) into dst, which must be long enough to hold
// the concatenation of every block.
func interleave(dst []byte, blocks [][]byte) {
	n := 0
	for {
		wrote := false
		for _, b := range blocks {
			if n >= len(b) {
				continue
			}
			dst[0] = b[n]
			dst = dst[1:]
			wrote = true
		}
		if !wrote {
			break
		}
		n++
	}
}

// deinterleave is the inverse of interleave: it distributes src
// (length sum of blockLens) column-by-column into newly allocated
// blocks of the given lengths.
func deinterleave(src []byte, blockLens []int) [][]byte {
	blocks := make([][]byte, len(blockLens))
	for i, l := range blockLens {
		blocks[i] = make([]byte, l)
	}
	n := 0
	for {
		wrote := false
		for i, b := range blocks {
			if n >= blockLens[i] {
				continue
			}
			b[n] = src[0]
			src = src[1:]
			wrote = true
		}
		if !wrote {
			break
		}
		n++
	}
	return blocks
}

// EncodeCodewords lays out data (v.DataBytes(l) bytes) into Reed-Solomon
// blocks per (v, l), computes each block's error-correction codewords
// and returns the full interleaved data+ECC codeword stream ready for
// WriteCodewords.
func EncodeCodewords(v Version, l Level, data []byte) []byte {
	p := v.Partition(l)
	dataBlocks := p.blocks(data)
	eccBlocks := make([][]byte, len(dataBlocks))
	enc := gf256.NewRSEncoder(gf256.QR, p.EccPerBlock)
	for i, b := range dataBlocks {
		ecc := make([]byte, p.EccPerBlock)
		enc.ECC(b, ecc)
		eccBlocks[i] = ecc
	}
	out := make([]byte, p.TotalBytes())
	interleave(out[:p.DataBytes()], dataBlocks)
	interleave(out[p.DataBytes():], eccBlocks)
	return out
}

// DecodeCodewords reverses EncodeCodewords: it de-interleaves the raw
// codeword stream into blocks, Reed-Solomon corrects each one, and
// returns the corrected data bytes.  It returns an *Error of kind
// UnrecoverableBlock if any block has more errors than its parity can
// correct.
func DecodeCodewords(v Version, l Level, raw []byte) ([]byte, error) {
	p := v.Partition(l)
	dataLens := blockLens(p.N1, p.K1, p.N2, p.K2)
	eccLens := make([]int, p.Blocks())
	for i := range eccLens {
		eccLens[i] = p.EccPerBlock
	}
	dataBlocks := deinterleave(raw[:p.DataBytes()], dataLens)
	eccBlocks := deinterleave(raw[p.DataBytes():], eccLens)

	dec := gf256.NewRSDecoder(gf256.QR, p.EccPerBlock)
	out := make([]byte, 0, p.DataBytes())
	for i, db := range dataBlocks {
		block := append(append([]byte(nil), db...), eccBlocks[i]...)
		if _, err := dec.Correct(block); err != nil {
			return nil, errf(UnrecoverableBlock, "block %d of %d: %v", i+1, p.Blocks(), err)
		}
		out = append(out, block[:len(db)]...)
	}
	return out, nil
}

func blockLens(n1, k1, n2, k2 int) []int {
	lens := make([]int, 0, n1+n2)
	for i := 0; i < n1; i++ {
		lens = append(lens, k1)
	}
	for i := 0; i < n2; i++ {
		lens = append(lens, k2)
	}
	return lens
}
