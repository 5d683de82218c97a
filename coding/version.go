// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package coding implements the low-level QR code symbology: module
placement, masking, Reed-Solomon block layout, format/version information
and the per-mode data segment codec.  It implements ISO/IEC 18004
versions 1 through 40 and error correction levels L, M, Q and H.
*/
package coding // import "github.com/qr-codec/qrcodec/coding"

import (
	"errors"
	"strconv"
)

var (
	ErrVersion = errors.New("qr: invalid version")
	ErrLevel   = errors.New("qr: invalid level")
)

// A Version represents a QR code version 1-40.  Version v has a symbol
// side of 17+4v modules.
type Version int

const (
	MinVersion Version = 1
	MaxVersion Version = 40
)

func (v Version) String() string { return strconv.Itoa(int(v)) }

// Valid reports whether v is a supported version.
func (v Version) Valid() bool { return v >= MinVersion && v <= MaxVersion }

// Size returns the symbol's side length in modules.
func (v Version) Size() int { return int(v)*4 + 17 }

// SizeClass returns 0, 1 or 2 for the character-count-indicator width
// bracket (1-9, 10-26, 27-40) that v falls in.
func (v Version) SizeClass() int {
	switch {
	case v <= 9:
		return 0
	case v <= 26:
		return 1
	default:
		return 2
	}
}

// VersionForSize returns the Version for a symbol of side length s, or
// an error if s is not a valid QR symbol size ((s-17) mod 4 != 0, or out
// of range).
func VersionForSize(s int) (Version, error) {
	if s < 21 || s > 177 || (s-17)%4 != 0 {
		return 0, ErrVersion
	}
	return Version((s - 17) / 4), nil
}

// A Level represents a QR error correction level.  From least to most
// tolerant of errors: L, M, Q, H.
type Level int

const (
	L Level = iota // ~7%  (historically labelled 20% in some texts)
	M              // ~15%
	Q              // ~25%
	H              // ~30%
)

func (l Level) String() string {
	if L <= l && l <= H {
		return "LMQH"[l : l+1]
	}
	return strconv.Itoa(int(l))
}

// Valid reports whether l is a supported error correction level.
func (l Level) Valid() bool { return l >= L && l <= H }

// levelBits is the 2-bit wire code for each level, indexed by Level:
// L=01, M=00, Q=11, H=10.
var levelBits = [4]byte{L: 0x1, M: 0x0, Q: 0x3, H: 0x2}

// bitsToLevel inverts levelBits.
var bitsToLevel = [4]Level{0x1: L, 0x0: M, 0x3: Q, 0x2: H}

// BlockPartition describes how the codewords of a (version, level) pair
// are split into Reed-Solomon blocks: n1 blocks of k1 data bytes and n2
// blocks of k2=k1+1 data bytes, each followed by eccPerBlock check bytes.
type BlockPartition struct {
	EccPerBlock int
	N1, K1      int
	N2, K2      int
}

// Blocks returns the total number of blocks.
func (b BlockPartition) Blocks() int { return b.N1 + b.N2 }

// DataBytes returns the total number of data (non-ECC) bytes.
func (b BlockPartition) DataBytes() int { return b.N1*b.K1 + b.N2*b.K2 }

// TotalBytes returns the total number of codewords (data+ECC).
func (b BlockPartition) TotalBytes() int {
	return b.DataBytes() + (b.N1+b.N2)*b.EccPerBlock
}

// versionInfo holds the per-version parameters needed to build a plan:
// alignment pattern placement, total codewords and the block partition
// for each error correction level.
type versionInfo struct {
	alignFirst  int // first alignment pattern centre after 6, or 0
	alignStride int // spacing between alignment centres
	totalBytes  int // total codewords (data+ECC) at this version
	level       [4]rawLevel
}

type rawLevel struct {
	nblock int // n1+n2
	eccLen int // total ECC bytes for all blocks (== eccPerBlock * nblock)
	necc   int // n2 (blocks with one extra data byte)
}

// capacity and eccTable below are ported unchanged from the
// qrencode-3.1.1 capacity table (gen.go) and match ISO/IEC 18004 Annex
// exactly.
//
// capacity[v] = {total codewords, total ECC codewords at L, M, Q, H}
var capacity = [41]struct {
	words int
	ec    [4]int
}{
	{0, [4]int{0, 0, 0, 0}},
	{26, [4]int{7, 10, 13, 17}},
	{44, [4]int{10, 16, 22, 28}},
	{70, [4]int{15, 26, 36, 44}},
	{100, [4]int{20, 36, 52, 64}},
	{134, [4]int{26, 48, 72, 88}},
	{172, [4]int{36, 64, 96, 112}},
	{196, [4]int{40, 72, 108, 130}},
	{242, [4]int{48, 88, 132, 156}},
	{292, [4]int{60, 110, 160, 192}},
	{346, [4]int{72, 130, 192, 224}},
	{404, [4]int{80, 150, 224, 264}},
	{466, [4]int{96, 176, 260, 308}},
	{532, [4]int{104, 198, 288, 352}},
	{581, [4]int{120, 216, 320, 384}},
	{655, [4]int{132, 240, 360, 432}},
	{733, [4]int{144, 280, 408, 480}},
	{815, [4]int{168, 308, 448, 532}},
	{901, [4]int{180, 338, 504, 588}},
	{991, [4]int{196, 364, 546, 650}},
	{1085, [4]int{224, 416, 600, 700}},
	{1156, [4]int{224, 442, 644, 750}},
	{1258, [4]int{252, 476, 690, 816}},
	{1364, [4]int{270, 504, 750, 900}},
	{1474, [4]int{300, 560, 810, 960}},
	{1588, [4]int{312, 588, 870, 1050}},
	{1706, [4]int{336, 644, 952, 1110}},
	{1828, [4]int{360, 700, 1020, 1200}},
	{1921, [4]int{390, 728, 1050, 1260}},
	{2051, [4]int{420, 784, 1140, 1350}},
	{2185, [4]int{450, 812, 1200, 1440}},
	{2323, [4]int{480, 868, 1290, 1530}},
	{2465, [4]int{510, 924, 1350, 1620}},
	{2611, [4]int{540, 980, 1440, 1710}},
	{2761, [4]int{570, 1036, 1530, 1800}},
	{2876, [4]int{570, 1064, 1590, 1890}},
	{3034, [4]int{600, 1120, 1680, 1980}},
	{3196, [4]int{630, 1204, 1770, 2100}},
	{3362, [4]int{660, 1260, 1860, 2220}},
	{3532, [4]int{720, 1316, 1950, 2310}},
	{3706, [4]int{750, 1372, 2040, 2430}},
}

// eccTable[v][level] = {n1, n2}: block counts in groups 1 and 2.
var eccTable = [41][4][2]int{
	{},
	{{1, 0}, {1, 0}, {1, 0}, {1, 0}},
	{{1, 0}, {1, 0}, {1, 0}, {1, 0}},
	{{1, 0}, {1, 0}, {2, 0}, {2, 0}},
	{{1, 0}, {2, 0}, {2, 0}, {4, 0}},
	{{1, 0}, {2, 0}, {2, 2}, {2, 2}},
	{{2, 0}, {4, 0}, {4, 0}, {4, 0}},
	{{2, 0}, {4, 0}, {2, 4}, {4, 1}},
	{{2, 0}, {2, 2}, {4, 2}, {4, 2}},
	{{2, 0}, {3, 2}, {4, 4}, {4, 4}},
	{{2, 2}, {4, 1}, {6, 2}, {6, 2}},
	{{4, 0}, {1, 4}, {4, 4}, {3, 8}},
	{{2, 2}, {6, 2}, {4, 6}, {7, 4}},
	{{4, 0}, {8, 1}, {8, 4}, {12, 4}},
	{{3, 1}, {4, 5}, {11, 5}, {11, 5}},
	{{5, 1}, {5, 5}, {5, 7}, {11, 7}},
	{{5, 1}, {7, 3}, {15, 2}, {3, 13}},
	{{1, 5}, {10, 1}, {1, 15}, {2, 17}},
	{{5, 1}, {9, 4}, {17, 1}, {2, 19}},
	{{3, 4}, {3, 11}, {17, 4}, {9, 16}},
	{{3, 5}, {3, 13}, {15, 5}, {15, 10}},
	{{4, 4}, {17, 0}, {17, 6}, {19, 6}},
	{{2, 7}, {17, 0}, {7, 16}, {34, 0}},
	{{4, 5}, {4, 14}, {11, 14}, {16, 14}},
	{{6, 4}, {6, 14}, {11, 16}, {30, 2}},
	{{8, 4}, {8, 13}, {7, 22}, {22, 13}},
	{{10, 2}, {19, 4}, {28, 6}, {33, 4}},
	{{8, 4}, {22, 3}, {8, 26}, {12, 28}},
	{{3, 10}, {3, 23}, {4, 31}, {11, 31}},
	{{7, 7}, {21, 7}, {1, 37}, {19, 26}},
	{{5, 10}, {19, 10}, {15, 25}, {23, 25}},
	{{13, 3}, {2, 29}, {42, 1}, {23, 28}},
	{{17, 0}, {10, 23}, {10, 35}, {19, 35}},
	{{17, 1}, {14, 21}, {29, 19}, {11, 46}},
	{{13, 6}, {14, 23}, {44, 7}, {59, 1}},
	{{12, 7}, {12, 26}, {39, 14}, {22, 41}},
	{{6, 14}, {6, 34}, {46, 10}, {2, 64}},
	{{17, 4}, {29, 14}, {49, 10}, {24, 46}},
	{{4, 18}, {13, 32}, {48, 14}, {42, 32}},
	{{20, 4}, {40, 7}, {43, 22}, {10, 67}},
	{{19, 6}, {18, 31}, {34, 34}, {20, 61}},
}

// align[v] = {second, third} alignment pattern centre coordinate (the
// first is always 6; third is 0 when there is none); full coordinate
// lists are derived from these two in AlignCoords.
var align = [41][2]int{
	{0, 0},
	{0, 0}, {18, 0}, {22, 0}, {26, 0}, {30, 0},
	{34, 0}, {22, 38}, {24, 42}, {26, 46}, {28, 50},
	{30, 54}, {32, 58}, {34, 62}, {26, 46}, {26, 48},
	{26, 50}, {30, 54}, {30, 56}, {30, 58}, {34, 62},
	{28, 50}, {26, 50}, {30, 54}, {28, 54}, {32, 58},
	{30, 58}, {34, 62}, {26, 50}, {30, 54}, {26, 52},
	{30, 56}, {34, 60}, {30, 58}, {34, 62}, {30, 54},
	{24, 50}, {28, 54}, {32, 58}, {26, 54}, {30, 58},
}

// vtab[v] is computed once from the literal tables above.
var vtab [41]versionInfo

func init() {
	for v := 1; v <= 40; v++ {
		var vi versionInfo
		if align[v][0] != 0 {
			vi.alignFirst = align[v][0]
			if align[v][1] > align[v][0] {
				vi.alignStride = align[v][1] - align[v][0]
			}
		}
		vi.totalBytes = capacity[v].words
		for l := 0; l < 4; l++ {
			n1, n2 := eccTable[v][l][0], eccTable[v][l][1]
			nblock := n1 + n2
			eccTotal := capacity[v].ec[l]
			vi.level[l] = rawLevel{
				nblock: nblock,
				eccLen: eccTotal,
				necc:   n2,
			}
		}
		vtab[v] = vi
	}
}

// AlignCoords returns the alignment pattern centre coordinates for v, in
// ascending order, per ISO/IEC 18004 Table E.1.  Coordinates within 8
// modules of a finder pattern corner are never requested by callers of
// this function; Matrix.stampAlignment filters them out regardless.
func (v Version) AlignCoords() []int {
	vi := &vtab[v]
	if vi.alignFirst == 0 {
		return nil
	}
	if vi.alignStride == 0 {
		return []int{6, vi.alignFirst}
	}
	siz := v.Size()
	coords := []int{6}
	for x := vi.alignFirst; x < siz-6; x += vi.alignStride {
		coords = append(coords, x)
	}
	return coords
}

// eccPerBlock returns the number of ECC bytes per block for (v, l).
func eccPerBlock(v Version, l Level) int {
	lv := vtab[v].level[l]
	if lv.nblock == 0 {
		return 0
	}
	return lv.eccLen / lv.nblock
}

// Partition returns the BlockPartition for (v, l).
func (v Version) Partition(l Level) BlockPartition {
	lv := vtab[v].level[l]
	ecc := eccPerBlock(v, l)
	data := vtab[v].totalBytes - lv.eccLen
	n2 := lv.necc
	n1 := lv.nblock - n2
	k1 := data / lv.nblock
	// n1 blocks carry k1 bytes, n2 blocks carry k1+1, matching the total.
	if n1*k1+n2*(k1+1) != data {
		k1 = data/lv.nblock - 1
	}
	return BlockPartition{
		EccPerBlock: ecc,
		N1:          n1,
		K1:          k1,
		N2:          n2,
		K2:          k1 + 1,
	}
}

// TotalCodewords returns the total number of codewords (data+ECC) for v.
func (v Version) TotalCodewords() int { return vtab[v].totalBytes }

// DataBytes returns the number of data (non-ECC) codewords available at
// (v, l).
func (v Version) DataBytes(l Level) int {
	return v.Partition(l).DataBytes()
}

// DataBits returns the number of data bits available at (v, l).
func (v Version) DataBits(l Level) int { return v.DataBytes(l) * 8 }

// RemainderBits returns the number of unused bits after the last full
// codeword when the matrix is serialised, per ISO/IEC 18004 Table 1.
func (v Version) RemainderBits() int {
	switch {
	case v == 1:
		return 0
	case v <= 6:
		return 7
	case v <= 13:
		return 0
	case v <= 20:
		return 3
	case v <= 27:
		return 4
	case v <= 34:
		return 3
	default:
		return 0
	}
}
