// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// Matrix is the module grid of a QR symbol, separated into a colour
// layer and a reserved layer.  Reserved modules (finder, separator,
// timing, alignment, dark module, and the format/version areas) are
// never touched by masking or data placement; everything else is data
// or error-correction payload written by WriteCodewords.
//
// Splitting the two layers lets the encoder build the function
// pattern once per version and reuse it for every mask trial, and
// lets the decoder locate the format/version areas before it knows
// which mask, if any, was used.
type Matrix struct {
	Version  Version
	size     int
	dark     []bool
	reserved []bool
}

// NewMatrix returns a Matrix for v with every function pattern
// stamped and every format/version area reserved (initialised to
// false; callers fill them in with WriteFormat/WriteVersion).
func NewMatrix(v Version) *Matrix {
	m := &Matrix{
		Version:  v,
		size:     v.Size(),
		dark:     make([]bool, v.Size()*v.Size()),
		reserved: make([]bool, v.Size()*v.Size()),
	}
	m.stampFinder(0, 0)
	m.stampFinder(m.size-7, 0)
	m.stampFinder(0, m.size-7)
	m.stampTiming()
	m.stampDarkModule()
	m.stampAlignment()
	m.reserveFormatAreas()
	if v >= 7 {
		m.reserveVersionAreas()
	}
	return m
}

// Size returns the number of modules on a side.
func (m *Matrix) Size() int { return m.size }

func (m *Matrix) idx(x, y int) int { return y*m.size + x }

// At reports whether the module at (x, y) is dark.
func (m *Matrix) At(x, y int) bool { return m.dark[m.idx(x, y)] }

// IsReserved reports whether the module at (x, y) belongs to a
// function pattern or format/version area, and so is never masked or
// used to carry data.
func (m *Matrix) IsReserved(x, y int) bool { return m.reserved[m.idx(x, y)] }

func (m *Matrix) set(x, y int, dark bool) { m.dark[m.idx(x, y)] = dark }

func (m *Matrix) setReserved(x, y int, dark bool) {
	i := m.idx(x, y)
	m.dark[i] = dark
	m.reserved[i] = true
}

// stampFinder draws a 7x7 finder pattern with its top-left corner at
// (x, y), together with the 8x8 reserved footprint that includes the
// 1-module white separator.
func (m *Matrix) stampFinder(x, y int) {
	for dy := -1; dy <= 7; dy++ {
		for dx := -1; dx <= 7; dx++ {
			px, py := x+dx, y+dy
			if px < 0 || py < 0 || px >= m.size || py >= m.size {
				continue
			}
			dark := false
			if dx >= 0 && dx <= 6 && dy >= 0 && dy <= 6 {
				d := dx - 3
				if d < 0 {
					d = -d
				}
				d2 := dy - 3
				if d2 < 0 {
					d2 = -d2
				}
				dist := max(d, d2)
				dark = dist != 2
			}
			m.setReserved(px, py, dark)
		}
	}
}

// stampTiming draws the alternating timing pattern in row 6 and
// column 6, between the two separators.
func (m *Matrix) stampTiming() {
	for c := 8; c < m.size-8; c++ {
		dark := c%2 == 0
		m.setReserved(c, 6, dark)
		m.setReserved(6, c, dark)
	}
}

// stampDarkModule sets the single fixed dark module that exists in
// every version, at (8, size-8).
func (m *Matrix) stampDarkModule() { m.setReserved(8, m.size-8, true) }

// stampAlignment draws every alignment pattern for the version,
// skipping the three coordinate pairs that coincide with a finder
// pattern's footprint.
func (m *Matrix) stampAlignment() {
	coords := m.Version.AlignCoords()
	n := len(coords)
	if n == 0 {
		return
	}
	for i, cx := range coords {
		for j, cy := range coords {
			if (i == 0 && j == 0) || (i == 0 && j == n-1) || (i == n-1 && j == 0) {
				continue
			}
			m.stampAlignmentBox(cx, cy)
		}
	}
}

// stampAlignmentBox draws a 5x5 alignment pattern centred at (cx, cy).
func (m *Matrix) stampAlignmentBox(cx, cy int) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			dist := max(abs(dx), abs(dy))
			m.setReserved(cx+dx, cy+dy, dist != 1)
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// reserveFormatAreas marks the two 15-module format information areas
// without setting their content; WriteFormat fills them in afterward.
func (m *Matrix) reserveFormatAreas() {
	for i := 0; i <= 5; i++ {
		m.setReserved(8, i, false)
	}
	m.setReserved(8, 7, false)
	m.setReserved(8, 8, false)
	m.setReserved(7, 8, false)
	for i := 9; i < 15; i++ {
		m.setReserved(14-i, 8, false)
	}
	for i := 0; i <= 7; i++ {
		m.setReserved(m.size-1-i, 8, false)
	}
	for i := 8; i < 15; i++ {
		m.setReserved(8, m.size-15+i, false)
	}
}

// reserveVersionAreas marks the two 18-module version information
// blocks for versions 7 and up.
func (m *Matrix) reserveVersionAreas() {
	for i := 0; i < 18; i++ {
		a := m.size - 11 + i%3
		b := i / 3
		m.setReserved(a, b, false)
		m.setReserved(b, a, false)
	}
}

// bit returns bit i (0 = least significant) of v.
func bit(v uint32, i int) bool { return v>>uint(i)&1 != 0 }

// WriteFormat stamps both copies of the 15-bit format information
// word.
func (m *Matrix) WriteFormat(word uint16) {
	v := uint32(word)
	for i := 0; i <= 5; i++ {
		m.setReserved(8, i, bit(v, i))
	}
	m.setReserved(8, 7, bit(v, 6))
	m.setReserved(8, 8, bit(v, 7))
	m.setReserved(7, 8, bit(v, 8))
	for i := 9; i < 15; i++ {
		m.setReserved(14-i, 8, bit(v, i))
	}
	for i := 0; i <= 7; i++ {
		m.setReserved(m.size-1-i, 8, bit(v, i))
	}
	for i := 8; i < 15; i++ {
		m.setReserved(8, m.size-15+i, bit(v, i))
	}
}

// ReadFormat reads both copies of the format information word
// independently, for the caller to decode and cross-check.
func (m *Matrix) ReadFormat() (a, b uint16) {
	var av, bv uint32
	for i := 0; i <= 5; i++ {
		if m.At(8, i) {
			av |= 1 << uint(i)
		}
	}
	if m.At(8, 7) {
		av |= 1 << 6
	}
	if m.At(8, 8) {
		av |= 1 << 7
	}
	if m.At(7, 8) {
		av |= 1 << 8
	}
	for i := 9; i < 15; i++ {
		if m.At(14-i, 8) {
			av |= 1 << uint(i)
		}
	}
	for i := 0; i <= 7; i++ {
		if m.At(m.size-1-i, 8) {
			bv |= 1 << uint(i)
		}
	}
	for i := 8; i < 15; i++ {
		if m.At(8, m.size-15+i) {
			bv |= 1 << uint(i)
		}
	}
	return uint16(av), uint16(bv)
}

// WriteVersion stamps both copies of the 18-bit version information
// word.  It is a no-op below version 7.
func (m *Matrix) WriteVersion(word uint32) {
	if m.Version < 7 {
		return
	}
	for i := 0; i < 18; i++ {
		a := m.size - 11 + i%3
		b := i / 3
		d := bit(word, i)
		m.setReserved(a, b, d)
		m.setReserved(b, a, d)
	}
}

// ReadVersion reads both copies of the version information word
// independently.
func (m *Matrix) ReadVersion() (a, b uint32) {
	for i := 0; i < 18; i++ {
		x := m.size - 11 + i%3
		y := i / 3
		if m.At(x, y) {
			a |= 1 << uint(i)
		}
		if m.At(y, x) {
			b |= 1 << uint(i)
		}
	}
	return a, b
}

// dataPath calls f for every non-reserved module in the zig-zag order
// ISO/IEC 18004 specifies for placing data and error-correction
// codewords: two-column strips from the right edge to the left,
// alternating bottom-to-top and top-to-bottom, skipping column 6
// (the vertical timing pattern).
func (m *Matrix) dataPath(f func(x, y int)) {
	up := true
	for x := m.size - 1; x > 0; x -= 2 {
		if x == 6 {
			x--
		}
		if up {
			for y := m.size - 1; y >= 0; y-- {
				f(x, y)
				f(x-1, y)
			}
		} else {
			for y := 0; y < m.size; y++ {
				f(x, y)
				f(x-1, y)
			}
		}
		up = !up
	}
}

// WriteCodewords writes the data+ECC codeword bytes into every
// non-reserved module in zig-zag order, most significant bit first.
func (m *Matrix) WriteCodewords(data []byte) {
	bitIdx := 0
	total := len(data) * 8
	m.dataPath(func(x, y int) {
		if m.IsReserved(x, y) {
			return
		}
		d := false
		if bitIdx < total {
			d = data[bitIdx/8]>>uint(7-bitIdx%8)&1 != 0
		}
		m.set(x, y, d)
		bitIdx++
	})
}

// ReadCodewords reads every non-reserved module in zig-zag order back
// into codeword bytes. n is the expected codeword count.
func (m *Matrix) ReadCodewords(n int) []byte {
	out := make([]byte, n)
	bitIdx := 0
	total := n * 8
	m.dataPath(func(x, y int) {
		if m.IsReserved(x, y) || bitIdx >= total {
			return
		}
		if m.At(x, y) {
			out[bitIdx/8] |= 1 << uint(7-bitIdx%8)
		}
		bitIdx++
	})
	return out
}

// ApplyMask XORs the colour of every non-reserved module with the
// given mask pattern (0-7).  Calling it twice with the same mask
// restores the original matrix.
func (m *Matrix) ApplyMask(mask int) {
	f := maskFuncs[mask]
	for y := 0; y < m.size; y++ {
		for x := 0; x < m.size; x++ {
			if m.IsReserved(x, y) {
				continue
			}
			if f(y, x) {
				i := m.idx(x, y)
				m.dark[i] = !m.dark[i]
			}
		}
	}
}
