// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// LoadMatrix returns a Matrix of version v whose reserved layer (and
// the canonical content of every function pattern) is set up as usual,
// then overwritten module-for-module with pixels, a row-major size*size
// slice of the scanned symbol (true = dark).  Unlike NewMatrix, the
// format and version information areas keep whatever pixels supplies,
// since their content is exactly what the decoder needs to read.
func LoadMatrix(v Version, pixels []bool) (*Matrix, error) {
	if len(pixels) != v.Size()*v.Size() {
		return nil, errf(InvalidInput, "pixel buffer has %d modules, want %d", len(pixels), v.Size()*v.Size())
	}
	m := NewMatrix(v)
	copy(m.dark, pixels)
	return m, nil
}

// DecodeResult carries everything Decode recovers from a symbol
// besides the segment-level content, which DecodeSegments derives
// from Data.
type DecodeResult struct {
	Version    Version
	Level      Level
	Mask       int
	FormatErrs int // bit errors corrected in the format information
	Data       []byte
}

// Decode reads a complete QR symbol from a row-major pixel grid: it
// determines level and mask from the format information, version from
// the symbol's size (cross-checked against the version information for
// v>=7), unmasks and reads the codewords in zig-zag order, and
// Reed-Solomon corrects them.
func Decode(size int, pixels []bool) (*DecodeResult, error) {
	v, err := VersionForSize(size)
	if err != nil {
		return nil, errf(InvalidInput, "%v", err)
	}
	m, err := LoadMatrix(v, pixels)
	if err != nil {
		return nil, err
	}

	fa, fb := m.ReadFormat()
	la, ma, ea, oka := DecodeFormat(fa)
	lb, mb, eb, okb := DecodeFormat(fb)
	var l Level
	var mask, ferrs int
	switch {
	case oka && okb && la == lb && ma == mb:
		l, mask, ferrs = la, ma, min(ea, eb)
	case oka && okb && ea == 0 && eb != 0:
		l, mask, ferrs = la, ma, ea
	case oka && okb && eb == 0 && ea != 0:
		l, mask, ferrs = lb, mb, eb
	case oka && okb:
		return nil, errf(UnreadableFormat, "format copies disagree: %s/%d (d=%d) vs %s/%d (d=%d)", la, ma, ea, lb, mb, eb)
	case oka:
		l, mask, ferrs = la, ma, ea
	case okb:
		l, mask, ferrs = lb, mb, eb
	default:
		return nil, errf(UnreadableFormat, "neither format copy is within correction distance")
	}

	if v >= 7 {
		va, vb := m.ReadVersion()
		dva, ea, oka := DecodeVersion(va)
		dvb, eb, okb := DecodeVersion(vb)
		var dv Version
		switch {
		case oka && okb && dva == dvb:
			dv = dva
		case oka && okb && ea == 0 && eb != 0:
			dv = dva
		case oka && okb && eb == 0 && ea != 0:
			dv = dvb
		case oka && okb:
			return nil, errf(UnreadableVersion, "version copies disagree: %s (d=%d) vs %s (d=%d)", dva, ea, dvb, eb)
		case oka:
			dv = dva
		case okb:
			dv = dvb
		default:
			return nil, errf(UnreadableVersion, "neither version copy is within correction distance")
		}
		if dv != v {
			return nil, errf(UnreadableVersion, "version information says %s, symbol size implies %s", dv, v)
		}
	}

	m.ApplyMask(mask)
	raw := m.ReadCodewords(v.TotalCodewords())
	data, err := DecodeCodewords(v, l, raw)
	if err != nil {
		return nil, err
	}
	return &DecodeResult{Version: v, Level: l, Mask: mask, FormatErrs: ferrs, Data: data}, nil
}
