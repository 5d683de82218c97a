// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// ChooseVersion returns the smallest version from lo to hi
// that has room for segs at error correction level l.  It recomputes
// each segment's encoded length at every version's size class, since
// the character count field (and so the total length) can grow one
// size class at a time as the version increases.
func ChooseVersion(lo, hi Version, l Level, segs []Segment) (Version, error) {
	for v := lo; v <= hi; v++ {
		bits := 0
		class := v.SizeClass()
		for _, seg := range segs {
			n := seg.EncodedLength(class)
			if n == 0 {
				return 0, errf(InvalidInput, "invalid segment for mode %s", seg.Mode)
			}
			bits += n
		}
		if bits <= v.DataBits(l) {
			return v, nil
		}
	}
	return 0, errf(CapacityExceeded, "no version from %s to %s holds %d segments at level %s", lo, hi, len(segs), l)
}

// Encode builds the complete QR symbol for segs at the given version
// and error correction level, selecting the mask with the lowest
// penalty score and stamping format and (for v>=7) version information.
func Encode(v Version, l Level, segs ...Segment) (*Matrix, error) {
	return EncodeWithMask(v, l, -1, segs...)
}

// EncodeWithMask is Encode with an explicit mask pattern (0-7). A
// negative mask selects the mask with the lowest penalty score, as
// Encode does.
func EncodeWithMask(v Version, l Level, mask int, segs ...Segment) (*Matrix, error) {
	if !v.Valid() {
		return nil, ErrVersion
	}
	if !l.Valid() {
		return nil, ErrLevel
	}
	if mask >= 8 {
		return nil, errf(InvalidInput, "mask %d out of range", mask)
	}
	class := v.SizeClass()
	b := NewBits(v, l)
	for _, seg := range segs {
		if err := seg.Encode(b, class); err != nil {
			return nil, err
		}
	}
	nb := v.DataBits(l)
	if b.Bits() > nb {
		return nil, errf(CapacityExceeded, "%d data bits exceed %d available at version %s level %s", b.Bits(), nb, v, l)
	}
	b.PadTo(4, nb)

	data := EncodeCodewords(v, l, b.Bytes())
	m := NewMatrix(v)
	if mask < 0 {
		mask = SelectMask(m, data)
	} else {
		m.WriteCodewords(data)
		m.ApplyMask(mask)
	}
	m.WriteFormat(EncodeFormat(l, mask))
	m.WriteVersion(EncodeVersion(v))
	return m, nil
}
