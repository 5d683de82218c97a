// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "testing"

// TestNumericV1L checks the bitstream prefix from the testable-properties
// scenario 1: "01234567" at V1-L should begin with the mode indicator,
// 10-bit character count, and the numeric-triplet payload groups.
func TestNumericV1L(t *testing.T) {
	seg := Segment{Text: "01234567", Mode: Numeric}
	b := NewBits(1, L)
	if err := seg.Encode(b, Version(1).SizeClass()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{
		0, 0, 0, 1, // mode indicator 0001
		0, 0, 0, 0, 0, 0, 1, 0, 0, 0, // count = 8, 10 bits
		0, 0, 0, 0, 0, 0, 1, 1, 0, 0, // "012" -> 12
		0, 1, 0, 1, 0, 1, 1, 0, 0, 1, // "345" -> 345
		1, 0, 0, 0, 0, 1, 1, // "67" -> 67, 7 bits
	}
	if b.Bits() < len(want) {
		t.Fatalf("encoded %d bits, want at least %d", b.Bits(), len(want))
	}
	// Zero-fill to a byte boundary so Bytes can be called; the first
	// len(want) bits are unchanged.
	b.PadTo(0, b.Bits())
	bytes := b.Bytes()
	for i, wantBit := range want {
		gotBit := bytes[i/8] >> uint(7-i%8) & 1
		if gotBit != wantBit {
			t.Fatalf("bit %d: got %d, want %d", i, gotBit, wantBit)
		}
	}
}

func TestChooseVersionSmallest(t *testing.T) {
	seg := Segment{Text: "0123456789", Mode: Numeric}
	v, err := ChooseVersion(MinVersion, MaxVersion, H, []Segment{seg})
	if err != nil {
		t.Fatalf("ChooseVersion: %v", err)
	}
	if v != 1 {
		t.Errorf("ChooseVersion for 10 digits at level H = %s, want 1", v)
	}
}

func TestChooseVersionCapacityExceeded(t *testing.T) {
	big := make([]byte, 4000)
	for i := range big {
		big[i] = '0' + byte(i%10)
	}
	seg := Segment{Text: string(big), Mode: Numeric}
	if _, err := ChooseVersion(MinVersion, MaxVersion, H, []Segment{seg}); err == nil {
		t.Error("ChooseVersion succeeded for input too large for any version, want error")
	}
}

// TestAlphanumericV1H is testable-properties scenario 2: "HELLO WORLD"
// round-trips through encode/decode at V1-H.
func TestAlphanumericV1H(t *testing.T) {
	seg := Segment{Text: "HELLO WORLD", Mode: Alphanumeric}
	m, err := Encode(1, H, seg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	res, err := Decode(m.Size(), matrixPixels(m))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	segs, err := DecodeSegments(res.Version, res.Data)
	if err != nil {
		t.Fatalf("DecodeSegments: %v", err)
	}
	if len(segs) != 1 || segs[0].Text != "HELLO WORLD" {
		t.Fatalf("decoded segments = %v, want [{Alphanumeric HELLO WORLD}]", segs)
	}
}

// TestByteV2L is testable-properties scenario 3: "Version 2!" encoded
// in Byte mode round-trips exactly.
func TestByteV2L(t *testing.T) {
	seg := Segment{Text: "Version 2!", Mode: Byte}
	m, err := Encode(2, L, seg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	res, err := Decode(m.Size(), matrixPixels(m))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	segs, err := DecodeSegments(res.Version, res.Data)
	if err != nil {
		t.Fatalf("DecodeSegments: %v", err)
	}
	if len(segs) != 1 || segs[0].Mode != Byte || segs[0].Text != "Version 2!" {
		t.Fatalf("decoded segments = %v, want [{Byte Version 2!}]", segs)
	}
}

// TestFormatBitsCorruption is testable-properties scenario 6: flipping
// up to 3 bits in either format information copy still decodes.
func TestFormatBitsCorruption(t *testing.T) {
	seg := Segment{Text: "HELLO", Mode: Alphanumeric}
	m, err := Encode(1, Q, seg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	pixels := matrixPixels(m)
	size := m.Size()
	// Format copy A lives in column 8, rows 0-8 (minus the timing row).
	flipIdx := idxOf(size, 8, 0)
	pixels[flipIdx] = !pixels[flipIdx]
	flipIdx2 := idxOf(size, 8, 1)
	pixels[flipIdx2] = !pixels[flipIdx2]
	flipIdx3 := idxOf(size, 8, 2)
	pixels[flipIdx3] = !pixels[flipIdx3]

	if _, err := Decode(size, pixels); err != nil {
		t.Errorf("Decode after flipping 3 format bits: %v", err)
	}
}

func idxOf(size, x, y int) int { return y*size + x }

// matrixPixels reads back every module of m as a flat row-major slice,
// the same shape Decode expects.
func matrixPixels(m *Matrix) []bool {
	n := m.Size()
	out := make([]bool, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out[y*n+x] = m.At(x, y)
		}
	}
	return out
}

func TestEncodeWithMaskMatchesExplicit(t *testing.T) {
	seg := Segment{Text: "ABC123", Mode: Alphanumeric}
	m, err := EncodeWithMask(2, M, 5, seg)
	if err != nil {
		t.Fatalf("EncodeWithMask: %v", err)
	}
	res, err := Decode(m.Size(), matrixPixels(m))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Mask != 5 {
		t.Errorf("decoded mask = %d, want 5", res.Mask)
	}
}

func TestEncodeWithMaskRejectsOutOfRange(t *testing.T) {
	seg := Segment{Text: "1", Mode: Numeric}
	if _, err := EncodeWithMask(1, L, 8, seg); err == nil {
		t.Error("EncodeWithMask(mask=8) succeeded, want error")
	}
}

func TestEncodeInvalidVersionLevel(t *testing.T) {
	seg := Segment{Text: "1", Mode: Numeric}
	if _, err := Encode(0, L, seg); err != ErrVersion {
		t.Errorf("Encode(version 0) error = %v, want ErrVersion", err)
	}
	if _, err := Encode(1, Level(9), seg); err != ErrLevel {
		t.Errorf("Encode(level 9) error = %v, want ErrLevel", err)
	}
}
