// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "testing"

func TestNewMatrixSize(t *testing.T) {
	for v := MinVersion; v <= MaxVersion; v++ {
		m := NewMatrix(v)
		if got, want := m.Size(), v.Size(); got != want {
			t.Errorf("version %s: Size() = %d, want %d", v, got, want)
		}
	}
}

func TestDarkModule(t *testing.T) {
	m := NewMatrix(1)
	if !m.At(8, m.Size()-8) {
		t.Error("dark module not set")
	}
	if !m.IsReserved(8, m.Size()-8) {
		t.Error("dark module not reserved")
	}
}

func TestFinderCorners(t *testing.T) {
	m := NewMatrix(1)
	corners := []struct{ x, y int }{{0, 0}, {m.Size() - 7, 0}, {0, m.Size() - 7}}
	for _, c := range corners {
		if !m.At(c.x, c.y) {
			t.Errorf("finder corner (%d,%d) not dark", c.x, c.y)
		}
		if !m.IsReserved(c.x, c.y) {
			t.Errorf("finder corner (%d,%d) not reserved", c.x, c.y)
		}
	}
}

func TestCodewordsRoundTrip(t *testing.T) {
	v := Version(5)
	m := NewMatrix(v)
	data := make([]byte, v.TotalCodewords())
	for i := range data {
		data[i] = byte(i*37 + 11)
	}
	m.WriteCodewords(data)
	got := m.ReadCodewords(len(data))
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("codeword %d: got %#x, want %#x", i, got[i], data[i])
		}
	}
}

func TestApplyMaskInvolution(t *testing.T) {
	v := Version(3)
	m := NewMatrix(v)
	before := append([]bool(nil), m.dark...)
	m.ApplyMask(4)
	m.ApplyMask(4)
	for i := range before {
		if m.dark[i] != before[i] {
			t.Fatalf("module %d changed after masking twice", i)
		}
	}
}

func TestFormatVersionRoundTripOnMatrix(t *testing.T) {
	v := Version(9)
	m := NewMatrix(v)
	m.WriteFormat(EncodeFormat(Q, 3))
	m.WriteVersion(EncodeVersion(v))

	fa, fb := m.ReadFormat()
	l, mask, _, ok := DecodeFormat(fa)
	if !ok || l != Q || mask != 3 {
		t.Errorf("format copy a decoded to %s/%d ok=%v, want Q/3", l, mask, ok)
	}
	l, mask, _, ok = DecodeFormat(fb)
	if !ok || l != Q || mask != 3 {
		t.Errorf("format copy b decoded to %s/%d ok=%v, want Q/3", l, mask, ok)
	}

	va, vb := m.ReadVersion()
	gv, _, ok := DecodeVersion(va)
	if !ok || gv != v {
		t.Errorf("version copy a decoded to %s ok=%v, want %s", gv, ok, v)
	}
	gv, _, ok = DecodeVersion(vb)
	if !ok || gv != v {
		t.Errorf("version copy b decoded to %s ok=%v, want %s", gv, ok, v)
	}
}
