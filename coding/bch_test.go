// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "testing"

func TestFormatRoundTrip(t *testing.T) {
	for l := L; l <= H; l++ {
		for m := 0; m < 8; m++ {
			word := EncodeFormat(l, m)
			gl, gm, errs, ok := DecodeFormat(word)
			if !ok || gl != l || gm != m || errs != 0 {
				t.Errorf("DecodeFormat(EncodeFormat(%s, %d)) = %s, %d, %d, %v; want %s, %d, 0, true", l, m, gl, gm, errs, ok, l, m)
			}
		}
	}
}

func TestFormatCorrection(t *testing.T) {
	word := EncodeFormat(H, 5)
	for bits := 0; bits <= 3; bits++ {
		corrupted := word
		for i := 0; i < bits; i++ {
			corrupted ^= 1 << uint(i)
		}
		l, m, _, ok := DecodeFormat(corrupted)
		if !ok || l != H || m != 5 {
			t.Errorf("DecodeFormat with %d bit errors failed: l=%s m=%d ok=%v", bits, l, m, ok)
		}
	}
}

func TestVersionRoundTrip(t *testing.T) {
	for v := Version(7); v <= MaxVersion; v++ {
		word := EncodeVersion(v)
		gv, errs, ok := DecodeVersion(word)
		if !ok || gv != v || errs != 0 {
			t.Errorf("DecodeVersion(EncodeVersion(%s)) = %s, %d, %v; want %s, 0, true", v, gv, errs, ok, v)
		}
	}
}

func TestVersionBelow7(t *testing.T) {
	for v := Version(1); v < 7; v++ {
		if word := EncodeVersion(v); word != 0 {
			t.Errorf("EncodeVersion(%s) = %#x, want 0", v, word)
		}
	}
}

func TestVersionCorrection(t *testing.T) {
	word := EncodeVersion(23)
	for bits := 0; bits <= 3; bits++ {
		corrupted := word
		for i := 0; i < bits; i++ {
			corrupted ^= 1 << uint(i)
		}
		v, _, ok := DecodeVersion(corrupted)
		if !ok || v != 23 {
			t.Errorf("DecodeVersion with %d bit errors failed: v=%s ok=%v", bits, v, ok)
		}
	}
}
