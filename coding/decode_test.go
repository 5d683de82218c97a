// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "testing"

func TestLoadMatrixWrongSize(t *testing.T) {
	if _, err := LoadMatrix(1, make([]bool, 10)); err == nil {
		t.Error("LoadMatrix with wrong-sized pixel buffer succeeded, want error")
	}
}

func TestVersionForSizeInvalid(t *testing.T) {
	cases := []int{20, 22, 178, 0, -1}
	for _, s := range cases {
		if _, err := VersionForSize(s); err != ErrVersion {
			t.Errorf("VersionForSize(%d) error = %v, want ErrVersion", s, err)
		}
	}
}

func TestVersionForSizeValid(t *testing.T) {
	for v := MinVersion; v <= MaxVersion; v++ {
		got, err := VersionForSize(v.Size())
		if err != nil || got != v {
			t.Errorf("VersionForSize(%d) = %s, %v, want %s, nil", v.Size(), got, err, v)
		}
	}
}

func TestDecodeRoundTripAllLevels(t *testing.T) {
	for l := L; l <= H; l++ {
		seg := Segment{Text: "TEST 123", Mode: Alphanumeric}
		m, err := Encode(3, l, seg)
		if err != nil {
			t.Fatalf("level %s: Encode: %v", l, err)
		}
		res, err := Decode(m.Size(), matrixPixels(m))
		if err != nil {
			t.Fatalf("level %s: Decode: %v", l, err)
		}
		if res.Level != l {
			t.Errorf("level %s: decoded level = %s", l, res.Level)
		}
		segs, err := DecodeSegments(res.Version, res.Data)
		if err != nil || len(segs) != 1 || segs[0].Text != "TEST 123" {
			t.Errorf("level %s: DecodeSegments = %v, %v, want [{Alphanumeric TEST 123}]", l, segs, err)
		}
	}
}

func TestDecodeVersion7PlusRoundTrip(t *testing.T) {
	seg := Segment{Text: "hello, version 7", Mode: Byte}
	m, err := Encode(7, M, seg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	res, err := Decode(m.Size(), matrixPixels(m))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Version != 7 {
		t.Errorf("decoded version = %s, want 7", res.Version)
	}
	segs, err := DecodeSegments(res.Version, res.Data)
	if err != nil || len(segs) != 1 || segs[0].Text != "hello, version 7" {
		t.Errorf("DecodeSegments = %v, %v", segs, err)
	}
}
