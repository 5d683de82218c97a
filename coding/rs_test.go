// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "testing"

func TestCodewordsRoundTripNoErrors(t *testing.T) {
	v, l := Version(1), H
	data := make([]byte, v.DataBytes(l))
	for i := range data {
		data[i] = byte(i*17 + 3)
	}
	raw := EncodeCodewords(v, l, data)
	if len(raw) != v.TotalCodewords() {
		t.Fatalf("EncodeCodewords produced %d codewords, want %d", len(raw), v.TotalCodewords())
	}
	got, err := DecodeCodewords(v, l, raw)
	if err != nil {
		t.Fatalf("DecodeCodewords: %v", err)
	}
	if len(got) != len(data) {
		t.Fatalf("DecodeCodewords returned %d bytes, want %d", len(got), len(data))
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, got[i], data[i])
		}
	}
}

// TestRSCorrectionBoundary exercises the V1-H scenario from the
// codec's testable-properties list: t=17 ECC bytes per block tolerates
// up to floor(17/2)=8 flipped codewords, but not 9.
func TestRSCorrectionBoundary(t *testing.T) {
	v, l := Version(1), H
	data := make([]byte, v.DataBytes(l))
	for i := range data {
		data[i] = byte(i*29 + 7)
	}
	raw := EncodeCodewords(v, l, data)

	p := v.Partition(l)
	if p.Blocks() != 1 {
		t.Fatalf("test assumes a single block at V1-H, got %d blocks", p.Blocks())
	}
	t_ := p.EccPerBlock
	if t_ != 17 {
		t.Fatalf("test assumes t=17 at V1-H, got %d", t_)
	}

	flip := func(buf []byte, n int) []byte {
		c := append([]byte(nil), buf...)
		for i := 0; i < n; i++ {
			c[i] ^= 0xff
		}
		return c
	}

	if _, err := DecodeCodewords(v, l, flip(raw, 8)); err != nil {
		t.Errorf("flipping 8 bytes: got error %v, want success", err)
	}
	if _, err := DecodeCodewords(v, l, flip(raw, 9)); err == nil {
		t.Errorf("flipping 9 bytes: got success, want UnrecoverableBlock")
	} else if e, ok := err.(*Error); !ok || e.Kind != UnrecoverableBlock {
		t.Errorf("flipping 9 bytes: got error %v, want UnrecoverableBlock", err)
	}
}
