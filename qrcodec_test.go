// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrcodec

import (
	"testing"

	"github.com/qr-codec/qrcodec/coding"
)

func pixelsOf(sym Symbol) []bool {
	n := sym.Size()
	out := make([]bool, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out = append(out, sym.At(x, y))
		}
	}
	return out
}

func TestEncodeDecodeAutoRoundTrip(t *testing.T) {
	text := "Order #42: 7 widgets, $3.50 each"
	syms, err := Encode(text, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(syms) != 1 {
		t.Fatalf("Encode returned %d symbols, want 1", len(syms))
	}
	got, rep, err := Decode(syms[0].Size(), pixelsOf(syms[0]))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != text {
		t.Errorf("decoded text = %q, want %q", got, text)
	}
	if rep.Mask != 0 {
		t.Errorf("report mask = %d, want 0 (default, not auto)", rep.Mask)
	}
}

func TestEncodeDecodeExplicitModes(t *testing.T) {
	cases := []struct {
		mode InputMode
		text string
		want coding.Mode
	}{
		{ModeNumeric, "0123456789", coding.Numeric},
		{ModeAlphanumeric, "HELLO WORLD", coding.Alphanumeric},
		{ModeByte, "raw bytes \x01\x02", coding.Byte},
	}
	for _, c := range cases {
		syms, err := Encode(c.text, Options{Mode: c.mode, ECC: coding.M})
		if err != nil {
			t.Fatalf("mode %v: Encode: %v", c.mode, err)
		}
		got, rep, err := Decode(syms[0].Size(), pixelsOf(syms[0]))
		if err != nil {
			t.Fatalf("mode %v: Decode: %v", c.mode, err)
		}
		if got != c.text {
			t.Errorf("mode %v: decoded text = %q, want %q", c.mode, got, c.text)
		}
		if len(rep.ModeSummary) != 1 || rep.ModeSummary[0] != c.want {
			t.Errorf("mode %v: mode summary = %v, want [%v]", c.mode, rep.ModeSummary, c.want)
		}
	}
}

func TestEncodeAutoMaskSelection(t *testing.T) {
	text := "auto mask selection"
	syms, err := Encode(text, Options{Mask: -1})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, rep, err := Decode(syms[0].Size(), pixelsOf(syms[0]))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != text {
		t.Errorf("decoded text = %q, want %q", got, text)
	}
	if rep.Mask < 0 || rep.Mask > 7 {
		t.Errorf("report mask = %d, want 0..7", rep.Mask)
	}
}

func TestEncodeExplicitVersionAndMask(t *testing.T) {
	syms, err := Encode("V3", Options{Version: 3, ECC: coding.Q, Mask: 6})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if syms[0].Version != 3 {
		t.Errorf("symbol version = %s, want 3", syms[0].Version)
	}
	_, rep, err := Decode(syms[0].Size(), pixelsOf(syms[0]))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rep.Mask != 6 {
		t.Errorf("report mask = %d, want 6", rep.Mask)
	}
	if rep.ECC != coding.Q {
		t.Errorf("report ecc = %s, want Q", rep.ECC)
	}
}

func TestEncodeInvalidMask(t *testing.T) {
	if _, err := Encode("x", Options{Mask: 8}); err == nil {
		t.Error("Encode with mask 8 succeeded, want error")
	}
	if _, err := Encode("x", Options{Mask: -2}); err == nil {
		t.Error("Encode with mask -2 succeeded, want error")
	}
}

func TestEncodeInvalidECC(t *testing.T) {
	if _, err := Encode("x", Options{ECC: coding.Level(9)}); err != coding.ErrLevel {
		t.Errorf("Encode with invalid ecc error = %v, want ErrLevel", err)
	}
}

func TestEncodeInvalidStructuredAppendCount(t *testing.T) {
	if _, err := Encode("x", Options{StructuredAppendCount: 17}); err == nil {
		t.Error("Encode with structured_append_count 17 succeeded, want error")
	}
	if _, err := Encode("x", Options{StructuredAppendCount: -1}); err == nil {
		t.Error("Encode with structured_append_count -1 succeeded, want error")
	}
}

func TestEncodeDecodeECI(t *testing.T) {
	syms, err := Encode("café", Options{Mode: ModeECI, ECIDesignator: 26})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, rep, err := Decode(syms[0].Size(), pixelsOf(syms[0]))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "café" {
		t.Errorf("decoded text = %q, want %q", got, "café")
	}
	if rep.ECI != 26 {
		t.Errorf("report eci = %d, want 26", rep.ECI)
	}
}

func TestEncodeECIOutOfRange(t *testing.T) {
	if _, err := Encode("x", Options{Mode: ModeECI, ECIDesignator: -1}); err == nil {
		t.Error("Encode with negative eci_designator succeeded, want error")
	}
	if _, err := Encode("x", Options{Mode: ModeECI, ECIDesignator: 1000000}); err == nil {
		t.Error("Encode with eci_designator 1000000 succeeded, want error")
	}
}

func TestEncodeDecodeFNC1First(t *testing.T) {
	syms, err := Encode("01034531200000111999", Options{Mode: ModeFNC1First})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, _, err := Decode(syms[0].Size(), pixelsOf(syms[0]))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "01034531200000111999" {
		t.Errorf("decoded text = %q, want input unchanged (fnc1 marker carries no text)", got)
	}
}

func TestEncodeDecodeFNC1Second(t *testing.T) {
	syms, err := Encode("\x1aREST OF MESSAGE", Options{Mode: ModeFNC1Second})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, _, err := Decode(syms[0].Size(), pixelsOf(syms[0]))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "REST OF MESSAGE" {
		t.Errorf("decoded text = %q, want %q", got, "REST OF MESSAGE")
	}
}

func TestEncodeFNC1SecondRequiresIndicator(t *testing.T) {
	if _, err := Encode("", Options{Mode: ModeFNC1Second}); err == nil {
		t.Error("Encode fnc1_second with empty text succeeded, want error")
	}
}

func TestEncodeStructuredAppendRoundTrip(t *testing.T) {
	text := "0123456789ABCDEFGHIJ"
	syms, err := Encode(text, Options{StructuredAppendCount: 2, ECC: coding.H})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(syms) != 2 {
		t.Fatalf("Encode returned %d symbols, want 2", len(syms))
	}

	var rebuilt string
	var parities []byte
	for i, sym := range syms {
		got, rep, err := Decode(sym.Size(), pixelsOf(sym))
		if err != nil {
			t.Fatalf("symbol %d: Decode: %v", i, err)
		}
		if rep.StructuredAppend == nil {
			t.Fatalf("symbol %d: report has no StructuredAppend info", i)
		}
		if rep.StructuredAppend.Index != i {
			t.Errorf("symbol %d: index = %d, want %d", i, rep.StructuredAppend.Index, i)
		}
		if rep.StructuredAppend.Count != 2 {
			t.Errorf("symbol %d: count = %d, want 2", i, rep.StructuredAppend.Count)
		}
		parities = append(parities, rep.StructuredAppend.Parity)
		rebuilt += got
	}
	if rebuilt != text {
		t.Errorf("rebuilt text = %q, want %q", rebuilt, text)
	}
	if parities[0] != parities[1] {
		t.Errorf("parity mismatch across symbols: %#x vs %#x", parities[0], parities[1])
	}
	var want byte
	for i := 0; i < len(text); i++ {
		want ^= text[i]
	}
	if parities[0] != want {
		t.Errorf("parity = %#x, want %#x", parities[0], want)
	}
}
