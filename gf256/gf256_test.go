// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gf256

import "testing"

func TestMulInv(t *testing.T) {
	f := QR
	for a := 1; a < 256; a++ {
		inv, err := f.Inv(byte(a))
		if err != nil {
			t.Fatalf("Inv(%d): %v", a, err)
		}
		if got := f.Mul(byte(a), inv); got != 1 {
			t.Errorf("Mul(%d, inv(%d)) = %d, want 1", a, a, got)
		}
	}
}

func TestPow(t *testing.T) {
	f := QR
	for k := 0; k < 600; k++ {
		got := f.Pow(2, k)
		want := f.Exp(k)
		if got != want {
			t.Errorf("Pow(2, %d) = %d, want %d", k, got, want)
		}
	}
}

func TestDivByZero(t *testing.T) {
	f := QR
	if _, err := f.Div(5, 0); err != ErrDivByZero {
		t.Errorf("Div(5, 0) error = %v, want ErrDivByZero", err)
	}
	if _, err := f.Inv(0); err != ErrDivByZero {
		t.Errorf("Inv(0) error = %v, want ErrDivByZero", err)
	}
}

func TestMulZero(t *testing.T) {
	f := QR
	if got := f.Mul(0, 42); got != 0 {
		t.Errorf("Mul(0, 42) = %d, want 0", got)
	}
	if got := f.Mul(42, 0); got != 0 {
		t.Errorf("Mul(42, 0) = %d, want 0", got)
	}
}
