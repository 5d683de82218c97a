// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package gf256 implements GF(256) finite field arithmetic and Reed-Solomon
coding over that field, as used by the QR code symbology (ISO/IEC 18004).
*/
package gf256

import (
	"errors"

	xor "github.com/templexxx/xorsimd"
)

// ErrDivByZero is returned by Div and Inv when dividing by zero.
var ErrDivByZero = errors.New("gf256: division by zero")

// A Field represents an instance of GF(256) constructed from the given
// primitive polynomial and generator.  The zero Field is not usable; use
// NewField.
type Field struct {
	poly int
	exp  [510]byte // exp[i] == exp[i+255] for i in [0,255), wraps for fast mul
	log  [256]byte // log[0] is unused
}

// QR is the field used by the QR code symbology: primitive polynomial
// 0x11d, generator 2.
var QR = NewField(0x11d, 2)

// NewField constructs a Field from the given primitive polynomial and
// generator.  poly must be a primitive polynomial of degree 8 with its
// low 8 bits giving the polynomial's coefficients below x^8 (e.g. 0x11d
// for x^8+x^4+x^3+x^2+1); generator is usually 2.
func NewField(poly, generator int) *Field {
	f := &Field{poly: poly}
	x := 1
	for i := 0; i < 255; i++ {
		f.exp[i] = byte(x)
		f.log[byte(x)] = byte(i)
		x *= generator
		if x >= 256 {
			x ^= poly
		}
	}
	copy(f.exp[255:], f.exp[:255])
	return f
}

// Exp returns generator^e, where e is taken modulo 255.
func (f *Field) Exp(e int) byte {
	e %= 255
	if e < 0 {
		e += 255
	}
	return f.exp[e]
}

// Log returns the discrete logarithm of a with respect to the field's
// generator.  Log panics if a is 0; Log(0) is undefined.
func (f *Field) Log(a byte) int {
	if a == 0 {
		panic("gf256: log(0)")
	}
	return int(f.log[a])
}

// Mul returns a*b in the field.
func (f *Field) Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[int(f.log[a])+int(f.log[b])]
}

// Div returns a/b in the field.  Div returns ErrDivByZero if b is 0.
func (f *Field) Div(a, b byte) (byte, error) {
	if b == 0 {
		return 0, ErrDivByZero
	}
	if a == 0 {
		return 0, nil
	}
	d := int(f.log[a]) - int(f.log[b])
	if d < 0 {
		d += 255
	}
	return f.exp[d], nil
}

// Inv returns the multiplicative inverse of a.  Inv returns ErrDivByZero
// if a is 0.
func (f *Field) Inv(a byte) (byte, error) {
	if a == 0 {
		return 0, ErrDivByZero
	}
	return f.exp[255-int(f.log[a])], nil
}

// Pow returns a^k in the field.  Pow(0, k) is 0 for any k.
func (f *Field) Pow(a byte, k int) byte {
	if a == 0 {
		return 0
	}
	e := (int(f.log[a]) * k) % 255
	if e < 0 {
		e += 255
	}
	return f.exp[e]
}

// A Poly is a polynomial over the field, stored as coefficients ordered
// from the lowest degree (index 0) to the highest.  A nil or empty Poly
// is the zero polynomial.
type Poly []byte

// Degree returns the degree of p, or -1 for the zero polynomial.
func (p Poly) Degree() int {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] != 0 {
			return i
		}
	}
	return -1
}

// trim drops high-degree zero coefficients.
func (p Poly) trim() Poly {
	d := p.Degree()
	return p[:d+1]
}

// Add returns p+q (which equals p-q, since addition is XOR in GF(2^n)).
func (f *Field) Add(p, q Poly) Poly {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	r := make(Poly, n)
	copy(r, p)
	m := len(p)
	if len(q) < m {
		m = len(q)
	}
	if m > 0 {
		xor.Encode(r[:m], [][]byte{p[:m], q[:m]})
	}
	for i := m; i < len(q); i++ {
		r[i] ^= q[i]
	}
	return r.trim()
}

// MulPoly returns the product p*q.
func (f *Field) MulPoly(p, q Poly) Poly {
	if len(p) == 0 || len(q) == 0 {
		return nil
	}
	r := make(Poly, len(p)+len(q)-1)
	for i, a := range p {
		if a == 0 {
			continue
		}
		for j, b := range q {
			r[i+j] ^= f.Mul(a, b)
		}
	}
	return r.trim()
}

// Scale returns p scaled by the constant a.
func (f *Field) Scale(p Poly, a byte) Poly {
	if a == 0 {
		return nil
	}
	r := make(Poly, len(p))
	for i, c := range p {
		r[i] = f.Mul(c, a)
	}
	return r.trim()
}

// ShiftUp returns p*x^n.
func ShiftUp(p Poly, n int) Poly {
	if len(p) == 0 {
		return nil
	}
	r := make(Poly, len(p)+n)
	copy(r[n:], p)
	return r
}

// Eval evaluates p at x using Horner's method on the coefficient list,
// which is stored lowest-degree first.
func (f *Field) Eval(p Poly, x byte) byte {
	var y byte
	for i := len(p) - 1; i >= 0; i-- {
		y = f.Mul(y, x) ^ p[i]
	}
	return y
}

// DivMod divides p by q, returning the quotient and remainder such that
// p = quotient*q + remainder and deg(remainder) < deg(q).  DivMod fails
// with ErrDivByZero if q is the zero polynomial.
func (f *Field) DivMod(p, q Poly) (quot, rem Poly, err error) {
	qd := q.Degree()
	if qd < 0 {
		return nil, nil, ErrDivByZero
	}
	rem = append(Poly(nil), p...)
	lead, _ := f.Inv(q[qd])
	var quotCoef []byte
	for rem.Degree() >= qd {
		rd := rem.Degree()
		c := f.Mul(rem[rd], lead)
		shift := rd - qd
		for len(quotCoef) <= shift {
			quotCoef = append(quotCoef, 0)
		}
		quotCoef[shift] = c
		term := f.Scale(ShiftUp(q, shift), c)
		rem = f.Add(rem, term)
	}
	return Poly(quotCoef).trim(), rem, nil
}

// Remainder returns p mod q, a polynomial of degree < deg(q).  It is the
// remainder-only form of DivMod used for Reed-Solomon ECC generation; the
// result is zero-padded to exactly n coefficients (n == deg(q)).
func (f *Field) Remainder(p, q Poly, n int) Poly {
	_, rem, err := f.DivMod(p, q)
	if err != nil {
		panic(err)
	}
	r := make(Poly, n)
	copy(r, rem)
	return r
}
