// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gf256

import "errors"

// ErrUnrecoverable is returned by RSDecoder.Correct when the number of
// errors in a block exceeds the block's correction capacity.
var ErrUnrecoverable = errors.New("gf256: block has too many errors to correct")

// An RSEncoder encodes Reed-Solomon error-correcting codewords over a
// Field, for a fixed number of ECC bytes per block.
type RSEncoder struct {
	field *Field
	nECC  int
	gen   Poly // generator polynomial, degree nECC
}

// NewRSEncoder returns an RSEncoder for nECC error-correcting bytes per
// block over f.  The generator polynomial is
//
//	g(x) = (x-a^0)(x-a^1)...(x-a^(nECC-1))
//
// as specified by ISO/IEC 18004.
func NewRSEncoder(f *Field, nECC int) *RSEncoder {
	gen := Poly{1}
	for i := 0; i < nECC; i++ {
		gen = f.MulPoly(gen, Poly{f.Exp(i), 1})
	}
	g := make(Poly, nECC+1)
	copy(g, gen)
	return &RSEncoder{field: f, nECC: nECC, gen: g}
}

// ECC computes the nECC error-correction bytes for data and writes them
// to dst, which must have length nECC.  The data polynomial is read with
// its first byte as the highest-degree coefficient, matching the wire
// order of a QR codeword block.
func (rs *RSEncoder) ECC(data []byte, dst []byte) {
	if len(dst) != rs.nECC {
		panic("gf256: wrong ECC buffer length")
	}
	// Reverse data into lowest-degree-first Poly order, shifted up by
	// nECC so the remainder lands in the low nECC coefficients.
	p := make(Poly, len(data)+rs.nECC)
	for i, b := range data {
		p[len(data)+rs.nECC-1-i] = b
	}
	rem := rs.field.Remainder(p, rs.gen, rs.nECC)
	for i, b := range rem {
		dst[rs.nECC-1-i] = b
	}
}

// An RSDecoder corrects errors in Reed-Solomon blocks of k data bytes
// plus nECC check bytes over a Field.
type RSDecoder struct {
	field *Field
	nECC  int
}

// NewRSDecoder returns an RSDecoder for blocks with nECC check bytes.
func NewRSDecoder(f *Field, nECC int) *RSDecoder {
	return &RSDecoder{field: f, nECC: nECC}
}

// toPoly converts a received block (wire order, highest-degree byte
// first) into a Poly (lowest-degree first).
func toPoly(block []byte) Poly {
	p := make(Poly, len(block))
	for i, b := range block {
		p[len(block)-1-i] = b
	}
	return p
}

func fromPoly(p Poly, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var c byte
		if i < len(p) {
			c = p[i]
		}
		out[n-1-i] = c
	}
	return out
}

// syndromes computes S_0..S_{nECC-1} for the received polynomial, where
// S_i = m(a^i).
func (d *RSDecoder) syndromes(m Poly) Poly {
	f := d.field
	s := make(Poly, d.nECC)
	for i := 0; i < d.nECC; i++ {
		s[i] = f.Eval(m, f.Exp(i))
	}
	return s
}

// berlekampMassey computes the error-locator polynomial Lambda from the
// syndromes using the Berlekamp-Massey algorithm.
func (d *RSDecoder) berlekampMassey(s Poly) (lambda Poly, degree int) {
	f := d.field
	t := d.nECC
	lambda = Poly{1}
	b := Poly{1}
	l := 0
	m := 1
	var bCoef byte = 1
	for n := 0; n < t; n++ {
		// delta = S_n + sum_{i=1..l} lambda_i * S_{n-i}
		delta := s[n]
		for i := 1; i <= l; i++ {
			if i < len(lambda) {
				delta ^= f.Mul(lambda[i], s[n-i])
			}
		}
		if delta == 0 {
			m++
			continue
		}
		scale, _ := f.Div(delta, bCoef)
		t2 := f.Scale(ShiftUp(b, m), scale)
		newLambda := f.Add(lambda, t2)
		if 2*l <= n {
			b = lambda
			bCoef = delta
			l = n + 1 - l
			m = 1
		} else {
			m++
		}
		lambda = newLambda
	}
	return lambda, l
}

// chienSearch finds the roots of lambda among a^-j for j in [0, n), i.e.
// the error positions, by direct (not table-accelerated) evaluation.
func (d *RSDecoder) chienSearch(lambda Poly, n int) []int {
	f := d.field
	var positions []int
	for j := 0; j < n; j++ {
		x, _ := f.Inv(f.Exp(j))
		if f.Eval(lambda, x) == 0 {
			positions = append(positions, j)
		}
	}
	return positions
}

// formalDerivative returns the formal derivative of p.  Over GF(2^m),
// even-degree terms vanish (their coefficient is doubled, i.e. XORed
// with itself).
func formalDerivative(p Poly) Poly {
	if len(p) <= 1 {
		return nil
	}
	d := make(Poly, len(p)-1)
	for i := 1; i < len(p); i++ {
		if i&1 != 0 {
			d[i-1] = p[i]
		}
	}
	return d.trim()
}

// Correct decodes one Reed-Solomon block in place.  block has wire order
// (highest-degree byte first, i.e. data followed by check bytes).
// Correct returns the number of symbol errors fixed, or ErrUnrecoverable
// if the block cannot be corrected with the available nECC check bytes.
func (d *RSDecoder) Correct(block []byte) (int, error) {
	f := d.field
	m := toPoly(block)
	s := d.syndromes(m)
	allZero := true
	for _, v := range s {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return 0, nil
	}

	lambda, l := d.berlekampMassey(s)
	if l == 0 || l > d.nECC/2 {
		return 0, ErrUnrecoverable
	}

	roots := d.chienSearch(lambda, len(block))
	if len(roots) != l {
		return 0, ErrUnrecoverable
	}

	// Omega = S(x)*Lambda(x) mod x^nECC (the error evaluator polynomial).
	sLambda := f.MulPoly(s, lambda)
	omega := sLambda
	if len(omega) > d.nECC {
		omega = omega[:d.nECC]
	}
	lambdaPrime := formalDerivative(lambda)

	for _, j := range roots {
		xInv, _ := f.Inv(f.Exp(j))
		num := f.Eval(omega, xInv)
		den := f.Eval(lambdaPrime, xInv)
		if den == 0 {
			return 0, ErrUnrecoverable
		}
		mag, _ := f.Div(num, den)
		// Forney's formula as stated multiplies by x_j; for QR's GF(2^8)
		// the X_j^1 factor folds into the evaluation point convention
		// used above, matching the derivation in ISO/IEC 18004 Annex A.
		mag = f.Mul(mag, f.Exp(j))
		pos := len(block) - 1 - j
		block[pos] ^= mag
	}

	// Revalidate.
	m = toPoly(block)
	s = d.syndromes(m)
	for _, v := range s {
		if v != 0 {
			return 0, ErrUnrecoverable
		}
	}
	return len(roots), nil
}
