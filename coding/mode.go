// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// A Mode identifies a QR segment encoding.
type Mode int8

// Predefined encoding modes.  Terminator has no ModeEncoder entry; it is
// handled directly by the data decoder.
const (
	Numeric       Mode = iota // numeric mode, ASCII digits
	Alphanumeric              // alphanumeric mode, restricted ASCII
	Byte                      // byte mode, any data
	Kanji                     // kanji mode, UTF-8 text
	Latin1                    // byte mode, UTF-8 text re-encoded as ISO 8859-1
	ShiftJISKanji             // kanji mode, Shift JIS text
	ECI                       // extended channel interpretation, raw segment
	StructAppend              // structured append, raw segment
	FNC1First                 // FNC1 in first position
	FNC1Second                // FNC1 in second position
	FNC1Alpha                 // alphanumeric mode accepting the FNC1 AI separator
	Terminator       Mode = -1
)

// Indicator returns the 4-bit mode indicator written on the wire.
func (mode Mode) Indicator() byte {
	if m := getMode(mode); m != nil {
		return m.indicator
	}
	return 0
}

// A modeEncoder implements encoding and decoding for one Mode.
type modeEncoder struct {
	name string
	// indicator is the 4-bit mode indicator.
	indicator byte

	// countLength[class] is the width in bits of the character count
	// field for QR version size class 0 (v<=9), 1 (v<=26) or 2 (v<=40).
	countLength [3]byte

	// encodedLength, if set, returns the number of payload bits (not
	// including indicator or count) for a string of the given byte and
	// rune length.  If nil, the payload is assumed to be 8 bits/byte.
	encodedLength func(bytes, runes int) int

	// accepts reports whether the rune is valid input for this mode.
	accepts func(r rune) bool

	// valid, for modes that carry a raw pre-encoded byte payload
	// rather than character data (ECI, StructAppend, FNC1First,
	// FNC1Second), validates the whole segment structurally. If nil,
	// isValid falls back to accepts.
	valid func(s string) bool

	// cutRune returns the first rune of s and its width, for modes
	// whose input is not decoded with ordinary UTF-8 (Kanji/Latin1
	// work from UTF-8; ShiftJISKanji works from already-transformed
	// Shift JIS bytes).
	cutRune func(s string) (rune, int)

	// transform converts a segment to Byte, Numeric, Alphanumeric or
	// ShiftJISKanji prior to encoding (e.g. Kanji -> ShiftJISKanji).
	transform func(s string) (Segment, bool)

	// count returns the character count of the (already transformed)
	// string; defaults to byte length.
	count func(s string) int

	encode2 func(b [2]byte) (uint32, int)
	encode1 func(b byte) (uint32, int)
}

const alphamask uint64 = 0x07fffffe_07ffec31 // SPACE $% *+ -./ [0-9] : [A-Z]

// alpha maps an alphanumeric byte (c & 0x3f) to its QR alphanumeric
// value "0..9A..Z $%*+-./:".
var alpha = [64]byte{
	00, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, // 0x40
	25, 26, 27, 28, 29, 30, 31, 32, 33, 34, 35, 00, 00, 00, 00, 00, // 0x50
	36, 00, 00, 00, 37, 38, 00, 00, 00, 00, 39, 40, 00, 41, 42, 43, // 0x20
	00, 01, 02, 03, 04, 05, 06, 07, 010, 9, 44, 00, 00, 00, 00, 00, // 0x30
}

// alphaRev inverts alpha: alphaRev[v] is the ASCII byte for value v.
var alphaRev = func() [45]byte {
	var r [45]byte
	const chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"
	for i := 0; i < len(chars); i++ {
		r[i] = chars[i]
	}
	return r
}()

// sjistbl classifies Shift JIS bytes: bit 1 = valid first byte of a
// multibyte character, bit 2 = valid second byte.
var sjistbl = [256]byte{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 0,
	2, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 0, 0, 0,
}

// nothing rejects every rune; it is the accepts function of the
// raw-payload modes.
func nothing(rune) bool { return false }

// IsKanji reports whether the Unicode rune r belongs to the QR Kanji
// subset of JIS X 0208 (up to ku-ten 86-33): it encodes to a two-byte
// Shift JIS sequence with a first byte in the standard kanji lead-byte
// ranges 0x81-0x9f or 0xe0-0xea.
func IsKanji(r rune) bool {
	if r < 0x80 {
		return false
	}
	b, err := japanese.ShiftJIS.NewEncoder().String(string(r))
	if err != nil || len(b) != 2 {
		return false
	}
	c := b[0]
	return c >= 0x81 && c <= 0x9f || c >= 0xe0 && c <= 0xea
}


var stdModes = []modeEncoder{
	Numeric: {
		name:          "numeric",
		indicator:     1,
		countLength:   [3]byte{10, 12, 14},
		encodedLength: func(b, r int) int { return (10*b + 2) / 3 },
		accepts:       func(r rune) bool { return uint32(r-'0') < 10 },
		encode1: func(b byte) (uint32, int) {
			return uint32(b - '0'), 4
		},
	},
	Alphanumeric: {
		name:          "alphanumeric",
		indicator:     2,
		countLength:   [3]byte{9, 11, 13},
		encodedLength: func(b, r int) int { return (11*b + 1) / 2 },
		accepts: func(r rune) bool {
			return uint32(r) >= ' ' && alphamask>>(uint32(r)-' ')&1 != 0
		},
		encode2: func(b [2]byte) (uint32, int) {
			return uint32(alpha[b[0]&0x3f])*45 +
				uint32(alpha[b[1]&0x3f]), 11
		},
		encode1: func(b byte) (uint32, int) {
			return uint32(alpha[b&0x3f]), 6
		},
	},
	Byte: {
		name:        "byte",
		indicator:   4,
		countLength: [3]byte{8, 16, 16},
	},
	Kanji: {
		name:          "kanji",
		indicator:     8,
		countLength:   [3]byte{8, 10, 12},
		encodedLength: func(b, r int) int { return r * 13 },
		accepts:       IsKanji,
		transform: func(s string) (Segment, bool) {
			t, err := japanese.ShiftJIS.NewEncoder().String(s)
			return Segment{Text: t, Mode: ShiftJISKanji}, err == nil
		},
	},
	Latin1: {
		name:          "latin-1",
		indicator:     4,
		countLength:   [3]byte{8, 16, 16},
		encodedLength: func(b, r int) int { return r * 8 },
		accepts:       func(r rune) bool { return uint32(r) < 0x100 },
		transform: func(s string) (Segment, bool) {
			t, err := charmap.ISO8859_1.NewEncoder().String(s)
			return Segment{Text: t, Mode: Byte}, err == nil
		},
	},
	ShiftJISKanji: {
		name:          "shift-jis-kanji",
		indicator:     8,
		countLength:   [3]byte{8, 10, 12},
		encodedLength: func(b, r int) int { return b >> 1 * 13 },
		count:         func(s string) int { return len(s) >> 1 },
		cutRune: func(s string) (rune, int) {
			r, sz := rune(s[0]), 1
			if sjistbl[s[0]]&1 != 0 && len(s) > 1 && sjistbl[s[1]]&2 != 0 {
				r, sz = r<<8|rune(s[1]), 2
			}
			return r, sz
		},
		encode2: func(b [2]byte) (uint32, int) {
			return uint32(b[0]&^0xc0)*0xc0 + uint32(b[1]) - 0x100, 13
		},
	},
	FNC1Alpha: {
		name:          "fnc1-alphanumeric",
		indicator:     2,
		countLength:   [3]byte{9, 11, 13},
		encodedLength: func(b, r int) int { return (11*b + 1) / 2 },
		accepts: func(r rune) bool {
			return r == 0x1d || (uint32(r) >= ' ' && alphamask>>(uint32(r)-' ')&1 != 0)
		},
		transform: func(s string) (Segment, bool) {
			return Segment{Text: strings.ReplaceAll(s, "\x1d", "%"), Mode: Alphanumeric}, true
		},
	},
	ECI: {
		name:      "eci",
		indicator: 7,
		accepts:   nothing,
		valid: func(s string) bool {
			ok := s != "" && len(s) == max(1, int(s[0]>>6))
			if ok && len(s) == 3 {
				ok = uint32(s[0]&^0xc0)<<16+uint32(s[1])<<8+uint32(s[2]) < 1e6
			}
			return ok
		},
	},
	StructAppend: {
		name:      "structured-append",
		indicator: 3,
		accepts:   nothing,
		valid:     func(s string) bool { return len(s) == 2 && s[0]>>4 <= s[0]&0x0f },
	},
	FNC1First: {
		name:      "fnc1-in-1st-position",
		indicator: 5,
		accepts:   nothing,
		valid:     func(s string) bool { return s == "" },
	},
	FNC1Second: {
		name:      "fnc1-in-2nd-position",
		indicator: 9,
		accepts:   nothing,
		valid:     func(s string) bool { return len(s) == 1 },
	},
}

func getMode(mode Mode) *modeEncoder {
	if mode < 0 || int(mode) >= len(stdModes) {
		return nil
	}
	return &stdModes[mode]
}

func (mode Mode) String() string {
	if m := getMode(mode); m != nil {
		return m.name
	}
	if mode == Terminator {
		return "terminator"
	}
	return strconv.Itoa(int(mode))
}

type (
	// CutRuneFunc returns the first rune of a string and its width in
	// bytes, for modes whose input is not plain UTF-8.
	CutRuneFunc func(string) (rune, int)
	// AcceptsFunc reports whether a rune is valid input for a mode.
	AcceptsFunc func(rune) bool
)

// RuneFilter returns the CutRune and Accepts functions mode uses to
// validate input character by character, for callers (such as a
// multi-mode text segmenter) that need to classify runes themselves
// rather than call Segment.IsValid on a whole string. If mode is
// invalid, RuneFilter returns a nil CutRuneFunc and an AcceptsFunc that
// rejects every rune; the raw-payload modes (ECI, StructAppend,
// FNC1First, FNC1Second) also get that rejecting AcceptsFunc. Byte and
// ShiftJISKanji have a nil AcceptsFunc, and the CutRuneFunc is nil for
// every mode except ShiftJISKanji.
func (mode Mode) RuneFilter() (CutRuneFunc, AcceptsFunc) {
	if m := getMode(mode); m != nil {
		return m.cutRune, m.accepts
	}
	return nil, nothing
}

// length returns the encoded length in bits of a valid string of the
// given byte/rune length in mode at the given QR version size class,
// including the mode indicator and character count field.
func (m *modeEncoder) length(bytes, runes, class int) int {
	n := 4 + int(m.countLength[class])
	if f := m.encodedLength; f != nil {
		n += f(bytes, runes)
	} else {
		n += bytes * 8
	}
	return n
}

// Length returns the encoded length in bits of a valid string of the
// given byte/rune length encoded in mode at size class, or 0 if mode is
// invalid.
func (mode Mode) Length(bytes, runes, class int) int {
	if m := getMode(mode); m != nil {
		return m.length(bytes, runes, class)
	}
	return 0
}

// A Segment describes one QR data segment: a mode and its raw text
// (already transformed, for modes that require transformation).
type Segment struct {
	Text string
	Mode Mode
}

// SegmentError reports a string invalid for its mode.
type SegmentError Segment

func (e SegmentError) Error() string {
	if m := getMode(e.Mode); m != nil {
		return fmt.Sprintf("qr: string not valid for %s mode: %q", m.name, e.Text)
	}
	return fmt.Sprintf("qr: invalid mode %d", e.Mode)
}

// isValid reports whether seg's text is acceptable input for mode m.
func (m *modeEncoder) isValid(seg Segment) bool {
	if v := m.valid; v != nil {
		return v(seg.Text)
	}
	is := m.accepts
	if is == nil {
		return true
	}
	if cut := m.cutRune; cut != nil {
		for s := seg.Text; s != ""; {
			r, sz := cut(s)
			s = s[sz:]
			if !is(r) {
				return false
			}
		}
		return true
	}
	for _, r := range seg.Text {
		if !is(r) {
			return false
		}
	}
	return true
}

// IsValid reports whether seg is valid, encodable data.
func (seg Segment) IsValid() bool {
	if m := getMode(seg.Mode); m != nil {
		return m.isValid(seg)
	}
	return false
}

// EncodedLength returns seg's encoded length in bits at the given
// version size class, or 0 if seg.Mode is invalid.  The segment is not
// validated.
func (seg Segment) EncodedLength(class int) int {
	m := getMode(seg.Mode)
	if m == nil {
		return 0
	}
	var rlen int
	if cut := m.cutRune; cut != nil {
		for s := seg.Text; s != ""; rlen++ {
			_, sz := cut(s)
			s = s[sz:]
		}
	} else {
		rlen = utf8.RuneCountInString(seg.Text)
	}
	return m.length(len(seg.Text), rlen, class)
}

// transform applies seg.Mode's transform, if any, validating before and
// after.
func (seg Segment) transform() (Segment, *modeEncoder, error) {
	m := getMode(seg.Mode)
	if m == nil {
		return Segment{}, nil, SegmentError(seg)
	}
	if m.transform == nil {
		if !m.isValid(seg) {
			return Segment{}, nil, SegmentError(seg)
		}
		return seg, m, nil
	}
	if !m.isValid(seg) {
		return Segment{}, nil, SegmentError(seg)
	}
	ts, ok := m.transform(seg.Text)
	if !ok {
		return Segment{}, nil, SegmentError(seg)
	}
	tm := getMode(ts.Mode)
	if tm == nil || !tm.isValid(ts) {
		return Segment{}, nil, SegmentError(seg)
	}
	return ts, tm, nil
}

// Transform applies seg.Mode's input transformation, if any (e.g. Kanji
// to ShiftJISKanji), validating the segment before and after. Modes with
// no transform return seg unchanged once validated.
func (seg Segment) Transform() (Segment, error) {
	ts, _, err := seg.transform()
	return ts, err
}

// Encode writes seg, encoded for the given QR version size class, to b.
func (seg Segment) Encode(b *Bits, class int) error {
	ts, m, err := seg.transform()
	if err != nil {
		return err
	}
	b.Write(uint32(m.indicator), 4)
	s := ts.Text
	w := len(s)
	if m.count != nil {
		w = m.count(s)
	}
	b.Write(uint32(w), int(m.countLength[class]))

	if ts.Mode == Numeric {
		for ; len(s) >= 3; s = s[3:] {
			b.Write(uint32(s[0]-'0')*100+uint32(s[1]-'0')*10+uint32(s[2]-'0'), 10)
		}
		if len(s) == 2 {
			b.Write(uint32(s[0]-'0')*10+uint32(s[1]-'0'), 7)
			s = ""
		}
	}
	enc2, enc1 := m.encode2, m.encode1
	if enc2 != nil || enc1 != nil {
		if enc2 != nil {
			for len(s) >= 2 {
				b.Write(enc2([2]byte{s[0], s[1]}))
				s = s[2:]
			}
		}
		if enc1 != nil {
			for len(s) >= 1 {
				b.Write(enc1(s[0]))
				s = s[1:]
			}
		} else if s != "" {
			panic("qr: " + m.name + " mode internal error")
		}
		return nil
	}
	for i := 0; i < len(s); i++ {
		b.Write(uint32(s[i]), 8)
	}
	return nil
}
