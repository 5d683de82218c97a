// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "golang.org/x/text/encoding/japanese"

// indicatorMode maps a 4-bit wire mode indicator to the Mode used to
// decode its payload.  Kanji and Latin1 are encoder-only conveniences
// that both transform down to a wire-native mode (ShiftJISKanji and
// Byte respectively); decoding always yields the wire-native mode.
// ShiftJISKanji text is converted back to UTF-8; Byte payloads are
// returned as raw bytes.
var indicatorMode = map[byte]Mode{
	0: Terminator,
	1: Numeric,
	2: Alphanumeric,
	3: StructAppend,
	4: Byte,
	5: FNC1First,
	7: ECI,
	8: ShiftJISKanji,
	9: FNC1Second,
}

// DecodedSegment is one decoded data segment: Mode identifies how the
// payload was encoded, and Text holds it decoded back to UTF-8 for
// character modes (Numeric, Alphanumeric, ShiftJISKanji) or as raw
// bytes for modes whose payload is not text (Byte, ECI, StructAppend,
// FNC1Second).
type DecodedSegment struct {
	Mode Mode
	Text string
}

// DecodeSegments walks the concatenated data codewords of a symbol of
// version v and returns its segments, stopping at the terminator or
// when the stream is exhausted.
func DecodeSegments(v Version, data []byte) ([]DecodedSegment, error) {
	s := NewBitStream(data)
	class := v.SizeClass()
	var segs []DecodedSegment
	for {
		if s.Len() < 4 {
			return segs, nil
		}
		ind, _ := s.ReadBits(4)
		mode, ok := indicatorMode[byte(ind)]
		if !ok {
			return nil, errf(IllegalMode, "indicator %#x", ind)
		}
		if mode == Terminator {
			return segs, nil
		}
		seg, err := decodeSegment(&s, mode, class)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
}

func decodeSegment(s *BitStream, mode Mode, class int) (DecodedSegment, error) {
	m := getMode(mode)
	switch mode {
	case Numeric:
		return decodeNumeric(s, int(m.countLength[class]))
	case Alphanumeric:
		return decodeAlphanumeric(s, int(m.countLength[class]))
	case Byte:
		return decodeByte(s, int(m.countLength[class]))
	case ShiftJISKanji:
		return decodeShiftJISKanji(s, int(m.countLength[class]))
	case ECI:
		return decodeECI(s)
	case StructAppend:
		return decodeStructAppend(s)
	case FNC1First:
		return DecodedSegment{Mode: FNC1First}, nil
	case FNC1Second:
		v, ok := s.ReadBits(8)
		if !ok {
			return DecodedSegment{}, errf(TruncatedStream, "fnc1 application indicator")
		}
		return DecodedSegment{Mode: FNC1Second, Text: string([]byte{byte(v)})}, nil
	default:
		return DecodedSegment{}, errf(IllegalMode, "mode %s has no decoder", mode)
	}
}

func readCount(s *BitStream, n int) (int, error) {
	v, ok := s.ReadBits(n)
	if !ok {
		return 0, errf(TruncatedStream, "character count")
	}
	return int(v), nil
}

func decodeNumeric(s *BitStream, countBits int) (DecodedSegment, error) {
	n, err := readCount(s, countBits)
	if err != nil {
		return DecodedSegment{}, err
	}
	buf := make([]byte, 0, n)
	for n >= 3 {
		v, ok := s.ReadBits(10)
		if !ok {
			return DecodedSegment{}, errf(TruncatedStream, "numeric triplet")
		}
		if v >= 1000 {
			return DecodedSegment{}, errf(InvalidInput, "numeric triplet %d out of range", v)
		}
		buf = append(buf, byte('0'+v/100), byte('0'+v/10%10), byte('0'+v%10))
		n -= 3
	}
	switch n {
	case 2:
		v, ok := s.ReadBits(7)
		if !ok || v >= 100 {
			return DecodedSegment{}, errf(TruncatedStream, "numeric pair")
		}
		buf = append(buf, byte('0'+v/10), byte('0'+v%10))
	case 1:
		v, ok := s.ReadBits(4)
		if !ok || v >= 10 {
			return DecodedSegment{}, errf(TruncatedStream, "numeric digit")
		}
		buf = append(buf, byte('0'+v))
	}
	return DecodedSegment{Mode: Numeric, Text: string(buf)}, nil
}

func decodeAlphanumeric(s *BitStream, countBits int) (DecodedSegment, error) {
	n, err := readCount(s, countBits)
	if err != nil {
		return DecodedSegment{}, err
	}
	buf := make([]byte, 0, n)
	for n >= 2 {
		v, ok := s.ReadBits(11)
		if !ok || v >= 45*45 {
			return DecodedSegment{}, errf(TruncatedStream, "alphanumeric pair")
		}
		buf = append(buf, alphaRev[v/45], alphaRev[v%45])
		n -= 2
	}
	if n == 1 {
		v, ok := s.ReadBits(6)
		if !ok || v >= 45 {
			return DecodedSegment{}, errf(TruncatedStream, "alphanumeric singleton")
		}
		buf = append(buf, alphaRev[v])
	}
	return DecodedSegment{Mode: Alphanumeric, Text: string(buf)}, nil
}

func decodeByte(s *BitStream, countBits int) (DecodedSegment, error) {
	n, err := readCount(s, countBits)
	if err != nil {
		return DecodedSegment{}, err
	}
	buf := make([]byte, n)
	for i := range buf {
		v, ok := s.ReadBits(8)
		if !ok {
			return DecodedSegment{}, errf(TruncatedStream, "byte payload")
		}
		buf[i] = byte(v)
	}
	return DecodedSegment{Mode: Byte, Text: string(buf)}, nil
}

// sjisBytes inverts the 13-bit packing used by ShiftJISKanji's encoder:
// v = (b0 &^ 0xc0) * 0xc0 + b1 - 0x100.
func sjisBytes(v uint32) [2]byte {
	a := v/0xc0 + 1
	b1 := byte(v%0xc0 + 0x40)
	var b0 byte
	if a < 0x20 {
		b0 = byte(a) + 0x80
	} else {
		b0 = byte(a) + 0xc0
	}
	return [2]byte{b0, b1}
}

func decodeShiftJISKanji(s *BitStream, countBits int) (DecodedSegment, error) {
	n, err := readCount(s, countBits)
	if err != nil {
		return DecodedSegment{}, err
	}
	buf := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		v, ok := s.ReadBits(13)
		if !ok {
			return DecodedSegment{}, errf(TruncatedStream, "kanji character")
		}
		b := sjisBytes(v)
		buf = append(buf, b[0], b[1])
	}
	text, err := japanese.ShiftJIS.NewDecoder().String(string(buf))
	if err != nil {
		return DecodedSegment{}, errf(InvalidInput, "kanji payload is not valid Shift JIS")
	}
	return DecodedSegment{Mode: ShiftJISKanji, Text: text}, nil
}

func decodeECI(s *BitStream) (DecodedSegment, error) {
	b0, ok := s.ReadBits(8)
	if !ok {
		return DecodedSegment{}, errf(TruncatedStream, "eci designator")
	}
	n := 1
	switch {
	case b0>>6 == 2:
		n = 2
	case b0>>5 == 6:
		n = 3
	}
	buf := []byte{byte(b0)}
	for len(buf) < n {
		v, ok := s.ReadBits(8)
		if !ok {
			return DecodedSegment{}, errf(TruncatedStream, "eci designator")
		}
		buf = append(buf, byte(v))
	}
	return DecodedSegment{Mode: ECI, Text: string(buf)}, nil
}

// EncodeECIDesignator returns the raw byte payload for an ECI segment
// naming assignment number n, per ISO/IEC 18004 §7.4.2's 8/16/24-bit
// variable-length encoding.
func EncodeECIDesignator(n int) string {
	switch {
	case n < 128:
		return string([]byte{byte(n)})
	case n < 16384:
		return string([]byte{byte(0x80 | n>>8), byte(n)})
	default:
		return string([]byte{byte(0xc0 | n>>16), byte(n >> 8), byte(n)})
	}
}

// EncodeStructAppendHeader returns the 2-byte raw payload for a
// structured append segment: 0-based position index, total symbol
// count, and an 8-bit parity byte (the XOR of every byte of the
// original, unsplit input).
func EncodeStructAppendHeader(index, count int, parity byte) string {
	return string([]byte{byte(index<<4 | (count - 1)), parity})
}

func decodeStructAppend(s *BitStream) (DecodedSegment, error) {
	v, ok := s.ReadBits(16)
	if !ok {
		return DecodedSegment{}, errf(TruncatedStream, "structured append header")
	}
	return DecodedSegment{
		Mode: StructAppend,
		Text: string([]byte{byte(v >> 8), byte(v)}),
	}, nil
}
