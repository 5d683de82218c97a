// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package qrcodec encodes and decodes QR code symbols (ISO/IEC 18004).

Encode turns a UTF-8 string into one or more module matrices; Decode
turns a scanned module matrix back into a string and a report of the
symbol's metadata. Both operate purely on boolean matrices: adding a
quiet zone, rendering to an image, and locating/rectifying a symbol in
a photograph are the caller's responsibility.
*/
package qrcodec // import "github.com/qr-codec/qrcodec"

import (
	"github.com/qr-codec/qrcodec/coding"
	"github.com/qr-codec/qrcodec/segment"
)

// An InputMode selects how Encode's input text is segmented.
type InputMode int

const (
	// Auto splits text into whichever mix of numeric, alphanumeric,
	// byte and kanji segments yields the shortest encoding.
	Auto InputMode = iota
	ModeNumeric
	ModeAlphanumeric
	ModeByte
	ModeKanji
	ModeECI
	ModeFNC1First
	ModeFNC1Second
	ModeStructuredAppend
)

// Options configures Encode.
type Options struct {
	// Mode selects the segmentation strategy. Zero value is Auto.
	Mode InputMode

	// Version is the QR version (1-40) to encode at, or 0 to pick
	// the smallest version that fits.
	Version coding.Version

	// ECC is the error correction level. Zero value is coding.L.
	ECC coding.Level

	// Mask is the data mask pattern (0-7), or -1 to pick the mask
	// with the lowest penalty score. The zero value selects pattern
	// 0, not auto; callers that want auto-selection must set this
	// field to -1 explicitly.
	Mask int

	// ECIDesignator is the ECI assignment number, used only when
	// Mode is ModeECI.
	ECIDesignator int

	// StructuredAppendCount selects Structured Append when greater
	// than 1. Zero value is 1; values outside 0-16 are rejected. At 1,
	// Encode produces a single symbol with no Structured Append header.
	// Above 1, the input is split with segment.SplitMulti at Version
	// (version 40 when Version is 0) into as many symbols as that
	// version's capacity requires; the count does not set the number
	// of symbols.
	StructuredAppendCount int
}

// Symbol is one encoded QR code: a square boolean module matrix with
// no quiet zone.
type Symbol struct {
	*coding.Matrix
}

// Encode returns the symbol or symbols for text under opts.
func Encode(text string, opts Options) ([]Symbol, error) {
	level := opts.ECC
	if !level.Valid() && level != 0 {
		return nil, coding.ErrLevel
	}
	mask := opts.Mask
	if mask < -1 || mask > 7 {
		return nil, &coding.Error{Kind: coding.InvalidInput, Msg: "mask out of range -1..7"}
	}
	count := opts.StructuredAppendCount
	if count == 0 {
		count = 1
	}
	if count < 1 || count > 16 {
		return nil, &coding.Error{Kind: coding.InvalidInput, Msg: "structured_append_count out of range 1..16"}
	}

	data, err := buildData(text, opts)
	if err != nil {
		return nil, err
	}

	if count == 1 {
		segs, v, err := segment.Split(data, level)
		if err != nil {
			return nil, wrapSplitErr(err)
		}
		if opts.Version != 0 {
			v = opts.Version
		}
		m, err := coding.EncodeWithMask(v, level, mask, segs...)
		if err != nil {
			return nil, err
		}
		return []Symbol{{m}}, nil
	}

	v := opts.Version
	if v == 0 {
		v = coding.MaxVersion
	}
	segsByCode, err := segment.SplitMulti(nil, data, v, level)
	if err != nil {
		return nil, wrapSplitErr(err)
	}
	out := make([]Symbol, len(segsByCode))
	for i, segs := range segsByCode {
		m, err := coding.EncodeWithMask(v, level, mask, segs...)
		if err != nil {
			return nil, err
		}
		out[i] = Symbol{m}
	}
	return out, nil
}

// buildData turns text and opts.Mode into the segment.Data the
// encoder should split, wrapping it in an ECI segment first when
// opts.Mode is ModeECI.
func buildData(text string, opts Options) (segment.Data, error) {
	switch opts.Mode {
	case Auto:
		return segment.String{Text: text}, nil
	case ModeNumeric:
		return segment.Segment{Text: text, Mode: segment.Numeric}, nil
	case ModeAlphanumeric:
		return segment.Segment{Text: text, Mode: segment.Alphanumeric}, nil
	case ModeByte:
		return segment.Segment{Text: text, Mode: segment.Byte}, nil
	case ModeKanji:
		return segment.Segment{Text: text, Mode: segment.Kanji}, nil
	case ModeECI:
		if opts.ECIDesignator < 0 || opts.ECIDesignator > 999999 {
			return nil, &coding.Error{Kind: coding.InvalidInput, Msg: "eci_designator out of range 0..999999"}
		}
		return segment.Text(text, nil, uint32(opts.ECIDesignator)), nil
	case ModeFNC1First:
		return segment.List{
			segment.Segment{Mode: coding.FNC1First},
			segment.String{Text: text},
		}, nil
	case ModeFNC1Second:
		if text == "" {
			return nil, &coding.Error{Kind: coding.InvalidInput, Msg: "fnc1_second requires a one-byte application indicator"}
		}
		return segment.List{
			segment.Segment{Text: text[:1], Mode: coding.FNC1Second},
			segment.String{Text: text[1:]},
		}, nil
	default:
		return nil, &coding.Error{Kind: coding.InvalidInput, Msg: "unsupported mode"}
	}
}

func wrapSplitErr(err error) error {
	switch err {
	case segment.ErrLongText, segment.ErrLongHeader:
		return &coding.Error{Kind: coding.CapacityExceeded, Msg: err.Error()}
	case segment.ErrNotEncodable:
		return &coding.Error{Kind: coding.InvalidInput, Msg: err.Error()}
	case segment.ErrECI:
		return &coding.Error{Kind: coding.InvalidInput, Msg: err.Error()}
	default:
		return err
	}
}

// ModeSummary reports which data-segment modes a decoded symbol used,
// in order of first appearance, without duplicates.
type ModeSummary []coding.Mode

// StructuredAppendInfo is present in a DecodeReport when the symbol
// carries a Structured Append header.
type StructuredAppendInfo struct {
	Index  int // 0-based position among the symbol group
	Count  int // total number of symbols in the group
	Parity byte
}

// DecodeReport carries everything Decode recovers about a symbol
// besides its text.
type DecodeReport struct {
	Version          coding.Version
	ECC              coding.Level
	Mask             int
	ModeSummary      ModeSummary
	ECI              int // 0 if no ECI segment was present
	StructuredAppend *StructuredAppendInfo
}

// Decode reads a single QR symbol from a row-major, size*size boolean
// module matrix (true = dark, no quiet zone) and returns its decoded
// text and metadata report.
func Decode(size int, pixels []bool) (string, *DecodeReport, error) {
	res, err := coding.Decode(size, pixels)
	if err != nil {
		return "", nil, err
	}
	segs, err := coding.DecodeSegments(res.Version, res.Data)
	if err != nil {
		return "", nil, err
	}

	rep := &DecodeReport{Version: res.Version, ECC: res.Level, Mask: res.Mask}
	var text []byte
	seen := map[coding.Mode]bool{}
	for _, seg := range segs {
		switch seg.Mode {
		case coding.ECI:
			rep.ECI = decodeECINumber(seg.Text)
			continue
		case coding.StructAppend:
			if len(seg.Text) == 2 {
				rep.StructuredAppend = &StructuredAppendInfo{
					Index:  int(seg.Text[0] >> 4),
					Count:  int(seg.Text[0]&0x0f) + 1,
					Parity: seg.Text[1],
				}
			}
			continue
		case coding.FNC1First, coding.FNC1Second:
			continue
		}
		if !seen[seg.Mode] {
			seen[seg.Mode] = true
			rep.ModeSummary = append(rep.ModeSummary, seg.Mode)
		}
		text = append(text, seg.Text...)
	}
	return string(text), rep, nil
}

func decodeECINumber(s string) int {
	switch {
	case len(s) == 1:
		return int(s[0])
	case len(s) == 2:
		return int(s[0]&^0xc0)<<8 | int(s[1])
	case len(s) == 3:
		return int(s[0]&^0xe0)<<16 | int(s[1])<<8 | int(s[2])
	default:
		return 0
	}
}
