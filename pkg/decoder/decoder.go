// QR2Key
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of QR2Key.
//
// QR2Key is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// QR2Key is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with QR2Key.  If not, see <http://www.gnu.org/licenses/>.

// Package decoder turns raw serial chunks into text. Readers in the field emit
// either Shift-JIS or UTF-8 with no encoding tag, so decoding is a fixed
// priority list of attempts with a lossless hex rendering as the last resort.
package decoder

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
	EncodingHex      = "hex"
)

// utf8JapaneseLead is the lead byte of three-byte UTF-8 sequences covering
// hiragana, katakana and most CJK punctuation.
const utf8JapaneseLead = 0xE3

type attempt struct {
	applies func(data []byte) bool
	decode  func(data []byte) (string, bool)
	name    string
}

var attempts = []attempt{
	{
		name:    EncodingUTF8,
		applies: func(data []byte) bool { return len(data) > 0 && data[0] == utf8JapaneseLead },
		decode:  decodeUTF8,
	},
	{name: EncodingShiftJIS, decode: decodeShiftJIS},
	{name: EncodingUTF8, decode: decodeUTF8},
}

// Decode returns the text for data. It never fails.
func Decode(data []byte) string {
	text, _ := DecodeDetail(data)
	return text
}

// DecodeDetail is Decode and also reports which encoding produced the text.
func DecodeDetail(data []byte) (text, encoding string) {
	for _, a := range attempts {
		if a.applies != nil && !a.applies(data) {
			continue
		}
		if s, ok := a.decode(data); ok {
			return s, a.name
		}
	}
	return Hex(data), EncodingHex
}

// Hex renders every byte as two lowercase hex digits separated by spaces.
func Hex(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(data) * 3)
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(hex.EncodeToString([]byte{b}))
	}
	return sb.String()
}

func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// decodeShiftJIS accepts only JIS X 0201 single bytes and JIS X 0208 double
// byte cells. x/text also decodes the NEC and IBM extension rows, user
// defined rows and stray 0x80 bytes, so those are rejected before decoding,
// and undecodable cells come back as U+FFFD.
func decodeShiftJIS(data []byte) (string, bool) {
	if !validShiftJIS(data) {
		return "", false
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	s := string(out)
	for _, r := range s {
		if r == utf8.RuneError || isC1(r) || isPrivateUse(r) {
			return "", false
		}
	}
	return s, true
}

func validShiftJIS(data []byte) bool {
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b <= 0x7f, b >= 0xa1 && b <= 0xdf:
			continue
		case isJIS0208Lead(b):
			if i+1 >= len(data) || !isShiftJISTrail(data[i+1]) {
				return false
			}
			i++
		default:
			return false
		}
	}
	return true
}

// isJIS0208Lead reports lead bytes of the assigned JIS X 0208 rows. Rows
// 9 to 15 (0x85-0x87, where NEC put its extensions) and everything from
// 0xEB up are excluded.
func isJIS0208Lead(b byte) bool {
	return (b >= 0x81 && b <= 0x84) || (b >= 0x88 && b <= 0x9f) || (b >= 0xe0 && b <= 0xea)
}

func isShiftJISTrail(b byte) bool {
	return (b >= 0x40 && b <= 0x7e) || (b >= 0x80 && b <= 0xfc)
}

func isC1(r rune) bool {
	return r >= 0x80 && r <= 0x9f
}

func isPrivateUse(r rune) bool {
	return r >= 0xe000 && r <= 0xf8ff
}
