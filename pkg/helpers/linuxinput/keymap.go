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

package linuxinput

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	ErrNoDevice = errors.New("virtual keyboard is not available")
	ErrUnmapped = errors.New("no key mapping for character")
)

// Linux evdev key codes.
const (
	KeyEsc        = 1
	KeyBackspace  = 14
	KeyTab        = 15
	KeyEnter      = 28
	KeyLeftCtrl   = 29
	KeyLeftShift  = 42
	KeyLeftAlt    = 56
	KeySpace      = 57
	KeyHome       = 102
	KeyUp         = 103
	KeyLeft       = 105
	KeyRight      = 106
	KeyEnd        = 107
	KeyDown       = 108
	KeyDelete     = 111
	KeyLeftMeta   = 125
	keyF1         = 59
	keyF11        = 87
	keyF12        = 88
	shiftedOffset = -1
)

// unshifted US layout, negative entries below are derived with shift.
var charCodes = map[rune]int{
	'1': 2, '2': 3, '3': 4, '4': 5, '5': 6, '6': 7, '7': 8, '8': 9, '9': 10, '0': 11,
	'-': 12, '=': 13,
	'q': 16, 'w': 17, 'e': 18, 'r': 19, 't': 20, 'y': 21, 'u': 22, 'i': 23, 'o': 24, 'p': 25,
	'[': 26, ']': 27,
	'a': 30, 's': 31, 'd': 32, 'f': 33, 'g': 34, 'h': 35, 'j': 36, 'k': 37, 'l': 38,
	';': 39, '\'': 40, '`': 41, '\\': 43,
	'z': 44, 'x': 45, 'c': 46, 'v': 47, 'b': 48, 'n': 49, 'm': 50,
	',': 51, '.': 52, '/': 53,
	' ': KeySpace, '\t': KeyTab, '\n': KeyEnter, '\r': KeyEnter,
}

var shiftedChars = map[rune]rune{
	'!': '1', '@': '2', '#': '3', '$': '4', '%': '5', '^': '6', '&': '7', '*': '8', '(': '9', ')': '0',
	'_': '-', '+': '=', '{': '[', '}': ']', '|': '\\',
	':': ';', '"': '\'', '~': '`', '<': ',', '>': '.', '?': '/',
}

var namedKeys = map[string]int{
	"esc":       KeyEsc,
	"escape":    KeyEsc,
	"backspace": KeyBackspace,
	"tab":       KeyTab,
	"enter":     KeyEnter,
	"return":    KeyEnter,
	"ctrl":      KeyLeftCtrl,
	"shift":     KeyLeftShift,
	"alt":       KeyLeftAlt,
	"meta":      KeyLeftMeta,
	"space":     KeySpace,
	"home":      KeyHome,
	"end":       KeyEnd,
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
	"delete":    KeyDelete,
	"f11":       keyF11,
	"f12":       keyF12,
}

func init() {
	// f1 to f10 are contiguous
	for i := range 10 {
		namedKeys["f"+strconv.Itoa(i+1)] = keyF1 + i
	}
}

// RuneCode returns the key code for r. Characters that need shift are
// returned negated, which Keyboard.Press understands.
func RuneCode(r rune) (int, bool) {
	if code, ok := charCodes[r]; ok {
		return code, true
	}
	if r >= 'A' && r <= 'Z' {
		return shiftedOffset * charCodes[r-'A'+'a'], true
	}
	if base, ok := shiftedChars[r]; ok {
		return shiftedOffset * charCodes[base], true
	}
	return 0, false
}

// ToKeyboardCode maps a single character or a braced key name like "{enter}".
func ToKeyboardCode(name string) (int, bool) {
	if len(name) > 2 && name[0] == '{' && name[len(name)-1] == '}' {
		code, ok := namedKeys[strings.ToLower(name[1:len(name)-1])]
		return code, ok
	}
	if utf8.RuneCountInString(name) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return RuneCode(r)
}

// Mappable reports whether every rune in s can be typed directly.
func Mappable(s string) bool {
	for _, r := range s {
		if _, ok := RuneCode(r); !ok {
			return false
		}
	}
	return true
}
