//go:build linux

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

package keyboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/ZaparooProject/qr2key/pkg/helpers/linuxinput"
	"github.com/rs/zerolog/log"
)

// UinputSink types through a virtual uinput keyboard. Text with characters
// outside the US layout is pasted via the clipboard when Paste is set.
type UinputSink struct {
	Clipboard Clipboard
	kbd       linuxinput.Keyboard
	Paste     bool
}

// NewKeyboardFunc creates the virtual device. linuxinput.NewKeyboard in
// production.
type NewKeyboardFunc func(time.Duration) (linuxinput.Keyboard, error)

func NewUinputSink(newKbd NewKeyboardFunc, paste bool) (*UinputSink, error) {
	if newKbd == nil {
		newKbd = linuxinput.NewKeyboard
	}
	kbd, err := newKbd(linuxinput.DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create keyboard: %w", err)
	}
	log.Debug().Msg("virtual keyboard initialized")
	return &UinputSink{
		kbd:       kbd,
		Paste:     paste,
		Clipboard: &SystemClipboard{},
	}, nil
}

func (s *UinputSink) TypeString(text string) error {
	if !linuxinput.Mappable(text) {
		return s.paste(text)
	}
	for _, r := range text {
		if err := s.kbd.TypeRune(r); err != nil {
			return fmt.Errorf("failed to type %q: %w", r, err)
		}
	}
	return nil
}

func (s *UinputSink) paste(text string) error {
	if !s.Paste || s.Clipboard == nil {
		return fmt.Errorf("%w in %q", linuxinput.ErrUnmapped, text)
	}
	if err := s.Clipboard.WriteText(text); err != nil {
		return fmt.Errorf("failed to paste text: %w", err)
	}
	if err := s.kbd.PressName("{ctrl+v}"); err != nil {
		return fmt.Errorf("failed to paste text: %w", err)
	}
	return nil
}

// PressKey accepts bare key names ("enter") as well as "{ctrl+v}" combos.
func (s *UinputSink) PressKey(name string) error {
	if len(name) > 1 && !strings.HasPrefix(name, "{") {
		name = "{" + name + "}"
	}
	if err := s.kbd.PressName(name); err != nil {
		return fmt.Errorf("failed to press %s: %w", name, err)
	}
	return nil
}

func (s *UinputSink) Close() error {
	return s.kbd.Close()
}
