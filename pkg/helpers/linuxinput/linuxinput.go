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

package linuxinput

import (
	"fmt"
	"strings"
	"time"

	"github.com/bendahl/uinput"
)

const (
	DeviceName     = "QR2Key"
	DefaultTimeout = 40 * time.Millisecond
	uinputDev      = "/dev/uinput"
)

// Keyboard is a virtual uinput keyboard. Delay is how long each key is held.
type Keyboard struct {
	Device uinput.Keyboard
	Delay  time.Duration
}

func NewKeyboard(delay time.Duration) (Keyboard, error) {
	kbd, err := uinput.CreateKeyboard(uinputDev, []byte(DeviceName))
	if err != nil {
		return Keyboard{}, fmt.Errorf("failed to create keyboard device: %w", err)
	}
	return Keyboard{
		Device: kbd,
		Delay:  delay,
	}, nil
}

func (k *Keyboard) Close() error {
	if k.Device == nil {
		return nil
	}
	if err := k.Device.Close(); err != nil {
		return fmt.Errorf("failed to close keyboard device: %w", err)
	}
	return nil
}

// Press taps a single key. A negative code is pressed with shift held.
func (k *Keyboard) Press(key int) error {
	if k.Device == nil {
		return ErrNoDevice
	}
	if key < 0 {
		return k.Combo(KeyLeftShift, -key)
	}

	err := k.Device.KeyDown(key)
	if err != nil {
		return fmt.Errorf("failed to press key down: %w", err)
	}

	time.Sleep(k.Delay)

	if err := k.Device.KeyUp(key); err != nil {
		return fmt.Errorf("failed to release key: %w", err)
	}
	return nil
}

// Combo holds every key down in order, then releases them in order.
func (k *Keyboard) Combo(keys ...int) error {
	if k.Device == nil {
		return ErrNoDevice
	}
	for _, key := range keys {
		err := k.Device.KeyDown(key)
		if err != nil {
			return fmt.Errorf("failed to press combo key down: %w", err)
		}
	}
	time.Sleep(k.Delay)
	for _, key := range keys {
		err := k.Device.KeyUp(key)
		if err != nil {
			return fmt.Errorf("failed to release combo key: %w", err)
		}
	}
	return nil
}

// TypeRune types one character using the US layout.
func (k *Keyboard) TypeRune(r rune) error {
	code, ok := RuneCode(r)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnmapped, r)
	}
	return k.Press(code)
}

// PressName parses a key name ("a", "{enter}", "{ctrl+v}") and presses it.
func (k *Keyboard) PressName(name string) error {
	codes, isCombo, err := ParseKeyCombo(name)
	if err != nil {
		return fmt.Errorf("failed to parse key combo: %w", err)
	}
	if isCombo {
		if err := k.Combo(codes...); err != nil {
			return fmt.Errorf("failed to press keyboard combo: %w", err)
		}
		return nil
	}
	if err := k.Press(codes[0]); err != nil {
		return fmt.Errorf("failed to press keyboard key: %w", err)
	}
	return nil
}

func ParseKeyCombo(arg string) (codes []int, isCombo bool, err error) {
	var names []string

	// {key1+key2+...} or a single key
	if len(arg) > 1 && arg[0] == '{' && arg[len(arg)-1] == '}' {
		parts := strings.Split(arg[1:len(arg)-1], "+")
		if len(parts) > 1 {
			names = make([]string, len(parts))
			for i, part := range parts {
				if len(part) > 1 {
					names[i] = "{" + part + "}"
				} else {
					names[i] = part
				}
			}
			isCombo = true
		} else {
			names = []string{arg}
		}
	} else {
		names = []string{arg}
	}

	codes = make([]int, 0, len(names))
	for _, name := range names {
		code, ok := ToKeyboardCode(name)
		if !ok {
			return nil, false, fmt.Errorf("unknown keyboard key: %s", name)
		}
		codes = append(codes, code)
	}

	return codes, isCombo, nil
}
