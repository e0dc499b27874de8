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

package config

import "time"

type Keyboard struct {
	TypeDelay       float64 `toml:"type_delay" validate:"gte=0"`
	PressEnterAfter bool    `toml:"press_enter_after"`
	PasteUnicode    bool    `toml:"paste_unicode"`
}

// TypeDelay is the pause between typed characters. Zero types the whole
// string at once.
func (c *Instance) TypeDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return seconds(c.vals.Keyboard.TypeDelay)
}

func (c *Instance) SetTypeDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Keyboard.TypeDelay = d.Seconds()
}

func (c *Instance) PressEnterAfter() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Keyboard.PressEnterAfter
}

func (c *Instance) SetPressEnterAfter(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Keyboard.PressEnterAfter = enabled
}

func (c *Instance) PasteUnicode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Keyboard.PasteUnicode
}
