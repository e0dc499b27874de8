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

	"github.com/ZaparooProject/qr2key/pkg/helpers/syncutil"
	"golang.design/x/clipboard"
)

// Clipboard holds text for the paste fallback.
type Clipboard interface {
	WriteText(text string) error
}

// SystemClipboard writes to the OS clipboard, initializing it on first use.
type SystemClipboard struct {
	err    error
	mu     syncutil.Mutex
	inited bool
}

func (c *SystemClipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inited {
		c.inited = true
		if err := clipboard.Init(); err != nil {
			c.err = fmt.Errorf("failed to initialize clipboard: %w", err)
		}
	}
	if c.err != nil {
		return c.err
	}

	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
