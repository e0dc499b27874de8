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

import "github.com/rs/zerolog/log"

// LogSink logs keystrokes instead of sending them.
type LogSink struct{}

func (LogSink) TypeString(text string) error {
	log.Info().Str("text", text).Msg("dry run: would type text")
	return nil
}

func (LogSink) PressKey(name string) error {
	log.Info().Str("key", name).Msg("dry run: would press key")
	return nil
}
