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

// Package keyboard types decoded text into the focused application.
package keyboard

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Sink injects keystrokes. Implementations talk to the OS input system.
type Sink interface {
	TypeString(text string) error
	PressKey(name string) error
}

// Options control how one Dispatch call types its text.
type Options struct {
	TypeDelay       time.Duration
	PressEnterAfter bool
}

// Dispatcher paces text into a Sink.
type Dispatcher struct {
	sink  Sink
	clock clockwork.Clock
}

func NewDispatcher(sink Sink, clock clockwork.Clock) *Dispatcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Dispatcher{sink: sink, clock: clock}
}

// Dispatch types text. With a positive TypeDelay each rune is sent on its
// own with the delay between runes, otherwise the whole string is sent at
// once. The first sink error is logged and the rest of the call, including
// the trailing Enter, is dropped.
func (d *Dispatcher) Dispatch(text string, opts Options) {
	if text == "" {
		return
	}

	if opts.TypeDelay > 0 {
		first := true
		for _, r := range text {
			if !first {
				d.clock.Sleep(opts.TypeDelay)
			}
			first = false
			if err := d.sink.TypeString(string(r)); err != nil {
				log.Error().Err(err).Msg("failed to type character, abandoning input")
				return
			}
		}
	} else if err := d.sink.TypeString(text); err != nil {
		log.Error().Err(err).Msg("failed to type text")
		return
	}

	if opts.PressEnterAfter {
		if err := d.sink.PressKey("enter"); err != nil {
			log.Error().Err(err).Msg("failed to press enter")
		}
	}
}
