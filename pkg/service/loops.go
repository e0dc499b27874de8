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

package service

import (
	"context"
	"errors"

	"github.com/ZaparooProject/qr2key/pkg/decoder"
	"github.com/ZaparooProject/qr2key/pkg/keyboard"
	"github.com/ZaparooProject/qr2key/pkg/ports"
	"github.com/ZaparooProject/qr2key/pkg/serialport"
	"github.com/rs/zerolog/log"
)

// stopped guards each tick: select picks randomly when a tick and ctx.Done
// are ready together.
func (c *Controller) stopped(ctx context.Context) bool {
	return ctx.Err() != nil || c.state.Load() == Stopped
}

func (c *Controller) readerLoop(ctx context.Context) error {
	ticker := c.clock.NewTicker(ReadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if c.stopped(ctx) {
				return nil
			}
			c.readCycle()
		}
	}
}

// readCycle drains the channel once and types the decoded text unless
// paused. Data read while paused is dropped.
func (c *Controller) readCycle() {
	if !c.channel.IsOpen() {
		return
	}

	data, err := c.channel.ReadAvailable()
	if err != nil {
		var readErr *serialport.ReadError
		if errors.As(err, &readErr) && readErr.Removed {
			log.Warn().Err(err).Msg("serial device disconnected")
		} else {
			log.Error().Err(err).Msg("error reading serial data")
		}
		return
	}
	if len(data) == 0 {
		return
	}

	text, encoding := decoder.DecodeDetail(data)
	log.Debug().
		Int("bytes", len(data)).
		Str("encoding", encoding).
		Str("text", text).
		Msg("received serial data")

	if c.state.Load() != Running {
		log.Info().Int("bytes", len(data)).Msg("paused, discarding received data")
		return
	}

	c.dispatcher.Dispatch(text, keyboard.Options{
		TypeDelay:       c.cfg.TypeDelay(),
		PressEnterAfter: c.cfg.PressEnterAfter(),
	})
	c.scans.Add(1)
}

func (c *Controller) monitorLoop(ctx context.Context) error {
	watcher := c.registry.NewWatcher()
	watcher.Poll(c.filter())

	ticker := c.clock.NewTicker(c.cfg.MonitorInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if c.stopped(ctx) {
				return nil
			}
			c.monitorCycle(watcher)
		}
	}
}

// monitorCycle connects to a newly attached device, or retries
// auto-detection once, but only while no channel is open. An open
// connection is never replaced by a new device.
func (c *Controller) monitorCycle(watcher *ports.Watcher) {
	f := c.filter()
	added := watcher.Poll(f)

	for _, p := range added {
		log.Info().Str("port", p.String()).Msg("new serial device detected")
	}

	if c.channel.IsOpen() {
		if len(added) > 0 {
			log.Debug().Str("device", c.channel.Device()).Msg("already connected, ignoring new device")
		}
		return
	}

	for _, p := range added {
		if c.open(p.Device) == nil {
			return
		}
	}

	if !c.cfg.AutoDetect() {
		return
	}
	device, ok := c.registry.AutoDetect(f)
	if !ok {
		c.noDeviceLog.Do(func() {
			log.Info().Msg("waiting for a matching serial device")
		})
		return
	}
	_ = c.open(device)
}
