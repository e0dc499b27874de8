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

// Package serialport owns the single serial connection: opening it 8N1,
// draining whatever is buffered, and closing it when the device goes away.
package serialport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/qr2key/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

const (
	// DefaultPollWindow is the port read timeout. A read that returns nothing
	// within it means the OS buffer is empty.
	DefaultPollWindow = 10 * time.Millisecond
	// MaxReadSize caps the bytes returned by one ReadAvailable.
	MaxReadSize = 8 * 1024
	readChunk   = 512
)

// State is a snapshot of the connection.
type State struct {
	Device   string
	BaudRate int
	Timeout  time.Duration
	Open     bool
}

// Channel is the one open serial port. All methods are serialized.
type Channel struct {
	clock      clockwork.Clock
	factory    PortFactory
	port       Port
	exists     func(device string) bool
	state      State
	pollWindow time.Duration
	mu         syncutil.Mutex
}

type Option func(*Channel)

func WithPortFactory(f PortFactory) Option {
	return func(c *Channel) { c.factory = f }
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *Channel) { c.clock = clock }
}

func WithPollWindow(d time.Duration) Option {
	return func(c *Channel) { c.pollWindow = d }
}

// WithDeviceCheck replaces the test used to tell whether a device path is
// still present after a read error.
func WithDeviceCheck(fn func(device string) bool) Option {
	return func(c *Channel) { c.exists = fn }
}

func NewChannel(opts ...Option) *Channel {
	c := &Channel{
		clock:      clockwork.NewRealClock(),
		factory:    DefaultPortFactory,
		exists:     deviceExists,
		pollWindow: DefaultPollWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// deviceExists only checks absolute paths; names like COM3 have no file.
func deviceExists(device string) bool {
	if !filepath.IsAbs(device) {
		return true
	}
	_, err := os.Stat(device)
	return err == nil
}

// Open connects to device at baud, 8N1. Any open port is closed first.
// A positive timeout bounds how long a single ReadAvailable may keep draining.
func (c *Channel) Open(device string, baud int, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port != nil {
		log.Info().Str("device", c.state.Device).Msg("closing previous serial connection")
		if err := c.closeLocked(); err != nil {
			log.Warn().Err(err).Msg("error closing previous serial connection")
		}
	}

	port, err := c.factory(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return &ConnectionError{Device: device, Err: err}
	}

	if err := port.SetReadTimeout(c.pollWindow); err != nil {
		if closeErr := port.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing serial port after failed setup")
		}
		return &ConnectionError{Device: device, Err: fmt.Errorf("failed to set read timeout: %w", err)}
	}

	c.port = port
	c.state = State{
		Device:   device,
		BaudRate: baud,
		Timeout:  timeout,
		Open:     true,
	}
	log.Info().Str("device", device).Int("baud", baud).Msg("opened serial connection")
	return nil
}

// ReadAvailable returns the bytes buffered right now, or nil if there are
// none or no port is open. It never waits for more data to arrive.
func (c *Channel) ReadAvailable() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return nil, nil
	}

	bounded := c.state.Timeout > 0
	deadline := c.clock.Now().Add(c.state.Timeout)
	buf := make([]byte, readChunk)
	var out []byte

	for len(out) < MaxReadSize {
		n, err := c.port.Read(buf[:min(readChunk, MaxReadSize-len(out))])
		if err != nil {
			return nil, c.readFailedLocked(err)
		}
		if n == 0 {
			break
		}
		out = append(out, buf[:n]...)
		if bounded && !c.clock.Now().Before(deadline) {
			break
		}
	}

	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (c *Channel) readFailedLocked(err error) error {
	device := c.state.Device
	removed := isRemoval(err) || !c.exists(device)
	if removed {
		log.Warn().Str("device", device).Msg("serial device removed, closing connection")
		if closeErr := c.closeLocked(); closeErr != nil {
			log.Debug().Err(closeErr).Msg("error closing removed serial device")
		}
	}
	return &ReadError{Device: device, Err: err, Removed: removed}
}

// Close closes the port if one is open. Calling it again is a no-op.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Channel) closeLocked() error {
	if c.port == nil {
		return nil
	}
	port := c.port
	device := c.state.Device
	c.port = nil
	c.state.Open = false

	if err := port.Close(); err != nil {
		var pe *serial.PortError
		if errors.As(err, &pe) && pe.Code() == serial.PortClosed {
			return nil
		}
		return fmt.Errorf("failed to close serial port %s: %w", device, err)
	}
	log.Info().Str("device", device).Msg("closed serial connection")
	return nil
}

func (c *Channel) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.port != nil
}

// Device returns the open device, or "" when closed.
func (c *Channel) Device() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port == nil {
		return ""
	}
	return c.state.Device
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
