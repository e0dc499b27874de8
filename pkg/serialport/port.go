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

package serialport

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"go.bug.st/serial"
)

// Port is the subset of serial.Port a Channel uses.
type Port interface {
	Read(p []byte) (n int, err error)
	Close() error
	SetReadTimeout(t time.Duration) error
}

// PortFactory opens a device. Tests substitute a mock.
type PortFactory func(path string, mode *serial.Mode) (Port, error)

func DefaultPortFactory(path string, mode *serial.Mode) (Port, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return port, nil
}

// ConnectionError is returned when a device can't be opened.
type ConnectionError struct {
	Err    error
	Device string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Device, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ReadError is returned when reading an open device fails. Removed is set
// when the device is gone, in which case the Channel has already closed.
type ReadError struct {
	Err     error
	Device  string
	Removed bool
}

func (e *ReadError) Error() string {
	if e.Removed {
		return fmt.Sprintf("serial device %s removed: %v", e.Device, e.Err)
	}
	return fmt.Sprintf("failed to read from %s: %v", e.Device, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// isRemoval reports whether err means the device disappeared.
func isRemoval(err error) bool {
	var pe *serial.PortError
	if errors.As(err, &pe) {
		switch pe.Code() {
		case serial.PortClosed, serial.PortNotFound:
			return true
		default:
		}
	}
	return errors.Is(err, syscall.ENODEV) ||
		errors.Is(err, syscall.ENXIO) ||
		errors.Is(err, syscall.EIO) ||
		errors.Is(err, os.ErrNotExist)
}
