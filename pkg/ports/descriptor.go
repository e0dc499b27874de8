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

// Package ports enumerates serial devices, filters them by USB identity and
// description, and reports devices appearing between polls.
package ports

import (
	"fmt"
	"strconv"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortDescriptor describes one serial device from a single enumeration.
// Descriptors are compared by Device only.
type PortDescriptor struct {
	VID         *uint16
	PID         *uint16
	Device      string
	Description string
}

// VIDString returns the vendor id as 4 lowercase hex digits, or "" if unknown.
func (p PortDescriptor) VIDString() string {
	return hexID(p.VID)
}

// PIDString returns the product id as 4 lowercase hex digits, or "" if unknown.
func (p PortDescriptor) PIDString() string {
	return hexID(p.PID)
}

func (p PortDescriptor) String() string {
	if p.Description == "" {
		return p.Device
	}
	return p.Device + " - " + p.Description
}

func hexID(id *uint16) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%04x", *id)
}

// EnumerateFunc lists the serial devices currently present.
type EnumerateFunc func() ([]PortDescriptor, error)

// SystemEnumerate lists devices using the OS enumerator.
func SystemEnumerate() ([]PortDescriptor, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	out := make([]PortDescriptor, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		out = append(out, fromDetails(d))
	}
	return out, nil
}

func fromDetails(d *enumerator.PortDetails) PortDescriptor {
	p := PortDescriptor{
		Device:      d.Name,
		Description: strings.TrimSpace(d.Product),
	}
	if d.IsUSB {
		p.VID = parseHexID(d.VID)
		p.PID = parseHexID(d.PID)
	}
	return p
}

func parseHexID(s string) *uint16 {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return nil
	}
	id := uint16(v)
	return &id
}
