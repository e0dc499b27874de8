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

package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.bug.st/serial/enumerator"
)

func id(v uint16) *uint16 {
	return &v
}

func TestFilter_Matches(t *testing.T) {
	t.Parallel()

	ftdi := PortDescriptor{Device: "/dev/ttyUSB0", Description: "FT232R USB UART", VID: id(0x0403), PID: id(0x6001)}
	ch340 := PortDescriptor{Device: "/dev/ttyUSB1", Description: "USB2.0-Serial", VID: id(0x1a86), PID: id(0x7523)}
	builtin := PortDescriptor{Device: "/dev/ttyS0"}
	noDesc := PortDescriptor{Device: "/dev/ttyACM0", VID: id(0x2341), PID: id(0x0043)}

	tests := []struct {
		name   string
		filter Filter
		port   PortDescriptor
		want   bool
	}{
		{name: "empty filter matches usb port", filter: Filter{}, port: ftdi, want: true},
		{name: "empty filter matches port without ids", filter: Filter{}, port: builtin, want: true},
		{name: "vendor match", filter: Filter{VendorIDs: []string{"0403"}}, port: ftdi, want: true},
		{name: "vendor match is case-insensitive", filter: Filter{VendorIDs: []string{"1A86"}}, port: ch340, want: true},
		{name: "vendor mismatch", filter: Filter{VendorIDs: []string{"0403"}}, port: ch340, want: false},
		{name: "disjunction within category", filter: Filter{VendorIDs: []string{"0403", "1a86"}}, port: ch340, want: true},
		{name: "missing vid fails active vendor filter", filter: Filter{VendorIDs: []string{"0403"}}, port: builtin, want: false},
		{
			name:   "conjunction across categories",
			filter: Filter{VendorIDs: []string{"0403"}, ProductIDs: []string{"6001"}},
			port:   ftdi,
			want:   true,
		},
		{
			name:   "conjunction fails on product",
			filter: Filter{VendorIDs: []string{"0403"}, ProductIDs: []string{"6015"}},
			port:   ftdi,
			want:   false,
		},
		{name: "description regex", filter: Filter{Descriptions: []string{"ft2.*uart"}}, port: ftdi, want: true},
		{name: "description substring", filter: Filter{Descriptions: []string{"Serial"}}, port: ch340, want: true},
		{name: "description mismatch", filter: Filter{Descriptions: []string{"^CP210"}}, port: ftdi, want: false},
		{name: "missing description fails description filter", filter: Filter{Descriptions: []string{".*"}}, port: noDesc, want: false},
		{name: "invalid pattern never matches", filter: Filter{Descriptions: []string{"(bad"}}, port: ftdi, want: false},
		{
			name:   "invalid pattern skipped for valid one",
			filter: Filter{Descriptions: []string{"(bad", "UART"}},
			port:   ftdi,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.filter.Matches(tt.port))
		})
	}
}

func TestPortDescriptor_Strings(t *testing.T) {
	t.Parallel()

	p := PortDescriptor{Device: "COM3", Description: "CP2102", VID: id(0x10c4), PID: id(0xea60)}
	assert.Equal(t, "10c4", p.VIDString())
	assert.Equal(t, "ea60", p.PIDString())
	assert.Equal(t, "COM3 - CP2102", p.String())

	bare := PortDescriptor{Device: "/dev/ttyS0"}
	assert.Empty(t, bare.VIDString())
	assert.Empty(t, bare.PIDString())
	assert.Equal(t, "/dev/ttyS0", bare.String())
}

func TestFromDetails(t *testing.T) {
	t.Parallel()

	usb := fromDetails(&enumerator.PortDetails{
		Name:    "/dev/ttyUSB0",
		IsUSB:   true,
		VID:     "0403",
		PID:     "6001",
		Product: " FT232R USB UART ",
	})
	assert.Equal(t, "/dev/ttyUSB0", usb.Device)
	assert.Equal(t, "FT232R USB UART", usb.Description)
	assert.Equal(t, "0403", usb.VIDString())
	assert.Equal(t, "6001", usb.PIDString())

	upper := fromDetails(&enumerator.PortDetails{Name: "COM4", IsUSB: true, VID: "10C4", PID: "EA60"})
	assert.Equal(t, "10c4", upper.VIDString())

	native := fromDetails(&enumerator.PortDetails{Name: "/dev/ttyS0"})
	assert.Nil(t, native.VID)
	assert.Nil(t, native.PID)

	garbage := fromDetails(&enumerator.PortDetails{Name: "x", IsUSB: true, VID: "zzzz", PID: ""})
	assert.Nil(t, garbage.VID)
	assert.Nil(t, garbage.PID)
}
