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

package mocks

import (
	"slices"
	"sync"

	"github.com/ZaparooProject/qr2key/pkg/ports"
)

// FakeEnumerator serves a settable list of ports to a ports.Registry.
type FakeEnumerator struct {
	Err   error
	ports []ports.PortDescriptor
	calls int
	mu    sync.Mutex
}

func NewFakeEnumerator(present ...ports.PortDescriptor) *FakeEnumerator {
	return &FakeEnumerator{ports: present}
}

// Set replaces the ports reported by later enumerations.
func (f *FakeEnumerator) Set(present ...ports.PortDescriptor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ports = present
}

func (f *FakeEnumerator) Enumerate() ([]ports.PortDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return slices.Clone(f.ports), nil
}

func (f *FakeEnumerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
