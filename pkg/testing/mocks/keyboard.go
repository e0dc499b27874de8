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

import "sync"

// MockKeyboard implements uinput.Keyboard, recording key events in order.
type MockKeyboard struct {
	KeyDownErr   error
	KeyDownCalls []int
	KeyUpCalls   []int
	Events       []KeyEvent
	mu           sync.Mutex
}

type KeyEvent struct {
	Code int
	Down bool
}

func NewMockKeyboard() *MockKeyboard {
	return &MockKeyboard{}
}

func (m *MockKeyboard) KeyPress(key int) error {
	if err := m.KeyDown(key); err != nil {
		return err
	}
	return m.KeyUp(key)
}

func (m *MockKeyboard) KeyDown(key int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.KeyDownErr != nil {
		return m.KeyDownErr
	}
	m.KeyDownCalls = append(m.KeyDownCalls, key)
	m.Events = append(m.Events, KeyEvent{Code: key, Down: true})
	return nil
}

func (m *MockKeyboard) KeyUp(key int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.KeyUpCalls = append(m.KeyUpCalls, key)
	m.Events = append(m.Events, KeyEvent{Code: key, Down: false})
	return nil
}

func (*MockKeyboard) FetchSyspath() (string, error) {
	return "/sys/devices/virtual/input/mock", nil
}

func (*MockKeyboard) Close() error {
	return nil
}

// Downs returns the pressed key codes in order.
func (m *MockKeyboard) Downs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.KeyDownCalls...)
}
