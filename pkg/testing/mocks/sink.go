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
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockSink is a mock implementation of keyboard.Sink using testify/mock
type MockSink struct {
	mock.Mock
}

func (m *MockSink) TypeString(text string) error {
	args := m.Called(text)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

func (m *MockSink) PressKey(name string) error {
	args := m.Called(name)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// RecordingSink records everything sent to it, safe for use across goroutines.
type RecordingSink struct {
	typed   []string
	pressed []string
	mu      sync.Mutex
}

func (r *RecordingSink) TypeString(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typed = append(r.typed, text)
	return nil
}

func (r *RecordingSink) PressKey(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pressed = append(r.pressed, name)
	return nil
}

func (r *RecordingSink) Typed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.typed...)
}

func (r *RecordingSink) Pressed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.pressed...)
}
