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
	"errors"
	"time"

	"github.com/ZaparooProject/qr2key/pkg/helpers/syncutil"
)

var ErrPortClosed = errors.New("port closed")

// MockSerialPort hands out queued chunks, one per Read call, then reads
// return 0 bytes as a port with an empty buffer does.
type MockSerialPort struct {
	ReadError   error
	CloseError  error
	TimeoutErr  error
	ReadFunc    func(p []byte) (n int, err error)
	chunks      [][]byte
	ReadTimeout time.Duration
	closeCount  int
	reads       int
	mu          syncutil.Mutex
	Closed      bool
}

func NewMockSerialPort(chunks ...[]byte) *MockSerialPort {
	return &MockSerialPort{chunks: chunks}
}

// Push queues more data for later reads.
func (m *MockSerialPort) Push(chunks ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
}

// FailNextRead makes the next Read return err.
func (m *MockSerialPort) FailNextRead(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadError = err
}

func (m *MockSerialPort) Read(p []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads++
	if m.Closed {
		return 0, ErrPortClosed
	}
	if m.ReadFunc != nil {
		return m.ReadFunc(p)
	}
	if m.ReadError != nil {
		err := m.ReadError
		m.ReadError = nil
		return 0, err
	}
	if len(m.chunks) == 0 {
		return 0, nil
	}

	n = copy(p, m.chunks[0])
	if n < len(m.chunks[0]) {
		m.chunks[0] = m.chunks[0][n:]
	} else {
		m.chunks = m.chunks[1:]
	}
	return n, nil
}

func (m *MockSerialPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	m.closeCount++
	return m.CloseError
}

func (m *MockSerialPort) SetReadTimeout(t time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadTimeout = t
	return m.TimeoutErr
}

func (m *MockSerialPort) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}

func (m *MockSerialPort) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCount
}

// Pending returns how many queued chunks haven't been read yet.
func (m *MockSerialPort) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks)
}

func (m *MockSerialPort) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}
