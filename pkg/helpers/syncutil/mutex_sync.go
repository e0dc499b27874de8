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

//go:build !deadlock

// Package syncutil wraps the sync mutex types so the whole tree can be switched
// to deadlock-detecting locks with -tags=deadlock.
package syncutil

import (
	"sync"
	"time"
)

// DeadlockEnabled reports whether the deadlock detector is compiled in.
const DeadlockEnabled = false

// LockTimeout is unused without the deadlock tag; kept so callers can log it.
const LockTimeout = 30 * time.Second

//nolint:gocritic // embedding is the point of the wrapper
type Mutex struct {
	sync.Mutex //nolint:forbidigo // this package wraps sync.Mutex
}

//nolint:gocritic // embedding is the point of the wrapper
type RWMutex struct {
	sync.RWMutex //nolint:forbidigo // this package wraps sync.RWMutex
}
