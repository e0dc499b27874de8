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

package helpers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZaparooProject/qr2key/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

var ErrAlreadyRunning = errors.New("another instance is already running")

func pidPath(s Settings) string {
	return filepath.Join(s.TempDir, config.PidFile)
}

// WritePidFile records the current process id, failing if another live
// instance already owns the pid file.
func WritePidFile(s Settings) error {
	if Running(s) {
		return ErrAlreadyRunning
	}
	if err := os.MkdirAll(s.TempDir, 0o750); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	err := os.WriteFile(pidPath(s), []byte(strconv.Itoa(os.Getpid())), 0o600)
	if err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

func RemovePidFile(s Settings) error {
	err := os.Remove(pidPath(s))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Pid returns the recorded process id, or 0 if there is no pid file.
func Pid(s Settings) (int, error) {
	//nolint:gosec // Safe: reads the app's own PID file
	data, err := os.ReadFile(pidPath(s))
	if os.IsNotExist(err) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("error reading pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("error parsing pid: %w", err)
	}
	return pid, nil
}

// Running reports whether the process in the pid file is alive.
func Running(s Settings) bool {
	pid, err := Pid(s)
	if err != nil || pid == 0 {
		return false
	}

	exists, err := process.PidExists(int32(pid)) //nolint:gosec // pids fit in int32
	if err != nil {
		log.Debug().Err(err).Int("pid", pid).Msg("error checking pid")
		return false
	}
	return exists
}
