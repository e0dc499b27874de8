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
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/qr2key/pkg/config"
	"github.com/adrg/xdg"
)

// Settings holds the directories the app reads and writes.
type Settings struct {
	ConfigDir string
	DataDir   string
	LogDir    string
	TempDir   string
}

// DefaultSettings returns XDG based directories for the current user.
func DefaultSettings() Settings {
	dataDir := filepath.Join(xdg.DataHome, config.AppName)
	return Settings{
		ConfigDir: filepath.Join(xdg.ConfigHome, config.AppName),
		DataDir:   dataDir,
		LogDir:    filepath.Join(dataDir, config.LogsDir),
		TempDir:   filepath.Join(os.TempDir(), config.AppName),
	}
}

// EnsureDirectories creates every directory in s that doesn't exist yet.
func EnsureDirectories(s Settings) error {
	for _, dir := range []string{s.ConfigDir, s.DataDir, s.LogDir, s.TempDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPath is the full path of the active log file.
func LogPath(s Settings) string {
	return filepath.Join(s.LogDir, config.LogFile)
}
