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

package telemetry

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "no username", input: "/usr/local/bin/qr2key", expected: "/usr/local/bin/qr2key"},
		{
			name:     "linux home",
			input:    "/home/kenji/.config/qr2key/config.toml",
			expected: "/home/<user>/.config/qr2key/config.toml",
		},
		{
			name:     "mixed case home",
			input:    "/Home/Kenji/src/qr2key/main.go",
			expected: "/home/<user>/src/qr2key/main.go",
		},
		{
			name:     "macos users",
			input:    "/Users/kenji/Library/qr2key.log",
			expected: "/Users/<user>/Library/qr2key.log",
		},
		{
			name:     "windows",
			input:    "C:\\Users\\kenji\\AppData\\Local\\qr2key",
			expected: "C:\\Users\\<user>\\AppData\\Local\\qr2key",
		},
		{
			name:     "error message",
			input:    "failed to open /home/a/dev/ttyUSB0: no such file",
			expected: "failed to open /home/<user>/dev/ttyUSB0: no such file",
		},
		{
			name:     "multiple paths",
			input:    "copy /home/alice/x to /home/bob/y",
			expected: "copy /home/<user>/x to /home/<user>/y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizePath(tt.input))
		})
	}
}

func TestSanitizeEvent(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{
		ServerName: "my-laptop",
		Message:    "cannot read /home/kenji/.config/qr2key/config.toml",
		Extra:      map[string]any{"path": "/home/kenji/x", "count": 2},
		Exception: []sentry.Exception{
			{Stacktrace: &sentry.Stacktrace{Frames: []sentry.Frame{
				{AbsPath: "/home/kenji/src/main.go", Filename: "main.go"},
			}}},
			{},
		},
	}

	out := sanitizeEvent(event)
	require.NotNil(t, out)
	assert.Empty(t, out.ServerName)
	assert.Equal(t, "cannot read /home/<user>/.config/qr2key/config.toml", out.Message)
	assert.Equal(t, "/home/<user>/x", out.Extra["path"])
	assert.Equal(t, 2, out.Extra["count"])
	assert.Equal(t, "/home/<user>/src/main.go", out.Exception[0].Stacktrace.Frames[0].AbsPath)
}

func TestInit_EmptyDSN(t *testing.T) {
	t.Parallel()

	require.NoError(t, Init("", "id", "1.0.0"))
	assert.False(t, Enabled())
	assert.NotPanics(t, Close)
}
