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

package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	require.False(t, cfg.PressEnterAfter())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var reloads atomic.Int32
	require.NoError(t, cfg.Watch(ctx, func() { reloads.Add(1) }))

	data := "config_schema = 1\n[keyboard]\npress_enter_after = true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(data), 0o600))

	require.Eventually(t, func() bool {
		return cfg.PressEnterAfter()
	}, 5*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))
}

func TestWatch_KeepsValuesOnBadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, cfg.Watch(ctx, nil))

	data := "config_schema = 1\n[serial]\nbaud_rate = -5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(data), 0o600))

	// give the watcher a chance to see the event
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 9600, cfg.BaudRate())
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var reloads atomic.Int32
	require.NoError(t, cfg.Watch(ctx, func() { reloads.Add(1) }))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o600))
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, int32(0), reloads.Load())
}
