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
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Watch reloads the config whenever the file on disk changes, calling onReload
// after each successful load. The parent directory is watched rather than the
// file because editors commonly save by replacing it. Watch returns once the
// watcher is running; it stops when ctx is done.
func (c *Instance) Watch(ctx context.Context, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}

	path := c.Path()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	go func() {
		defer func() {
			if err := watcher.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close config watcher")
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if err := c.Load(); err != nil {
					log.Warn().Err(err).Msg("config changed on disk but failed to reload, keeping previous values")
					continue
				}
				log.Info().Str("path", path).Msg("reloaded config")
				zerolog.SetGlobalLevel(c.LogLevel())
				if onReload != nil {
					onReload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("config watcher error")
			}
		}
	}()

	return nil
}
