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

package systray

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"fyne.io/systray"
	"github.com/ZaparooProject/qr2key/pkg/config"
	"github.com/ZaparooProject/qr2key/pkg/helpers"
	"github.com/ZaparooProject/qr2key/pkg/helpers/syncutil"
	"github.com/ZaparooProject/qr2key/pkg/service"
	"github.com/nixinwang/dialog"
	"github.com/rs/zerolog/log"
)

const refreshInterval = 2 * time.Second

// Controller is what the tray menu drives.
type Controller interface {
	Status() service.Status
	State() service.State
	Toggle() error
	Exit() error
}

// StatusLine is the disabled first menu entry describing the connection.
func StatusLine(s service.Status) string {
	if !s.Connected {
		return "Port: not connected"
	}
	return "Port: " + s.Device
}

// ToggleLabel is the label of the pause/resume entry for a state.
func ToggleLabel(st service.State) string {
	if st == service.Paused {
		return "Resume"
	}
	return "Pause"
}

// Tooltip summarises the state for the tray icon.
func Tooltip(s service.Status) string {
	return fmt.Sprintf("%s (%s)", config.AppDisplayName, s.State)
}

func openCommand() string {
	switch runtime.GOOS {
	case "windows":
		return "explorer"
	case "darwin":
		return "open"
	default:
		return "xdg-open"
	}
}

func aboutMessage() string {
	return fmt.Sprintf(
		"%s\nVersion %s\n\nReads QR codes from a serial scanner and types them as keyboard input.\n\n"+
			"© %d Zaparoo Contributors\nLicense: GPLv3",
		config.AppDisplayName, config.AppVersion, time.Now().Year(),
	)
}

type Tray struct {
	ctrl     Controller
	mStatus  *systray.MenuItem
	mToggle  *systray.MenuItem
	settings helpers.Settings
	cfgPath  string
	icon     []byte
	mu       syncutil.Mutex
}

func New(ctrl Controller, settings helpers.Settings, cfgPath string, icon []byte) *Tray {
	return &Tray{
		ctrl:     ctrl,
		settings: settings,
		cfgPath:  cfgPath,
		icon:     icon,
	}
}

// Update refreshes the labels that track state. Safe to call before the
// menu is ready.
func (t *Tray) Update(st service.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mToggle == nil {
		return
	}
	status := t.ctrl.Status()
	t.mToggle.SetTitle(ToggleLabel(st))
	t.mStatus.SetTitle(StatusLine(status))
	systray.SetTooltip(Tooltip(status))
}

func openPath(target, what string) {
	err := exec.Command(openCommand(), target).Start() //nolint:gosec // paths come from app settings
	if err != nil {
		log.Error().Err(err).Msgf("failed to open %s", what)
	}
}

func (t *Tray) onReady(ctx context.Context) func() {
	return func() {
		systray.SetIcon(t.icon)
		if runtime.GOOS != "darwin" {
			systray.SetTitle(config.AppDisplayName)
		}

		status := t.ctrl.Status()
		systray.SetTooltip(Tooltip(status))

		mStatus := systray.AddMenuItem(StatusLine(status), "Serial port in use")
		mStatus.Disable()
		mToggle := systray.AddMenuItem(ToggleLabel(t.ctrl.State()), "Pause or resume typing scans")
		t.mu.Lock()
		t.mStatus, t.mToggle = mStatus, mToggle
		t.mu.Unlock()
		systray.AddSeparator()

		mOpenLog := systray.AddMenuItem("Open Log", "View the log file")
		mEditConfig := systray.AddMenuItem("Edit Config", "Edit the config file")
		systray.AddSeparator()

		mAbout := systray.AddMenuItem("About "+config.AppDisplayName, "")
		systray.AddSeparator()
		mQuit := systray.AddMenuItem("Exit", "Stop reading and exit")

		go func() {
			ticker := time.NewTicker(refreshInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					t.Update(t.ctrl.State())
				case <-mToggle.ClickedCh:
					if err := t.ctrl.Toggle(); err != nil {
						log.Error().Err(err).Msg("failed to toggle pause")
					}
				case <-mOpenLog.ClickedCh:
					openPath(helpers.LogPath(t.settings), "log file")
				case <-mEditConfig.ClickedCh:
					openPath(t.cfgPath, "config file")
				case <-mAbout.ClickedCh:
					dialog.Message("%s", aboutMessage()).Title("About " + config.AppDisplayName).Info()
				case <-mQuit.ClickedCh:
					if err := t.ctrl.Exit(); err != nil {
						log.Debug().Err(err).Msg("controller already stopped")
					}
					systray.Quit()
					return
				}
			}
		}()
	}
}

// Run blocks on the tray event loop until Quit. onExit runs once the
// loop ends.
func (t *Tray) Run(ctx context.Context, onExit func()) {
	systray.Run(t.onReady(ctx), onExit)
}

func Quit() {
	systray.Quit()
}
