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

package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/ZaparooProject/qr2key/pkg/api"
	"github.com/ZaparooProject/qr2key/pkg/config"
	"github.com/ZaparooProject/qr2key/pkg/helpers"
	"github.com/ZaparooProject/qr2key/pkg/ports"
	"github.com/ZaparooProject/qr2key/pkg/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	Version *bool
	List    *bool
	DryRun  *bool
	Daemon  *bool
	Pause   *bool
	Resume  *bool
	Exit    *bool
	Status  *bool
	Debug   *bool
	Port    *string
}

// SetupFlags defines the common flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Version: fs.Bool("version", false, "print version and exit"),
		List:    fs.Bool("list", false, "list serial ports and exit"),
		DryRun: fs.Bool(
			"dry-run",
			false,
			"log scanned codes instead of typing them",
		),
		Daemon: fs.Bool(
			"daemon",
			false,
			"run in foreground with no tray, logging to stderr",
		),
		Pause:  fs.Bool("pause", false, "pause a running instance"),
		Resume: fs.Bool("resume", false, "resume a running instance"),
		Exit:   fs.Bool("exit", false, "stop a running instance"),
		Status: fs.Bool("status", false, "print the status of a running instance"),
		Debug:  fs.Bool("debug", false, "enable debug logging for this run"),
		Port: fs.String(
			"port",
			"",
			"serial device to open, disables auto-detect",
		),
	}
}

// Pre handles flags that need no environment. Reports whether the
// program should exit.
func (f *Flags) Pre(out io.Writer) bool {
	if *f.Version {
		_, _ = fmt.Fprintf(out, "%s v%s\n", config.AppDisplayName, config.AppVersion)
		return true
	}
	return false
}

// ClientCommand returns the command a client flag asks for, if any.
func (f *Flags) ClientCommand() (service.Command, bool) {
	switch {
	case *f.Pause:
		return service.CmdPause, true
	case *f.Resume:
		return service.CmdResume, true
	case *f.Exit:
		return service.CmdExit, true
	default:
		return 0, false
	}
}

// IsClient reports whether the invocation only talks to a running instance.
func (f *Flags) IsClient() bool {
	_, ok := f.ClientCommand()
	return ok || *f.Status
}

// APIClient is the part of the api client the CLI uses.
type APIClient interface {
	Status(ctx context.Context) (service.Status, error)
	Send(ctx context.Context, cmd service.Command) (api.CommandResponse, error)
}

// RunClient sends the requested command to a running instance and prints
// the resulting status as JSON.
func (f *Flags) RunClient(ctx context.Context, out io.Writer, c APIClient) error {
	var status service.Status
	if cmd, ok := f.ClientCommand(); ok {
		resp, err := c.Send(ctx, cmd)
		if err != nil {
			return fmt.Errorf("error sending %s: %w", cmd, err)
		}
		status = resp.Status
	} else {
		var err error
		status, err = c.Status(ctx)
		if err != nil {
			return fmt.Errorf("error getting status: %w", err)
		}
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding status: %w", err)
	}
	_, _ = fmt.Fprintln(out, string(data))
	return nil
}

// ListPorts prints every serial port. Ports passing the filter are marked
// with an asterisk.
func ListPorts(out io.Writer, reg *ports.Registry, f ports.Filter) {
	list := reg.List()
	if len(list) == 0 {
		_, _ = fmt.Fprintln(out, "No serial ports found")
		return
	}
	for _, p := range list {
		mark := " "
		if f.Matches(p) {
			mark = "*"
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", mark, p)
	}
}

// ApplyOverrides copies flag overrides into the config without saving.
func (f *Flags) ApplyOverrides(cfg *config.Instance) {
	if *f.Debug {
		cfg.SetDebugLogging(true)
	}
	if *f.Port != "" {
		cfg.SetSerialPort(*f.Port)
		cfg.SetAutoDetect(false)
	}
}

// Setup creates the app directories, starts logging and loads the config.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	settings helpers.Settings,
	defaultConfig config.Values,
	writers []io.Writer,
) (*config.Instance, error) {
	err := helpers.EnsureDirectories(settings)
	if err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}

	err = helpers.InitLogging(settings, zerolog.InfoLevel, writers)
	if err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(settings.ConfigDir, defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	zerolog.SetGlobalLevel(cfg.LogLevel())
	log.Info().Str("config", cfg.Path()).Msg("loaded config")

	return cfg, nil
}
