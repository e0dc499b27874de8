//go:build linux

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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ZaparooProject/qr2key/internal/telemetry"
	"github.com/ZaparooProject/qr2key/pkg/api"
	"github.com/ZaparooProject/qr2key/pkg/api/client"
	"github.com/ZaparooProject/qr2key/pkg/assets"
	"github.com/ZaparooProject/qr2key/pkg/cli"
	"github.com/ZaparooProject/qr2key/pkg/config"
	"github.com/ZaparooProject/qr2key/pkg/helpers"
	"github.com/ZaparooProject/qr2key/pkg/keyboard"
	"github.com/ZaparooProject/qr2key/pkg/ports"
	"github.com/ZaparooProject/qr2key/pkg/service"
	"github.com/ZaparooProject/qr2key/pkg/ui/systray"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const clientTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runClient(flags *cli.Flags, cfg *config.Instance) error {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()
	return flags.RunClient(ctx, os.Stdout, client.FromConfig(cfg))
}

func newSink(dryRun bool, cfg *config.Instance) (keyboard.Sink, func(), error) {
	if dryRun {
		log.Info().Msg("dry run, scans will be logged instead of typed")
		return keyboard.LogSink{}, func() {}, nil
	}
	sink, err := keyboard.NewUinputSink(nil, cfg.PasteUnicode())
	if err != nil {
		return nil, nil, err
	}
	return sink, func() {
		if err := sink.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing keyboard")
		}
	}, nil
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	flag.Parse()

	if flags.Pre(os.Stdout) {
		return nil
	}

	settings := helpers.DefaultSettings()

	var logWriters []io.Writer
	if *flags.Daemon {
		logWriters = []io.Writer{os.Stderr}
	}

	cfg, err := cli.Setup(settings, config.BaseDefaults, logWriters)
	if err != nil {
		return err
	}

	if flags.IsClient() {
		return runClient(flags, cfg)
	}

	flags.ApplyOverrides(cfg)
	registry := ports.NewRegistry(ports.WithIgnore(cfg.IgnoreDevices()))
	if err := registry.Probe(); err != nil {
		return err
	}

	if *flags.List {
		cli.ListPorts(os.Stdout, registry, service.PortFilter(cfg))
		return nil
	}

	if err := helpers.WritePidFile(settings); err != nil {
		if errors.Is(err, helpers.ErrAlreadyRunning) {
			return fmt.Errorf("%w, use -exit to stop it", err)
		}
		return err
	}
	defer func() {
		if err := helpers.RemovePidFile(settings); err != nil {
			log.Warn().Err(err).Msg("error removing pid file")
		}
	}()

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	sink, closeSink, err := newSink(*flags.DryRun, cfg)
	if err != nil {
		return fmt.Errorf("error creating keyboard sink: %w", err)
	}
	defer closeSink()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = cfg.Watch(ctx, func() {
		zerolog.SetGlobalLevel(cfg.LogLevel())
	})
	if err != nil {
		log.Warn().Err(err).Msg("config changes will not be picked up")
	}

	var tray atomic.Pointer[systray.Tray]
	ctrl, stopSvc, err := service.Start(ctx, service.ControllerArgs{
		Config:   cfg,
		Registry: registry,
		Sink:     sink,
		OnStateChange: func(st service.State) {
			if t := tray.Load(); t != nil {
				t.Update(st)
			}
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("error starting service")
		return fmt.Errorf("error starting service: %w", err)
	}
	defer func() {
		if err := stopSvc(); err != nil {
			log.Error().Err(err).Msg("error stopping service")
		}
	}()

	if err := telemetry.Init(cfg.ErrorReportingDSN(), ctrl.ID(), config.AppVersion); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}
	defer telemetry.Close()

	apiDone := make(chan struct{})
	go func() {
		defer close(apiDone)
		if err := api.Start(ctx, cfg, ctrl); err != nil {
			log.Error().Err(err).Msg("control api stopped")
		}
	}()
	defer func() {
		cancel()
		<-apiDone
	}()

	if *flags.Daemon {
		log.Info().Msg("started in daemon mode")
		select {
		case <-ctx.Done():
		case <-ctrl.Done():
		}
		return nil
	}

	t := systray.New(ctrl, settings, cfg.Path(), assets.TrayIcon)
	tray.Store(t)

	go func() {
		select {
		case <-ctx.Done():
		case <-ctrl.Done():
		}
		systray.Quit()
	}()

	t.Run(ctx, func() {
		log.Info().Msg("tray closed")
	})
	return nil
}
