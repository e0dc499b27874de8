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

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/qr2key/pkg/config"
	"github.com/ZaparooProject/qr2key/pkg/keyboard"
	"github.com/ZaparooProject/qr2key/pkg/ports"
	"github.com/ZaparooProject/qr2key/pkg/serialport"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// ReadInterval is how often the reader loop drains the serial channel.
	ReadInterval = 100 * time.Millisecond
	commandQueue = 8
)

// Status is a point in time view of the controller.
type Status struct {
	InstanceID string `json:"instanceId"`
	State      string `json:"state"`
	Device     string `json:"device,omitempty"`
	Scans      uint64 `json:"scans"`
	Connected  bool   `json:"connected"`
}

type ControllerArgs struct {
	Config   *config.Instance
	Registry *ports.Registry
	Channel  *serialport.Channel
	Sink     keyboard.Sink
	Clock    clockwork.Clock
	// OnStateChange is called from the control loop after each transition.
	OnStateChange func(State)
}

// Controller runs the reader, monitor and control loops and owns the
// serial channel for their lifetime.
type Controller struct {
	clock         clockwork.Clock
	cfg           *config.Instance
	registry      *ports.Registry
	channel       *serialport.Channel
	dispatcher    *keyboard.Dispatcher
	onStateChange func(State)
	commands      chan Command
	done          chan struct{}
	noDeviceLog   *rate.Sometimes
	id            string
	state         RunState
	scans         atomic.Uint64
	closeOnce     sync.Once
	started       atomic.Bool
}

func NewController(args ControllerArgs) *Controller {
	clock := args.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	registry := args.Registry
	if registry == nil {
		registry = ports.NewRegistry(
			ports.WithClock(clock),
			ports.WithIgnore(args.Config.IgnoreDevices()),
		)
	}
	channel := args.Channel
	if channel == nil {
		channel = serialport.NewChannel(serialport.WithClock(clock))
	}
	return &Controller{
		id:            uuid.New().String(),
		clock:         clock,
		cfg:           args.Config,
		registry:      registry,
		channel:       channel,
		dispatcher:    keyboard.NewDispatcher(args.Sink, clock),
		onStateChange: args.OnStateChange,
		commands:      make(chan Command, commandQueue),
		done:          make(chan struct{}),
		noDeviceLog:   &rate.Sometimes{First: 1, Interval: 30 * time.Second},
	}
}

func (c *Controller) ID() string {
	return c.id
}

// State returns the current run state.
func (c *Controller) State() State {
	return c.state.Load()
}

// Done is closed once Run has returned and the channel is closed.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) Status() Status {
	device := c.channel.Device()
	return Status{
		InstanceID: c.id,
		State:      c.state.Load().String(),
		Device:     device,
		Connected:  device != "",
		Scans:      c.scans.Load(),
	}
}

// Send queues a command for the control loop. Commands sent before Run
// starts are applied once it does.
func (c *Controller) Send(cmd Command) error {
	if c.state.Load() == Stopped {
		return ErrStopped
	}
	select {
	case c.commands <- cmd:
		return nil
	case <-c.done:
		return ErrStopped
	}
}

func (c *Controller) Pause() error  { return c.Send(CmdPause) }
func (c *Controller) Resume() error { return c.Send(CmdResume) }
func (c *Controller) Exit() error   { return c.Send(CmdExit) }

// Toggle pauses a running controller or resumes a paused one.
func (c *Controller) Toggle() error {
	if c.state.Load() == Paused {
		return c.Resume()
	}
	return c.Pause()
}

// Run connects to the initial device and blocks until ctx is cancelled or
// an exit command is applied. The serial channel is closed exactly once
// before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info().Str("instance", c.id).Msg("starting controller")
	c.connectInitial()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.controlLoop(gctx, cancel)
	})
	g.Go(func() error {
		return c.readerLoop(gctx)
	})
	if c.cfg.MonitorPorts() {
		g.Go(func() error {
			return c.monitorLoop(gctx)
		})
	} else {
		log.Info().Msg("port monitoring disabled")
	}

	err := g.Wait()
	c.state.stop()

	if closeErr := c.closeChannel(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("error closing serial channel")
	}
	log.Info().Msg("controller stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("controller loop failed: %w", err)
	}
	return nil
}

func (c *Controller) closeChannel() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.channel.Close()
	})
	return err
}

func (c *Controller) controlLoop(ctx context.Context, cancel context.CancelFunc) error {
	for {
		select {
		case <-ctx.Done():
			c.state.stop()
			return nil
		case cmd := <-c.commands:
			next, changed := c.state.apply(cmd)
			if !changed {
				log.Debug().Stringer("command", cmd).Stringer("state", next).Msg("command did not change state")
				continue
			}
			log.Info().Stringer("command", cmd).Stringer("state", next).Msg("run state changed")
			if c.onStateChange != nil {
				c.onStateChange(next)
			}
			if next == Stopped {
				cancel()
				return nil
			}
		}
	}
}

// PortFilter builds a port filter from the current serial config.
func PortFilter(cfg *config.Instance) ports.Filter {
	f := cfg.PortFilter()
	return ports.Filter{
		VendorIDs:    f.VendorIDs,
		ProductIDs:   f.ProductIDs,
		Descriptions: f.Descriptions,
	}
}

func (c *Controller) filter() ports.Filter {
	return PortFilter(c.cfg)
}

func (c *Controller) open(device string) error {
	err := c.channel.Open(device, c.cfg.BaudRate(), c.cfg.SerialTimeout())
	if err != nil {
		log.Error().Err(err).Str("device", device).Msg("failed to open serial device")
		return err
	}
	return nil
}

// connectInitial opens the configured or auto-detected device. Failure is
// logged and left for the monitor loop.
func (c *Controller) connectInitial() {
	port := c.cfg.SerialPort()

	if c.cfg.AutoDetect() {
		if device, ok := c.registry.AutoDetect(c.filter()); ok {
			if c.open(device) == nil {
				return
			}
		}
		if port == "" {
			log.Warn().Msg("no serial device found, waiting for one to be connected")
			return
		}
		log.Info().Str("device", port).Msg("auto-detect found nothing usable, trying configured port")
	}

	if port == "" {
		log.Warn().Msg("no serial port configured and auto-detect is disabled")
		return
	}
	_ = c.open(port)
}
