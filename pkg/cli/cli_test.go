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
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/qr2key/pkg/api"
	"github.com/ZaparooProject/qr2key/pkg/config"
	"github.com/ZaparooProject/qr2key/pkg/helpers"
	"github.com/ZaparooProject/qr2key/pkg/ports"
	"github.com/ZaparooProject/qr2key/pkg/service"
	"github.com/ZaparooProject/qr2key/pkg/testing/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPIClient struct {
	mock.Mock
}

func (m *mockAPIClient) Status(ctx context.Context) (service.Status, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.Status), args.Error(1) //nolint:forcetypeassert // test mock
}

func (m *mockAPIClient) Send(ctx context.Context, cmd service.Command) (api.CommandResponse, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(api.CommandResponse), args.Error(1) //nolint:forcetypeassert // test mock
}

func parse(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("qr2key", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := SetupFlags(fs)
	require.NoError(t, fs.Parse(args))
	return f
}

func u16(v uint16) *uint16 { return &v }

func TestPre_Version(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	assert.True(t, parse(t, "-version").Pre(&out))
	assert.Contains(t, out.String(), "QR2Key v")

	out.Reset()
	assert.False(t, parse(t).Pre(&out))
	assert.Empty(t, out.String())
}

func TestClientCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		want     service.Command
		ok       bool
		isClient bool
	}{
		{name: "none", args: nil},
		{name: "pause", args: []string{"-pause"}, want: service.CmdPause, ok: true, isClient: true},
		{name: "resume", args: []string{"-resume"}, want: service.CmdResume, ok: true, isClient: true},
		{name: "exit", args: []string{"-exit"}, want: service.CmdExit, ok: true, isClient: true},
		{name: "status", args: []string{"-status"}, isClient: true},
		{name: "dry run", args: []string{"-dry-run"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := parse(t, tt.args...)
			cmd, ok := f.ClientCommand()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, cmd)
			assert.Equal(t, tt.isClient, f.IsClient())
		})
	}
}

func TestRunClient_Send(t *testing.T) {
	t.Parallel()

	c := &mockAPIClient{}
	c.On("Send", mock.Anything, service.CmdPause).Return(api.CommandResponse{
		Command: "pause",
		Status:  service.Status{InstanceID: "abc", State: "running"},
	}, nil)

	var out bytes.Buffer
	require.NoError(t, parse(t, "-pause").RunClient(context.Background(), &out, c))
	assert.Contains(t, out.String(), `"instanceId": "abc"`)
	c.AssertExpectations(t)
	c.AssertNotCalled(t, "Status", mock.Anything)
}

func TestRunClient_Status(t *testing.T) {
	t.Parallel()

	c := &mockAPIClient{}
	c.On("Status", mock.Anything).Return(service.Status{State: "paused", Scans: 2}, nil)

	var out bytes.Buffer
	require.NoError(t, parse(t, "-status").RunClient(context.Background(), &out, c))
	assert.Contains(t, out.String(), `"state": "paused"`)
	assert.Contains(t, out.String(), `"scans": 2`)
	c.AssertExpectations(t)
}

func TestRunClient_Error(t *testing.T) {
	t.Parallel()

	c := &mockAPIClient{}
	c.On("Send", mock.Anything, service.CmdExit).Return(api.CommandResponse{}, errors.New("no running instance"))

	var out bytes.Buffer
	err := parse(t, "-exit").RunClient(context.Background(), &out, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error sending exit")
	assert.Empty(t, out.String())
}

func TestListPorts(t *testing.T) {
	t.Parallel()

	enum := mocks.NewFakeEnumerator(
		ports.PortDescriptor{Device: "/dev/ttyUSB0", Description: "FT232R USB UART", VID: u16(0x0403), PID: u16(0x6001)},
		ports.PortDescriptor{Device: "/dev/ttyS0", Description: "ttyS0"},
	)
	reg := ports.NewRegistry(ports.WithEnumerator(enum.Enumerate))

	var out bytes.Buffer
	ListPorts(&out, reg, ports.Filter{VendorIDs: []string{"0403"}})
	assert.Equal(t, "* /dev/ttyUSB0 - FT232R USB UART\n  /dev/ttyS0 - ttyS0\n", out.String())
}

func TestListPorts_None(t *testing.T) {
	t.Parallel()

	reg := ports.NewRegistry(ports.WithEnumerator(mocks.NewFakeEnumerator().Enumerate))

	var out bytes.Buffer
	ListPorts(&out, reg, ports.Filter{})
	assert.Equal(t, "No serial ports found\n", out.String())
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	parse(t).ApplyOverrides(cfg)
	assert.True(t, cfg.AutoDetect())
	assert.Empty(t, cfg.SerialPort())

	parse(t, "-port", "/dev/ttyACM0").ApplyOverrides(cfg)
	assert.False(t, cfg.AutoDetect())
	assert.Equal(t, "/dev/ttyACM0", cfg.SerialPort())
}

//nolint:paralleltest // changes the global log level
func TestApplyOverrides_Debug(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	parse(t, "-debug").ApplyOverrides(cfg)
	assert.True(t, cfg.DebugLogging())
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel())
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

//nolint:paralleltest // replaces the global logger
func TestSetup(t *testing.T) {
	root := t.TempDir()
	settings := helpers.Settings{
		ConfigDir: filepath.Join(root, "config"),
		DataDir:   filepath.Join(root, "data"),
		LogDir:    filepath.Join(root, "data", "logs"),
		TempDir:   filepath.Join(root, "tmp"),
	}
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := Setup(settings, config.BaseDefaults, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(settings.ConfigDir, config.CfgFile), cfg.Path())
	assert.FileExists(t, cfg.Path())
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
