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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunState_Transitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cmds    []Command
		want    State
		changes int
	}{
		{name: "starts running", cmds: nil, want: Running},
		{name: "pause", cmds: []Command{CmdPause}, want: Paused, changes: 1},
		{name: "pause twice is idempotent", cmds: []Command{CmdPause, CmdPause}, want: Paused, changes: 1},
		{name: "pause then resume", cmds: []Command{CmdPause, CmdResume}, want: Running, changes: 2},
		{name: "resume while running", cmds: []Command{CmdResume}, want: Running},
		{name: "exit from running", cmds: []Command{CmdExit}, want: Stopped, changes: 1},
		{name: "exit from paused", cmds: []Command{CmdPause, CmdExit}, want: Stopped, changes: 2},
		{name: "stopped is terminal", cmds: []Command{CmdExit, CmdResume, CmdPause}, want: Stopped, changes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var rs RunState
			changes := 0
			for _, cmd := range tt.cmds {
				if _, changed := rs.apply(cmd); changed {
					changes++
				}
			}
			assert.Equal(t, tt.want, rs.Load())
			assert.Equal(t, tt.changes, changes)
		})
	}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Command{
		"pause":  CmdPause,
		"resume": CmdResume,
		"exit":   CmdExit,
		"quit":   CmdExit,
	} {
		got, err := ParseCommand(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NotEqual(t, "unknown", got.String())
	}

	_, err := ParseCommand("reboot")
	require.ErrorIs(t, err, ErrUnknownCommand)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "unknown", State(42).String())
}
