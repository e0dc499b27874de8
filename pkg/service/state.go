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
	"errors"
	"sync/atomic"
)

// State is the run state shared by the reader and monitor loops.
type State int32

const (
	Running State = iota
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Command is a control request applied by the control loop.
type Command int

const (
	CmdPause Command = iota + 1
	CmdResume
	CmdExit
)

func (c Command) String() string {
	switch c {
	case CmdPause:
		return "pause"
	case CmdResume:
		return "resume"
	case CmdExit:
		return "exit"
	default:
		return "unknown"
	}
}

// ParseCommand maps "pause", "resume" and "exit" to commands.
func ParseCommand(s string) (Command, error) {
	switch s {
	case "pause":
		return CmdPause, nil
	case "resume":
		return CmdResume, nil
	case "exit", "stop", "quit":
		return CmdExit, nil
	default:
		return 0, ErrUnknownCommand
	}
}

var (
	ErrStopped        = errors.New("controller is stopped")
	ErrUnknownCommand = errors.New("unknown command")
	ErrAlreadyRunning = errors.New("controller already started")
)

// RunState holds the current State. Transitions are only made by the
// control loop, so readers just Load.
type RunState struct {
	v atomic.Int32
}

func (r *RunState) Load() State {
	return State(r.v.Load())
}

// apply moves to the state cmd asks for and reports whether it changed.
// Stopped is terminal.
func (r *RunState) apply(cmd Command) (State, bool) {
	cur := r.Load()
	if cur == Stopped {
		return cur, false
	}

	next := cur
	switch cmd {
	case CmdPause:
		next = Paused
	case CmdResume:
		next = Running
	case CmdExit:
		next = Stopped
	default:
	}

	if next == cur {
		return cur, false
	}
	r.v.Store(int32(next))
	return next, true
}

func (r *RunState) stop() {
	r.v.Store(int32(Stopped))
}
