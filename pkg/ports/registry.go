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

package ports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Registry answers port queries against a fresh enumeration each call.
type Registry struct {
	enumerate EnumerateFunc
	clock     clockwork.Clock
	ignore    map[string]struct{}
}

type Option func(*Registry)

func WithEnumerator(fn EnumerateFunc) Option {
	return func(r *Registry) { r.enumerate = fn }
}

func WithClock(clock clockwork.Clock) Option {
	return func(r *Registry) { r.clock = clock }
}

// WithIgnore excludes devices by "vid:pid" before any filtering.
func WithIgnore(pairs []string) Option {
	return func(r *Registry) {
		r.ignore = make(map[string]struct{}, len(pairs))
		for _, p := range pairs {
			r.ignore[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		enumerate: SystemEnumerate,
		clock:     clockwork.NewRealClock(),
		ignore:    map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) ignored(p PortDescriptor) bool {
	if p.VID == nil || p.PID == nil {
		return false
	}
	_, ok := r.ignore[p.VIDString()+":"+p.PIDString()]
	return ok
}

// Probe enumerates once and reports whether port enumeration works at all.
func (r *Registry) Probe() error {
	if _, err := r.enumerate(); err != nil {
		return fmt.Errorf("serial port enumeration unavailable: %w", err)
	}
	return nil
}

// List returns every present device in enumeration order. Enumeration
// errors are logged and yield an empty list.
func (r *Registry) List() []PortDescriptor {
	all, err := r.enumerate()
	if err != nil {
		log.Error().Err(err).Msg("failed to list serial ports")
		return []PortDescriptor{}
	}
	out := make([]PortDescriptor, 0, len(all))
	for _, p := range all {
		if r.ignored(p) {
			log.Trace().Str("device", p.Device).Msg("ignoring serial device")
			continue
		}
		out = append(out, p)
	}
	return out
}

// Find returns the devices matching f, preserving enumeration order.
func (r *Registry) Find(f Filter) []PortDescriptor {
	all := r.List()
	out := make([]PortDescriptor, 0, len(all))
	for _, p := range all {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// AutoDetect picks a device: the sole match, or the first in enumeration
// order when several match. Enumeration order is whatever the OS reports.
func (r *Registry) AutoDetect(f Filter) (string, bool) {
	found := r.Find(f)
	switch len(found) {
	case 0:
		log.Debug().Msg("no matching serial device found")
		return "", false
	case 1:
		log.Info().Str("device", found[0].Device).Msg("auto-detected serial device")
		return found[0].Device, true
	default:
		devices := make([]string, 0, len(found))
		for _, p := range found {
			devices = append(devices, p.Device)
		}
		log.Warn().Strs("matches", devices).
			Msgf("multiple matching serial devices, using %s", found[0].Device)
		return found[0].Device, true
	}
}

// Watch takes a baseline snapshot, then every interval reports each device
// that wasn't present on the previous poll. It blocks until ctx is done.
func (r *Registry) Watch(
	ctx context.Context,
	f Filter,
	interval time.Duration,
	onNewPort func(PortDescriptor),
) error {
	if interval <= 0 {
		return errors.New("watch interval must be positive")
	}

	w := r.NewWatcher()
	w.Poll(f)

	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			for _, p := range w.Poll(f) {
				onNewPort(p)
			}
		}
	}
}

// Watcher diffs successive polls. The first poll only records a baseline.
type Watcher struct {
	registry *Registry
	known    map[string]struct{}
}

func (r *Registry) NewWatcher() *Watcher {
	return &Watcher{registry: r}
}

// Poll enumerates once and returns the matching devices absent from the
// previous poll, in enumeration order. The first call returns nil.
func (w *Watcher) Poll(f Filter) []PortDescriptor {
	current := w.registry.Find(f)
	next := make(map[string]struct{}, len(current))

	var added []PortDescriptor
	for _, p := range current {
		if _, dup := next[p.Device]; dup {
			continue
		}
		next[p.Device] = struct{}{}
		if w.known == nil {
			continue
		}
		if _, seen := w.known[p.Device]; !seen {
			added = append(added, p)
		}
	}

	if w.known == nil {
		log.Debug().Int("ports", len(next)).Msg("recorded baseline serial port snapshot")
	}
	w.known = next
	return added
}

// Primed reports whether a baseline has been taken.
func (w *Watcher) Primed() bool {
	return w.known != nil
}
