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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ZaparooProject/qr2key/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	sendErr error
	sent    []service.Command
	state   string
	mu      sync.Mutex
}

func (f *fakeController) Status() service.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return service.Status{InstanceID: "test-id", State: f.state, Device: "/dev/ttyUSB0", Connected: true}
}

func (f *fakeController) Send(cmd service.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, cmd)
	return nil
}

func (f *fakeController) Sent() []service.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.Command(nil), f.sent...)
}

func newTestServer(t *testing.T, ctrl Controller) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(NewRouter(ctx, ctrl))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestStatus(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeController{state: "running"})
	resp := do(t, http.MethodGet, srv.URL+"/api/status")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var status service.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "test-id", status.InstanceID)
	assert.Equal(t, "running", status.State)
	assert.Equal(t, "/dev/ttyUSB0", status.Device)
	assert.True(t, status.Connected)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeController{})
	resp := do(t, http.MethodGet, srv.URL+"/api/version")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v VersionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, "QR2Key", v.Name)
	assert.NotEmpty(t, v.Version)
}

func TestCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want service.Command
	}{
		{path: "pause", want: service.CmdPause},
		{path: "resume", want: service.CmdResume},
		{path: "exit", want: service.CmdExit},
		{path: "quit", want: service.CmdExit},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			ctrl := &fakeController{state: "paused"}
			srv := newTestServer(t, ctrl)
			resp := do(t, http.MethodPost, srv.URL+"/api/"+tt.path)
			require.Equal(t, http.StatusAccepted, resp.StatusCode)

			var body CommandResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.want.String(), body.Command)
			assert.Equal(t, "paused", body.Status.State)
			assert.Equal(t, []service.Command{tt.want}, ctrl.Sent())
		})
	}
}

func TestCommand_Unknown(t *testing.T) {
	t.Parallel()

	ctrl := &fakeController{}
	srv := newTestServer(t, ctrl)
	resp := do(t, http.MethodPost, srv.URL+"/api/explode")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Error, "unknown command")
	assert.Empty(t, ctrl.Sent())
}

func TestCommand_GetNotAllowed(t *testing.T) {
	t.Parallel()

	ctrl := &fakeController{}
	srv := newTestServer(t, ctrl)
	resp := do(t, http.MethodGet, srv.URL+"/api/pause")

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Empty(t, ctrl.Sent())
}

func TestCommand_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want int
	}{
		{name: "stopped", err: service.ErrStopped, want: http.StatusConflict},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t, &fakeController{sendErr: tt.err})
			resp := do(t, http.MethodPost, srv.URL+"/api/pause")
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- Serve(ctx, ln, &fakeController{state: "running"})
	}()

	assert.Eventually(t, func() bool {
		req, reqErr := http.NewRequestWithContext(
			context.Background(), http.MethodGet, "http://"+ln.Addr().String()+"/api/status", http.NoBody)
		if reqErr != nil {
			return false
		}
		resp, reqErr := http.DefaultClient.Do(req)
		if reqErr != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeController{state: "running"})

	tests := []struct {
		origin string
		want   string
	}{
		{origin: "http://localhost:3000", want: "http://localhost:3000"},
		{origin: "https://example.com", want: ""},
	}

	for _, tt := range tests {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/api/status", http.NoBody)
		require.NoError(t, err)
		req.Header.Set("Origin", tt.origin)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, tt.want, resp.Header.Get("Access-Control-Allow-Origin"), tt.origin)
	}
}
