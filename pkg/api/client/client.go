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

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"syscall"
	"time"

	"github.com/ZaparooProject/qr2key/pkg/api"
	"github.com/ZaparooProject/qr2key/pkg/config"
	"github.com/ZaparooProject/qr2key/pkg/service"
)

const requestTimeout = 5 * time.Second

var ErrNotRunning = errors.New("no running instance found")

// Client talks to the control API of a running instance.
type Client struct {
	hc      *http.Client
	baseURL string
}

func New(addr string) *Client {
	return &Client{
		baseURL: "http://" + addr,
		hc:      &http.Client{Timeout: requestTimeout},
	}
}

func FromConfig(cfg *config.Instance) *Client {
	return New(cfg.APIListen())
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return ErrNotRunning
		}
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr api.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("api error (%d)", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) Status(ctx context.Context) (service.Status, error) {
	var status service.Status
	err := c.do(ctx, http.MethodGet, "/api/status", &status)
	return status, err
}

func (c *Client) Version(ctx context.Context) (api.VersionResponse, error) {
	var v api.VersionResponse
	err := c.do(ctx, http.MethodGet, "/api/version", &v)
	return v, err
}

// Send asks the running instance to apply cmd.
func (c *Client) Send(ctx context.Context, cmd service.Command) (api.CommandResponse, error) {
	var resp api.CommandResponse
	err := c.do(ctx, http.MethodPost, "/api/"+cmd.String(), &resp)
	return resp, err
}
