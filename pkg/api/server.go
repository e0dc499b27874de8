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

// Package api serves the local control API used by a second invocation of
// the binary to pause, resume or stop a running instance.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	apimiddleware "github.com/ZaparooProject/qr2key/pkg/api/middleware"
	"github.com/ZaparooProject/qr2key/pkg/config"
	"github.com/ZaparooProject/qr2key/pkg/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// Controller is the part of service.Controller the API drives.
type Controller interface {
	Status() service.Status
	Send(cmd service.Command) error
}

type VersionResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type CommandResponse struct {
	Command string         `json:"command"`
	Status  service.Status `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error writing api response")
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

func handleStatus(ctrl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Status())
	}
}

func handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		Name:    config.AppDisplayName,
		Version: config.AppVersion,
	})
}

func handleCommand(ctrl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "command")
		cmd, err := service.ParseCommand(name)
		if err != nil {
			writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", err, name))
			return
		}

		log.Info().Str("command", cmd.String()).Msg("received api command")
		err = ctrl.Send(cmd)
		switch {
		case errors.Is(err, service.ErrStopped):
			writeError(w, http.StatusConflict, err)
			return
		case err != nil:
			log.Error().Err(err).Msg("error sending command")
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusAccepted, CommandResponse{
			Command: cmd.String(),
			Status:  ctrl.Status(),
		})
	}
}

// NewRouter builds the API handler. ctx bounds the rate limiter cleanup.
func NewRouter(ctx context.Context, ctrl Controller) http.Handler {
	limiter := apimiddleware.NewIPRateLimiter()
	limiter.StartCleanup(ctx)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(middleware.Timeout(config.APIRequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Accept"},
		ExposedHeaders: []string{},
	}))
	r.Use(apimiddleware.LoopbackOnly)
	r.Use(apimiddleware.HTTPRateLimitMiddleware(limiter))

	r.Get("/api/status", handleStatus(ctrl))
	r.Get("/api/version", handleVersion)
	r.Post("/api/{command}", handleCommand(ctrl))

	return r
}

// Serve runs the API on ln until ctx is cancelled.
func Serve(ctx context.Context, ln net.Listener, ctrl Controller) error {
	srv := &http.Server{
		Handler:           NewRouter(ctx, ctrl),
		ReadHeaderTimeout: config.APIRequestTimeout,
	}

	serveDone := make(chan struct{})
	defer close(serveDone)

	go func() {
		select {
		case <-ctx.Done():
		case <-serveDone:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("error shutting down api server")
		}
	}()

	log.Info().Msgf("api listening on %s", ln.Addr())
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("api server: %w", err)
}

// Start listens on the configured loopback address and serves the API
// until ctx is cancelled.
func Start(ctx context.Context, cfg *config.Instance, ctrl Controller) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.APIListen())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.APIListen(), err)
	}
	return Serve(ctx, ln, ctrl)
}
