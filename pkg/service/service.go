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

	"github.com/ZaparooProject/qr2key/pkg/config"
	"github.com/rs/zerolog/log"
)

// Start runs a Controller in the background. The returned stop sends an
// exit and waits for the controller to finish.
func Start(
	ctx context.Context,
	args ControllerArgs,
) (ctrl *Controller, stop func() error, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)

	if args.Config == nil {
		return nil, nil, errors.New("controller requires a config")
	}
	if args.Sink == nil {
		return nil, nil, errors.New("controller requires a keyboard sink")
	}

	ctrl = NewController(args)

	go func() {
		if runErr := ctrl.Run(ctx); runErr != nil {
			log.Error().Err(runErr).Msg("controller exited with error")
		}
	}()

	stop = func() error {
		if sendErr := ctrl.Exit(); sendErr != nil {
			log.Debug().Err(sendErr).Msg("controller already stopped")
		}
		<-ctrl.Done()
		return nil
	}
	return ctrl, stop, nil
}
