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

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usbIDRe = regexp.MustCompile(`^[0-9a-fA-F]{4}$`)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("usbid", validateUSBID)
	_ = v.RegisterValidation("vidpid", validateVIDPID)
	_ = v.RegisterValidation("regex", validateRegex)
	return v
}

// Validate checks loaded values before they replace the current config.
func Validate(vals *Values) error {
	err := defaultValidator.Struct(vals)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// validateUSBID checks a 4 digit hex vendor or product id.
func validateUSBID(fl validator.FieldLevel) bool {
	return usbIDRe.MatchString(fl.Field().String())
}

// validateVIDPID checks a "vid:pid" pair.
func validateVIDPID(fl validator.FieldLevel) bool {
	vid, pid, ok := strings.Cut(fl.Field().String(), ":")
	return ok && usbIDRe.MatchString(vid) && usbIDRe.MatchString(pid)
}

func validateRegex(fl validator.FieldLevel) bool {
	_, err := regexp.Compile(fl.Field().String())
	return err == nil
}
