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
	"strings"

	"github.com/ZaparooProject/qr2key/pkg/helpers"
	"github.com/rs/zerolog/log"
)

// Filter selects ports by vendor id, product id and description pattern.
// Each non-empty category must match at least once; an empty category is
// ignored, so the zero Filter matches every port.
type Filter struct {
	VendorIDs    []string
	ProductIDs   []string
	Descriptions []string
}

// Matches reports whether p satisfies every active category. A port missing
// the field a category checks fails that category.
func (f Filter) Matches(p PortDescriptor) bool {
	if len(f.VendorIDs) > 0 && !matchID(f.VendorIDs, p.VIDString()) {
		return false
	}
	if len(f.ProductIDs) > 0 && !matchID(f.ProductIDs, p.PIDString()) {
		return false
	}
	if len(f.Descriptions) > 0 && !matchDescription(f.Descriptions, p.Description) {
		return false
	}
	return true
}

func matchID(ids []string, have string) bool {
	if have == "" {
		return false
	}
	for _, id := range ids {
		if strings.EqualFold(strings.TrimSpace(id), have) {
			return true
		}
	}
	return false
}

func matchDescription(patterns []string, desc string) bool {
	if desc == "" {
		return false
	}
	for _, pattern := range patterns {
		re, err := helpers.CachedCompileFold(pattern)
		if err != nil {
			log.Debug().Err(err).Str("pattern", pattern).Msg("skipping invalid description pattern")
			continue
		}
		if re.MatchString(desc) {
			return true
		}
	}
	return false
}
