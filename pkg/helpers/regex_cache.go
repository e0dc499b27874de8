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

package helpers

import (
	"fmt"
	"regexp"

	"github.com/ZaparooProject/qr2key/pkg/helpers/syncutil"
)

// RegexCache holds compiled patterns keyed by their source. Port filters are
// evaluated on every monitor cycle, so description patterns are compiled once.
type RegexCache struct {
	cache map[string]*regexp.Regexp
	mu    syncutil.RWMutex
}

var GlobalRegexCache = NewRegexCache()

func NewRegexCache() *RegexCache {
	return &RegexCache{
		cache: make(map[string]*regexp.Regexp),
	}
}

func (rc *RegexCache) Compile(pattern string) (*regexp.Regexp, error) {
	rc.mu.RLock()
	if re, exists := rc.cache[pattern]; exists {
		rc.mu.RUnlock()
		return re, nil
	}
	rc.mu.RUnlock()

	rc.mu.Lock()
	defer rc.mu.Unlock()

	// added while waiting for the lock
	if re, exists := rc.cache[pattern]; exists {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile regex pattern %q: %w", pattern, err)
	}

	rc.cache[pattern] = re
	return re, nil
}

// CompileFold compiles pattern as a case-insensitive match.
func (rc *RegexCache) CompileFold(pattern string) (*regexp.Regexp, error) {
	return rc.Compile("(?i)" + pattern)
}

func (rc *RegexCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.cache = make(map[string]*regexp.Regexp)
}

func (rc *RegexCache) Size() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.cache)
}

func CachedCompileFold(pattern string) (*regexp.Regexp, error) {
	return GlobalRegexCache.CompileFold(pattern)
}
