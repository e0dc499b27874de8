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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexCache_Compile(t *testing.T) {
	t.Parallel()

	cache := NewRegexCache()

	re1, err := cache.Compile(`test\d+`)
	require.NoError(t, err)
	re2, err := cache.Compile(`test\d+`)
	require.NoError(t, err)

	assert.Same(t, re1, re2, "second compile should return cached instance")
	assert.True(t, re1.MatchString("test123"))
	assert.Equal(t, 1, cache.Size())

	_, err = cache.Compile(`[`)
	require.Error(t, err)
	assert.Equal(t, 1, cache.Size(), "invalid patterns are not cached")
}

func TestRegexCache_CompileFold(t *testing.T) {
	t.Parallel()

	cache := NewRegexCache()

	re, err := cache.CompileFold("ch340")
	require.NoError(t, err)

	assert.True(t, re.MatchString("USB-SERIAL CH340 (COM3)"))
	assert.False(t, re.MatchString("CP2102"))
}

func TestRegexCache_Clear(t *testing.T) {
	t.Parallel()

	cache := NewRegexCache()
	_, err := cache.Compile("a")
	require.NoError(t, err)

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestRegexCache_Concurrent(t *testing.T) {
	t.Parallel()

	cache := NewRegexCache()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_, err := cache.CompileFold("qr.*reader")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cache.Size())
}
