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
	"os"
	"path/filepath"

	"github.com/ZaparooProject/qr2key/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "QR2KEY_CFG"
)

type Values struct {
	LogLevel          string   `toml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	ErrorReportingDSN string   `toml:"error_reporting_dsn,omitempty" validate:"omitempty,url"`
	Serial            Serial   `toml:"serial"`
	Keyboard          Keyboard `toml:"keyboard"`
	App               App      `toml:"app"`
	ConfigSchema      int      `toml:"config_schema"`
	DebugLogging      bool     `toml:"debug_logging"`
}

type App struct {
	APIPort int `toml:"api_port" validate:"gte=0,lte=65535"`
}

// DefaultVendorIDs are the USB-serial bridges QR readers are usually built on:
// FTDI, Silicon Labs CP210x, WCH CH340 and Prolific PL2303.
var DefaultVendorIDs = []string{"0403", "10C4", "1A86", "067B"}

// DefaultIgnoreDevices are serial devices which are never keyboard wedges.
var DefaultIgnoreDevices = []string{
	// Sinden Lightgun
	"16c0:0f38", "16c0:0f39", "16c0:0f01", "16c0:0f02",
	"16d0:0f38", "16d0:0f39", "16d0:0f01", "16d0:0f02",
	"16d0:1094", "16d0:1095", "16d0:1096", "16d0:1097",
	"16d0:1098", "16d0:1099", "16d0:109a", "16d0:109b",
	"16d0:109c", "16d0:109d",
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	LogLevel:     "info",
	Serial: Serial{
		BaudRate:        9600,
		Timeout:         1,
		AutoDetect:      true,
		MonitorPorts:    true,
		MonitorInterval: 2,
		VendorIDs:       DefaultVendorIDs,
		ProductIDs:      []string{},
		Descriptions:    []string{},
		IgnoreDevices:   DefaultIgnoreDevices,
	},
	Keyboard: Keyboard{
		TypeDelay:       0.05,
		PressEnterAfter: false,
		PasteUnicode:    true,
	},
	App: App{
		APIPort: DefaultAPIPort,
	},
}

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		vals:     defaults.clone(),
		defaults: defaults.clone(),
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfgPath
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	// This ensures fields not present in the file retain their default values.
	newVals := c.defaults.clone()
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	if err := Validate(&newVals); err != nil {
		return err
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Get looks up a value by section and key using the names from the config
// file, e.g. Get("serial", "baud_rate", 9600). An empty section addresses the
// top-level keys. Values come back as TOML types: int64, float64, bool,
// string or []any. Missing keys return def.
func (c *Instance) Get(section, key string, def any) any {
	c.mu.RLock()
	data, err := toml.Marshal(&c.vals)
	c.mu.RUnlock()
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal config for lookup")
		return def
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config for lookup")
		return def
	}

	table := tree
	if section != "" {
		sub, ok := tree[section].(map[string]any)
		if !ok {
			log.Warn().Msgf("config key %s.%s not found, using default: %v", section, key, def)
			return def
		}
		table = sub
	}

	v, ok := table[key]
	if !ok {
		log.Warn().Msgf("config key %s.%s not found, using default: %v", section, key, def)
		return def
	}
	return v
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	zerolog.SetGlobalLevel(levelFor(c.vals))
}

// LogLevel is debug when debug_logging is set, otherwise log_level.
func (c *Instance) LogLevel() zerolog.Level {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return levelFor(c.vals)
}

//nolint:gocritic // read-only copy
func levelFor(vals Values) zerolog.Level {
	if vals.DebugLogging {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(vals.LogLevel)
	if err != nil || vals.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func (c *Instance) ErrorReportingDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ErrorReportingDSN
}

func (c *Instance) APIPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.App.APIPort
}

func (c *Instance) SetAPIPort(port int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.App.APIPort = port
}

// APIListen is the loopback address of the control API. Port logic is
// inlined so this never takes the read lock twice.
func (c *Instance) APIListen() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("127.0.0.1:%d", c.vals.App.APIPort)
}
