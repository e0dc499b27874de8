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
	"slices"
	"strings"
	"time"
)

type Serial struct {
	Port            string   `toml:"port"`
	VendorIDs       []string `toml:"vendor_ids" validate:"dive,usbid"`
	ProductIDs      []string `toml:"product_ids" validate:"dive,usbid"`
	Descriptions    []string `toml:"descriptions" validate:"dive,regex"`
	IgnoreDevices   []string `toml:"ignore_devices,omitempty" validate:"dive,vidpid"`
	BaudRate        int      `toml:"baud_rate" validate:"gt=0"`
	Timeout         float64  `toml:"timeout" validate:"gte=0"`
	MonitorInterval float64  `toml:"monitor_interval" validate:"gte=0.01"`
	AutoDetect      bool     `toml:"auto_detect"`
	MonitorPorts    bool     `toml:"monitor_ports"`
}

// PortFilterValues is the raw filter lists from the serial section.
type PortFilterValues struct {
	VendorIDs    []string
	ProductIDs   []string
	Descriptions []string
}

//nolint:gocritic // returns a detached copy
func (v Values) clone() Values {
	v.Serial.VendorIDs = slices.Clone(v.Serial.VendorIDs)
	v.Serial.ProductIDs = slices.Clone(v.Serial.ProductIDs)
	v.Serial.Descriptions = slices.Clone(v.Serial.Descriptions)
	v.Serial.IgnoreDevices = slices.Clone(v.Serial.IgnoreDevices)
	return v
}

// MinMonitorInterval is the shortest port polling interval.
const MinMonitorInterval = 10 * time.Millisecond

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (c *Instance) SerialPort() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Serial.Port
}

func (c *Instance) SetSerialPort(port string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Serial.Port = port
}

func (c *Instance) BaudRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Serial.BaudRate
}

func (c *Instance) SerialTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return seconds(c.vals.Serial.Timeout)
}

func (c *Instance) AutoDetect() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Serial.AutoDetect
}

func (c *Instance) SetAutoDetect(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Serial.AutoDetect = enabled
}

func (c *Instance) MonitorPorts() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Serial.MonitorPorts
}

func (c *Instance) SetMonitorPorts(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Serial.MonitorPorts = enabled
}

func (c *Instance) MonitorInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return max(seconds(c.vals.Serial.MonitorInterval), MinMonitorInterval)
}

func (c *Instance) PortFilter() PortFilterValues {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return PortFilterValues{
		VendorIDs:    slices.Clone(c.vals.Serial.VendorIDs),
		ProductIDs:   slices.Clone(c.vals.Serial.ProductIDs),
		Descriptions: slices.Clone(c.vals.Serial.Descriptions),
	}
}

func (c *Instance) SetPortFilter(f PortFilterValues) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Serial.VendorIDs = slices.Clone(f.VendorIDs)
	c.vals.Serial.ProductIDs = slices.Clone(f.ProductIDs)
	c.vals.Serial.Descriptions = slices.Clone(f.Descriptions)
}

// IgnoreDevices returns the ignore list normalised to lowercase "vid:pid".
func (c *Instance) IgnoreDevices() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.vals.Serial.IgnoreDevices))
	for _, v := range c.vals.Serial.IgnoreDevices {
		out = append(out, strings.ToLower(v))
	}
	return out
}
