// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensordriver

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/GermanBionicSystems/am2320/am2320"
	"gopkg.in/yaml.v3"
)

// SensorType identifies the kind of value a registered sensor reports.
type SensorType string

const (
	AmbientTemperature SensorType = "ambient_temperature"
	RelativeHumidity   SensorType = "relative_humidity"
)

// SensorConfig describes a sensor to the host framework.
type SensorConfig struct {
	Type       SensorType `yaml:"type"`
	Name       string     `yaml:"name"`
	Vendor     string     `yaml:"vendor"`
	Version    int        `yaml:"version"`
	Resolution float64    `yaml:"resolution"`
	MaxRange   float64    `yaml:"max_range"`
	// Power is the supply current in mA.
	Power float64 `yaml:"power"`
}

// Datasheet values.
var (
	DefaultTemperature = SensorConfig{
		Type:       AmbientTemperature,
		Name:       "AM2320 temperature",
		Vendor:     "Aosong",
		Version:    1,
		Resolution: 0.1,
		MaxRange:   am2320.MaxTemperature,
		Power:      0.95,
	}
	DefaultHumidity = SensorConfig{
		Type:       RelativeHumidity,
		Name:       "AM2320 humidity",
		Vendor:     "Aosong",
		Version:    1,
		Resolution: 0.1,
		MaxRange:   am2320.MaxHumidity,
		Power:      0.95,
	}
)

// Config is the host side configuration of one sensor.
type Config struct {
	// Bus is the periph I²C bus name. Empty selects the first bus.
	Bus        string `yaml:"bus"`
	Address    uint16 `yaml:"address"`
	IntervalMs int    `yaml:"interval_ms"`
	CheckRange bool   `yaml:"check_range"`

	// SignedTemperature decodes bit 15 of the temperature as a sign.
	SignedTemperature bool           `yaml:"signed_temperature"`
	Sensors           []SensorConfig `yaml:"sensors"`
}

// Interval returns the poll interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Load reads and parses a YAML configuration file. The result is neither
// normalized nor validated.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes a YAML configuration. Unknown fields are rejected.
func Parse(b []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("sensordriver: config: %w", err)
	}
	return cfg, nil
}

// Normalize fills in defaults. Missing sensors get both datasheet
// descriptors; zero fields of a declared sensor are taken from the datasheet
// descriptor of the same type.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Address == 0 {
		cfg.Address = am2320.SensorAddress
	}
	if cfg.IntervalMs == 0 {
		cfg.IntervalMs = int(am2320.MinSenseInterval / time.Millisecond)
	}
	if len(cfg.Sensors) == 0 {
		cfg.Sensors = []SensorConfig{DefaultTemperature, DefaultHumidity}
		return
	}
	for i := range cfg.Sensors {
		s := &cfg.Sensors[i]
		var def SensorConfig
		switch s.Type {
		case AmbientTemperature:
			def = DefaultTemperature
		case RelativeHumidity:
			def = DefaultHumidity
		default:
			continue
		}
		if s.Name == "" {
			s.Name = def.Name
		}
		if s.Vendor == "" {
			s.Vendor = def.Vendor
		}
		if s.Version == 0 {
			s.Version = def.Version
		}
		if s.Resolution == 0 {
			s.Resolution = def.Resolution
		}
		if s.MaxRange == 0 {
			s.MaxRange = def.MaxRange
		}
		if s.Power == 0 {
			s.Power = def.Power
		}
	}
}

// Validate checks configuration correctness. It does not mutate cfg and is
// meant to run after Normalize.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if cfg.Address > 0x7f {
		return fmt.Errorf("address 0x%x is not a 7 bit I²C address", cfg.Address)
	}
	if cfg.Interval() < am2320.MinSenseInterval {
		return fmt.Errorf("interval_ms %d is below the sensor minimum of %s", cfg.IntervalMs, am2320.MinSenseInterval)
	}
	seen := make(map[SensorType]bool)
	for _, s := range cfg.Sensors {
		if s.Type != AmbientTemperature && s.Type != RelativeHumidity {
			return fmt.Errorf("sensor %q: unknown type %q", s.Name, s.Type)
		}
		if seen[s.Type] {
			return fmt.Errorf("sensor %q: type %q declared twice", s.Name, s.Type)
		}
		seen[s.Type] = true
		if s.Name == "" {
			return fmt.Errorf("sensor of type %q has no name", s.Type)
		}
		if s.Resolution <= 0 || s.MaxRange <= 0 || s.Power < 0 {
			return fmt.Errorf("sensor %q: resolution, max_range and power must be positive", s.Name)
		}
	}
	return nil
}
