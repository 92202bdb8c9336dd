// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sensordriver exposes an am2320 sensor to a host sensor framework
// as two sensors, one for the temperature and one for the humidity.
//
// Registration itself is done by the framework through the Registrar
// interface; this package only describes the sensors and produces readings.
package sensordriver

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GermanBionicSystems/am2320/am2320"
)

// Reader is the subset of *am2320.Dev used by the driver.
type Reader interface {
	Temperature() (float64, error)
	Humidity() (float64, error)
	Close() error
}

// Event is a single reading of a registered sensor.
type Event struct {
	Type      SensorType
	Value     float64
	Timestamp time.Time
}

// Source produces the readings of one registered sensor.
type Source interface {
	Config() SensorConfig
	Read() (Event, error)
}

// Registrar is implemented by the host framework.
type Registrar interface {
	Register(cfg SensorConfig, src Source) error
	Unregister(cfg SensorConfig) error
}

// Driver registers a sensor's readings with a Registrar.
type Driver struct {
	r       Reader
	reg     Registrar
	sources []*source

	mu         sync.Mutex
	registered []*source
	closed     bool
}

// New returns a Driver reading from r. With no sensors, DefaultTemperature
// and DefaultHumidity are used.
func New(r Reader, reg Registrar, sensors ...SensorConfig) (*Driver, error) {
	if r == nil || reg == nil {
		return nil, errors.New("sensordriver: nil reader or registrar")
	}
	if len(sensors) == 0 {
		sensors = []SensorConfig{DefaultTemperature, DefaultHumidity}
	}
	d := &Driver{r: r, reg: reg}
	for _, cfg := range sensors {
		if cfg.Type != AmbientTemperature && cfg.Type != RelativeHumidity {
			return nil, fmt.Errorf("sensordriver: unsupported sensor type %q", cfg.Type)
		}
		d.sources = append(d.sources, &source{d: d, cfg: cfg})
	}
	return d, nil
}

// Register registers every sensor. If one registration fails the sensors
// registered so far are unregistered again.
func (d *Driver) Register() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return &am2320.InvalidStateError{Op: "register"}
	}
	if len(d.registered) != 0 {
		return errors.New("sensordriver: already registered")
	}
	for _, s := range d.sources {
		if err := d.reg.Register(s.cfg, s); err != nil {
			return errors.Join(fmt.Errorf("sensordriver: register %q: %w", s.cfg.Name, err), d.unregister())
		}
		d.registered = append(d.registered, s)
	}
	return nil
}

// Unregister removes every registered sensor.
func (d *Driver) Unregister() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unregister()
}

// Close unregisters the sensors and closes the reader. Subsequent calls are
// no-ops.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return errors.Join(d.unregister(), d.r.Close())
}

// Sources returns one Source per configured sensor.
func (d *Driver) Sources() []Source {
	out := make([]Source, 0, len(d.sources))
	for _, s := range d.sources {
		out = append(out, s)
	}
	return out
}

func (d *Driver) unregister() error {
	var errs []error
	for _, s := range d.registered {
		if err := d.reg.Unregister(s.cfg); err != nil {
			errs = append(errs, fmt.Errorf("sensordriver: unregister %q: %w", s.cfg.Name, err))
		}
	}
	d.registered = nil
	return errors.Join(errs...)
}

type source struct {
	d   *Driver
	cfg SensorConfig
}

func (s *source) Config() SensorConfig {
	return s.cfg
}

func (s *source) Read() (Event, error) {
	var v float64
	var err error
	switch s.cfg.Type {
	case AmbientTemperature:
		v, err = s.d.r.Temperature()
	case RelativeHumidity:
		v, err = s.d.r.Humidity()
	}
	if err != nil {
		return Event{}, err
	}
	return Event{Type: s.cfg.Type, Value: v, Timestamp: time.Now()}, nil
}

var _ Reader = &am2320.Dev{}
