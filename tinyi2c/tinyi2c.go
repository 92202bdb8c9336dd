// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tinyi2c exposes a TinyGo drivers.I2C, such as machine.I2C0, as a
// periph i2c.Bus so that periph device drivers can run on a microcontroller.
package tinyi2c

import (
	"errors"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

// baudRateSetter is implemented by machine.I2C.
type baudRateSetter interface {
	SetBaudRate(br uint32) error
}

// Bus wraps a drivers.I2C.
type Bus struct {
	b    drivers.I2C
	name string
}

// New returns a Bus on b. name is only used by String.
func New(b drivers.I2C, name string) *Bus {
	if name == "" {
		name = "tinygo-i2c"
	}
	return &Bus{b: b, name: name}
}

func (b *Bus) String() string {
	return b.name
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	return b.b.Tx(addr, w, r)
}

// SetSpeed implements i2c.Bus. It is only supported when the underlying bus
// can change its baud rate.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	s, ok := b.b.(baudRateSetter)
	if !ok {
		return errors.New("tinyi2c: bus does not support changing speed")
	}
	if f <= 0 || f/physic.Hertz > physic.Frequency(^uint32(0)) {
		return errors.New("tinyi2c: invalid speed " + f.String())
	}
	return s.SetBaudRate(uint32(f / physic.Hertz))
}

var _ i2c.Bus = &Bus{}
