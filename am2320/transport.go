// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package am2320

import (
	"fmt"
	"time"

	"github.com/goburrow/modbus"
	"periph.io/x/conn/v3/i2c"
)

const (
	// Time the sensor needs to leave sleep mode after being addressed.
	wakeDelay = time.Millisecond
	// Minimum time between the read command and reading the answer.
	readDelay = 2 * time.Millisecond
)

// transporter runs a request/response exchange on the I²C bus as a write
// followed by a separate read. It implements modbus.Transporter.
type transporter struct {
	d *i2c.Dev
}

// wake sends a dummy write. A sleeping sensor NACKs it, so the error is
// informational only.
func (t *transporter) wake() error {
	err := t.d.Tx([]byte{0}, nil)
	time.Sleep(wakeDelay)
	return err
}

// Send writes the request then reads back a fixed size answer sized from the
// register count in the request.
func (t *transporter) Send(aduRequest []byte) ([]byte, error) {
	if len(aduRequest) != 3 {
		return nil, fmt.Errorf("invalid request length %d", len(aduRequest))
	}
	if err := t.d.Tx(aduRequest, nil); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	time.Sleep(readDelay)
	r := make([]byte, responseSize(aduRequest[2]))
	if err := t.d.Tx(nil, r); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return r, nil
}

var _ modbus.Transporter = &transporter{}
var _ modbus.Packager = packager{}
