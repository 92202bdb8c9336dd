// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package am2320

import "fmt"

// InvalidStateError is returned by any operation on a closed Dev. The bus is
// never touched in that case.
type InvalidStateError struct {
	Op string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("am2320: %s: device is closed", e.Op)
}

// ProtocolError is returned when the sensor answer does not match the
// request: wrong echoed function code or register count, bad CRC, or an
// exception frame. Err is a *modbus.ModbusError for exception frames.
type ProtocolError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("am2320: %s: incorrect sensor answer: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("am2320: %s: incorrect sensor answer: %s", e.Op, e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure of the underlying bus.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("am2320: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
