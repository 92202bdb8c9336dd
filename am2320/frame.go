// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package am2320

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/GermanBionicSystems/am2320/common"
	"github.com/goburrow/modbus"
)

// The sensor speaks a reduced Modbus: one byte register address, one byte
// register count, and registers that are a single byte wide.
const (
	funcReadRegisters byte = modbus.FuncCodeReadHoldingRegisters
	exceptionFlag     byte = 0x80

	humidityRegisters    byte = 0x00
	temperatureRegisters byte = 0x02
	deviceInfoRegisters  byte = 0x08
)

// Datasheet measurement range, in tenths.
const (
	minTemperatureDeci = -400
	maxTemperatureDeci = 800
	minHumidityDeci    = 0
	maxHumidityDeci    = 999
)

// request is a register range read in a single exchange.
type request struct {
	op    string
	start byte
	count byte
}

var (
	reqHumidity    = request{op: "humidity", start: humidityRegisters, count: 2}
	reqTemperature = request{op: "temperature", start: temperatureRegisters, count: 2}
	reqBoth        = request{op: "temperature+humidity", start: humidityRegisters, count: 4}
	reqDeviceInfo  = request{op: "device info", start: deviceInfoRegisters, count: 7}
)

func (r request) pdu() *modbus.ProtocolDataUnit {
	return &modbus.ProtocolDataUnit{
		FunctionCode: funcReadRegisters,
		Data:         []byte{r.start, r.count},
	}
}

// responseSize returns the length of the answer to a read of count
// registers:
//
//	{function code, count, registers..., crc low, crc high}
func responseSize(count byte) int {
	return int(count) + 4
}

// packager implements modbus.Packager for the sensor. The slave address is
// carried by the I²C transaction so it is not part of the frame.
type packager struct{}

func (packager) Encode(pdu *modbus.ProtocolDataUnit) ([]byte, error) {
	if len(pdu.Data) != 2 {
		return nil, fmt.Errorf("am2320: request needs a start register and a count, got %d bytes", len(pdu.Data))
	}
	adu := make([]byte, 0, 3)
	adu = append(adu, pdu.FunctionCode)
	return append(adu, pdu.Data...), nil
}

// Verify checks that aduResponse echoes the function code and register count
// of aduRequest and that its CRC is valid.
func (packager) Verify(aduRequest, aduResponse []byte) error {
	if len(aduRequest) != 3 {
		return fmt.Errorf("am2320: invalid request length %d", len(aduRequest))
	}
	fc, count := aduRequest[0], aduRequest[2]
	if len(aduResponse) < 4 {
		return &ProtocolError{Reason: fmt.Sprintf("short frame of %d bytes", len(aduResponse))}
	}
	if aduResponse[0] == fc|exceptionFlag && checkCRC(aduResponse[:4]) {
		return &ProtocolError{
			Reason: "exception",
			Err:    &modbus.ModbusError{FunctionCode: fc, ExceptionCode: aduResponse[1]},
		}
	}
	if len(aduResponse) != responseSize(count) {
		return &ProtocolError{Reason: fmt.Sprintf("frame length %d, expected %d", len(aduResponse), responseSize(count))}
	}
	if aduResponse[0] != fc {
		return &ProtocolError{Reason: fmt.Sprintf("function code 0x%02x, expected 0x%02x", aduResponse[0], fc)}
	}
	if aduResponse[1] != count {
		return &ProtocolError{Reason: fmt.Sprintf("register count %d, expected %d", aduResponse[1], count)}
	}
	if !checkCRC(aduResponse) {
		return &ProtocolError{Reason: "crc mismatch"}
	}
	return nil
}

// Decode strips the header and CRC of a verified response.
func (packager) Decode(adu []byte) (*modbus.ProtocolDataUnit, error) {
	if len(adu) < 4 {
		return nil, &ProtocolError{Reason: fmt.Sprintf("short frame of %d bytes", len(adu))}
	}
	return &modbus.ProtocolDataUnit{FunctionCode: adu[0], Data: adu[2 : len(adu)-2]}, nil
}

// checkCRC returns true if the two trailing bytes of frame, sent low byte
// first, match the CRC of the rest of it.
func checkCRC(frame []byte) bool {
	n := len(frame)
	crc := common.CRC16Bytes(common.CRC16(frame[:n-2]))
	return frame[n-2] == crc[1] && frame[n-1] == crc[0]
}

// humidityDeci decodes a big-endian humidity field in tenths of %RH.
func humidityDeci(b []byte) int {
	return int(binary.BigEndian.Uint16(b))
}

// temperatureDeci decodes a big-endian temperature field in tenths of °C as
// an unsigned value.
func temperatureDeci(b []byte) int {
	return int(binary.BigEndian.Uint16(b))
}

// signedTemperatureDeci decodes a temperature field with bit 15 as the sign,
// as the datasheet documents below 0°C. It is not two's complement.
func signedTemperatureDeci(b []byte) int {
	raw := binary.BigEndian.Uint16(b)
	t := int(raw & 0x7fff)
	if raw&0x8000 != 0 {
		t = -t
	}
	return t
}

func deviceInfo(b []byte) string {
	return hex.EncodeToString(b)
}
