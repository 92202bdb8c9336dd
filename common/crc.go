// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, the CRC16/MODBUS calculation used by AOSONG sensors.
package common

// crc16Polynomial is 0x8005 reflected.
const crc16Polynomial uint16 = 0xa001

// CRC16 calculates the CRC16/MODBUS checksum of the byte slice parameter and
// returns the calculated value. The accumulator starts at 0xffff.
func CRC16(bytes []byte) uint16 {
	crc := uint16(0xffff)
	for _, val := range bytes {
		crc ^= uint16(val)
		for i := 0; i < 8; i++ {
			if (crc & 0x01) == 0x01 {
				crc = (crc >> 1) ^ crc16Polynomial
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// CRC16Bytes returns the big-endian byte pair of crc, high byte first.
//
// Note that Modbus frames carry the checksum low byte first.
func CRC16Bytes(crc uint16) [2]byte {
	return [2]byte{byte(crc >> 8), byte(crc)}
}
