// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import "testing"

func TestCRC16(t *testing.T) {
	var tests = []struct {
		bytes  []byte
		result uint16
	}{
		{bytes: []byte{0x03, 0x04, 0x03, 0x39, 0x01, 0x15}, result: 0xfee1},
		{bytes: []byte{0x03, 0x04, 0x01, 0xf4, 0x00, 0xfa}, result: 0xa531},
		{bytes: []byte{0x03, 0x02, 0x01, 0xc2}, result: 0xa121},
		{bytes: []byte("123456789"), result: 0x4b37},
		{bytes: nil, result: 0xffff},
	}
	for _, test := range tests {
		res := CRC16(test.bytes)
		if res != test.result {
			t.Errorf("CRC16(%#v)!=0x%04x received 0x%04x", test.bytes, test.result, res)
		}
		if again := CRC16(test.bytes); again != res {
			t.Errorf("CRC16(%#v) is not stable: 0x%04x then 0x%04x", test.bytes, res, again)
		}
	}
}

func TestCRC16Bytes(t *testing.T) {
	b := CRC16Bytes(CRC16([]byte{0x03, 0x04, 0x03, 0x39, 0x01, 0x15}))
	if b != [2]byte{0xfe, 0xe1} {
		t.Errorf("CRC16Bytes()=%#v expected [0xfe 0xe1]", b)
	}
	if b := CRC16Bytes(0x1234); b[0] != 0x12 || b[1] != 0x34 {
		t.Errorf("CRC16Bytes(0x1234)=%#v", b)
	}
}
