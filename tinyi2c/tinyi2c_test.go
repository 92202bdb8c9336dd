// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tinyi2c

import (
	"bytes"
	"io"
	"log"
	"testing"

	"github.com/GermanBionicSystems/am2320/am2320"
	"periph.io/x/conn/v3/physic"
)

// fakeI2C answers every read with resp.
type fakeI2C struct {
	writes [][]byte
	resp   []byte
	baud   uint32
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if len(w) != 0 {
		f.writes = append(f.writes, append([]byte(nil), w...))
	}
	copy(r, f.resp)
	return nil
}

type fakeMachineI2C struct {
	fakeI2C
}

func (f *fakeMachineI2C) SetBaudRate(br uint32) error {
	f.baud = br
	return nil
}

func TestBus(t *testing.T) {
	f := &fakeI2C{}
	b := New(f, "")
	if b.String() != "tinygo-i2c" {
		t.Errorf("String()=%q", b.String())
	}
	if err := b.SetSpeed(100 * physic.KiloHertz); err == nil {
		t.Error("SetSpeed() should fail without SetBaudRate")
	}

	m := &fakeMachineI2C{}
	b = New(m, "I2C0")
	if err := b.SetSpeed(100 * physic.KiloHertz); err != nil {
		t.Fatal(err)
	}
	if m.baud != 100000 {
		t.Errorf("baud rate %d expected 100000", m.baud)
	}
	if err := b.SetSpeed(0); err == nil {
		t.Error("SetSpeed(0) accepted")
	}
}

func TestAM2320(t *testing.T) {
	// 45.0%RH
	f := &fakeI2C{resp: []byte{0x3, 0x2, 0x1, 0xc2, 0x21, 0xa1}}
	dev, err := am2320.NewI2C(New(f, "I2C0"), 0, &am2320.Opts{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatal(err)
	}
	h, err := dev.Humidity()
	if err != nil {
		t.Fatal(err)
	}
	if h != 45.0 {
		t.Errorf("Humidity()=%v expected 45.0", h)
	}
	if len(f.writes) != 3 || !bytes.Equal(f.writes[2], []byte{0x3, 0x0, 0x2}) {
		t.Errorf("unexpected writes %#v", f.writes)
	}
	if err := dev.Close(); err != nil {
		t.Fatal(err)
	}
}
