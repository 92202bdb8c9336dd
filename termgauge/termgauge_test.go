// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package termgauge

import (
	"bytes"
	"strings"
	"testing"
)

func TestShowPlain(t *testing.T) {
	var b bytes.Buffer
	d, err := NewWriter(&b, false, &Opts{Width: 10, Min: 0, Max: 100})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Show("humidity", 45.0, "%"); err != nil {
		t.Fatal(err)
	}
	s := b.String()
	if !strings.Contains(s, "[#####-----]") {
		t.Errorf("unexpected bar %q", s)
	}
	if !strings.Contains(s, "45.0%") {
		t.Errorf("value missing from %q", s)
	}
	if strings.Contains(s, "\033") {
		t.Errorf("escape codes in plain output %q", s)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
}

func TestShowColor(t *testing.T) {
	var b bytes.Buffer
	d, err := NewWriter(&b, true, &Opts{Width: 4, Min: -40, Max: 80})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Show("temperature", 200, "C"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "\033[") {
		t.Errorf("no escape codes in color output %q", b.String())
	}
	if d.String() != "TermGauge" {
		t.Errorf("String()=%q", d.String())
	}
}

func TestFilled(t *testing.T) {
	d, err := NewWriter(&bytes.Buffer{}, false, &Opts{Width: 20, Min: -40, Max: 80})
	if err != nil {
		t.Fatal(err)
	}
	var tests = []struct {
		v float64
		n int
	}{
		{v: -100, n: 0},
		{v: -40, n: 0},
		{v: 20, n: 10},
		{v: 80, n: 20},
		{v: 3276.7, n: 20},
	}
	for _, test := range tests {
		if n := d.filled(test.v); n != test.n {
			t.Errorf("filled(%v)=%d expected %d", test.v, n, test.n)
		}
	}
}

func TestInvalid(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, false, &Opts{Width: 0, Max: 1}); err == nil {
		t.Error("accepted a zero width")
	}
	if _, err := NewWriter(&bytes.Buffer{}, false, &Opts{Width: 1, Min: 1, Max: 1}); err == nil {
		t.Error("accepted an empty scale")
	}
}

func TestNilOpts(t *testing.T) {
	var buf bytes.Buffer
	d, err := NewWriter(&buf, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.width != DefaultOpts.Width || d.min != DefaultOpts.Min || d.max != DefaultOpts.Max {
		t.Errorf("nil Opts did not select the defaults: %d [%g, %g]", d.width, d.min, d.max)
	}
	if n := d.filled(50); n != 20 {
		t.Errorf("filled(50)=%d expected 20", n)
	}
}
