// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termgauge draws a sensor reading as a horizontal bar on the
// terminal (stdout) using ANSI color codes.
//
// The bar goes from blue at the low end of the scale to red at the high end.
// When stdout is not a terminal a plain ASCII bar is printed instead.
package termgauge

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Opts represents the options available for a gauge.
type Opts struct {
	// Width is the length of the bar in cells.
	Width int
	// Min and Max are the values at both ends of the bar.
	Min, Max float64
	Palette  *ansi256.Palette

	_ struct{}
}

// DefaultOpts is a 40 cells wide gauge scaled from 0 to 100.
var DefaultOpts = Opts{Width: 40, Min: 0, Max: 100}

// Dev is a gauge rendered on a terminal line. Each Show overwrites the line.
type Dev struct {
	w       io.Writer
	color   bool
	width   int
	min     float64
	max     float64
	palette ansi256.Palette

	buf bytes.Buffer
}

var empty = color.NRGBA{R: 48, G: 48, B: 48, A: 255}

// New returns a Dev that displays on stdout.
func New(opts *Opts) (*Dev, error) {
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return NewWriter(colorable.NewColorableStdout(), tty, opts)
}

// NewWriter returns a Dev that writes to w, using colors only if color is
// true. The Opts can be nil.
func NewWriter(w io.Writer, color bool, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Width <= 0 {
		return nil, errors.New("termgauge: width must be positive")
	}
	if opts.Max <= opts.Min {
		return nil, fmt.Errorf("termgauge: invalid scale [%g, %g]", opts.Min, opts.Max)
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	return &Dev{
		w:       w,
		color:   color,
		width:   opts.Width,
		min:     opts.Min,
		max:     opts.Max,
		palette: *p,
	}, nil
}

func (d *Dev) String() string {
	return "TermGauge"
}

// Halt implements conn.Resource.
//
// It ends the gauge line and resets the terminal colors.
func (d *Dev) Halt() error {
	s := "\n"
	if d.color {
		s += "\033[0m"
	}
	_, err := io.WriteString(d.w, s)
	return err
}

// Show redraws the gauge with v. Values outside of the scale are clamped on
// the bar but printed as is.
func (d *Dev) Show(label string, v float64, unit string) error {
	n := d.filled(v)
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r")
	_, _ = fmt.Fprintf(&d.buf, "%-12s ", label)
	if d.color {
		_, _ = d.buf.WriteString("\033[0m")
		for i := 0; i < d.width; i++ {
			c := empty
			if i < n {
				c = d.cellColor(i)
			}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m")
	} else {
		_, _ = d.buf.WriteString("[" + strings.Repeat("#", n) + strings.Repeat("-", d.width-n) + "]")
	}
	_, _ = fmt.Fprintf(&d.buf, " %6.1f%s ", v, unit)
	_, err := d.buf.WriteTo(d.w)
	return err
}

// filled returns the number of lit cells for v.
func (d *Dev) filled(v float64) int {
	f := (v - d.min) / (d.max - d.min)
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return d.width
	}
	return int(f*float64(d.width) + 0.5)
}

// cellColor interpolates from blue to red along the bar.
func (d *Dev) cellColor(i int) color.NRGBA {
	f := 0.0
	if d.width > 1 {
		f = float64(i) / float64(d.width-1)
	}
	return color.NRGBA{R: uint8(255 * f), G: 0, B: uint8(255 * (1 - f)), A: 255}
}
