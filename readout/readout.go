// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package readout renders temperature and humidity readings into an image,
// ready to be sent to a periph display.Drawer such as an OLED or e-paper
// panel.
package readout

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/display"
)

// Opts represents the rendering options.
type Opts struct {
	// Size is the font size in points. 0 picks a size that fits two lines.
	Size       float64
	Foreground color.Color
	Background color.Color
}

// DefaultOpts draws black text on white.
var DefaultOpts = Opts{
	Foreground: color.Black,
	Background: color.White,
}

var (
	fontOnce sync.Once
	font     *truetype.Font
	fontErr  error
)

func regular() (*truetype.Font, error) {
	fontOnce.Do(func() {
		font, fontErr = truetype.Parse(goregular.TTF)
	})
	return font, fontErr
}

// Render returns an image of size bounds showing temperature (°C) and
// humidity (%RH) on two lines. The Opts can be nil.
func Render(bounds image.Rectangle, temperature, humidity float64, opts *Opts) (image.Image, error) {
	if bounds.Empty() {
		return nil, errors.New("readout: empty bounds")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	f, err := regular()
	if err != nil {
		return nil, fmt.Errorf("readout: %w", err)
	}
	w, h := bounds.Dx(), bounds.Dy()
	size := opts.Size
	if size <= 0 {
		// Two lines with some spacing; a point is one pixel at 72 DPI.
		size = float64(h) / 2.6
	}

	fg, bg := opts.Foreground, opts.Background
	if fg == nil {
		fg = DefaultOpts.Foreground
	}
	if bg == nil {
		bg = DefaultOpts.Background
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(bg)
	dc.Clear()
	dc.SetColor(fg)
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: size}))
	dc.DrawStringAnchored(fmt.Sprintf("%.1f°C", temperature), float64(w)/2, float64(h)/4, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.1f%%RH", humidity), float64(w)/2, 3*float64(h)/4, 0.5, 0.5)
	return dc.Image(), nil
}

// Draw renders the readings to fill d.
func Draw(d display.Drawer, temperature, humidity float64, opts *Opts) error {
	r := d.Bounds()
	img, err := Render(r, temperature, humidity, opts)
	if err != nil {
		return err
	}
	return d.Draw(r, img, image.Point{})
}

// SavePNG writes img as a PNG file.
func SavePNG(path string, img image.Image) error {
	return gg.SavePNG(path, img)
}
