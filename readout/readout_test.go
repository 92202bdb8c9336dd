// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package readout

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"periph.io/x/conn/v3/display/displaytest"
)

// inked counts the pixels that are not the background.
func inked(img image.Image, bg color.Color) int {
	br, bgg, bb, _ := bg.RGBA()
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != br || g != bgg || bl != bb {
				n++
			}
		}
	}
	return n
}

func TestRender(t *testing.T) {
	img, err := Render(image.Rect(0, 0, 128, 64), 23.9, 34.8, nil)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 128 || b.Dy() != 64 {
		t.Errorf("unexpected bounds %v", b)
	}
	if inked(img, color.White) == 0 {
		t.Error("no text was drawn")
	}
	if _, err := Render(image.Rectangle{}, 0, 0, nil); err == nil {
		t.Error("Render() accepted empty bounds")
	}
}

func TestDraw(t *testing.T) {
	d := &displaytest.Drawer{Img: image.NewNRGBA(image.Rect(0, 0, 250, 122))}
	opts := &Opts{Size: 24, Foreground: color.White, Background: color.Black}
	if err := Draw(d, -10.1, 99.9, opts); err != nil {
		t.Fatal(err)
	}
	if inked(d.Img, color.Black) == 0 {
		t.Error("nothing was drawn on the display")
	}
}

func TestSavePNG(t *testing.T) {
	img, err := Render(image.Rect(0, 0, 64, 32), 25, 45, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "readout.png")
	if err := SavePNG(path, img); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds %v expected %v", got.Bounds(), img.Bounds())
	}
}
