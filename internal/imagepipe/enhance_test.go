/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package imagepipe

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := imaging.New(w, h, c)
	return img
}

func TestAutocontrastStretchesRange(t *testing.T) {
	// Half dark gray, half light gray: the stretch should push the two
	// populations toward the extremes.
	img := image.NewNRGBA(image.Rect(0, 0, 2, 100))
	for y := 0; y < 100; y++ {
		img.SetNRGBA(0, y, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
		img.SetNRGBA(1, y, color.NRGBA{R: 160, G: 160, B: 160, A: 255})
	}
	out := autocontrast(img, 1.0)
	lo := out.NRGBAAt(0, 50)
	hi := out.NRGBAAt(1, 50)
	if lo.R >= 100 {
		t.Errorf("dark side not stretched down: %d", lo.R)
	}
	if hi.R <= 160 {
		t.Errorf("light side not stretched up: %d", hi.R)
	}
}

func TestAutocontrastFlatImageUnchanged(t *testing.T) {
	img := solid(4, 4, color.NRGBA{R: 120, G: 120, B: 120, A: 255})
	out := autocontrast(img, 1.0)
	if got := out.NRGBAAt(2, 2); got.R != 120 {
		t.Errorf("flat image changed: %v", got)
	}
}

func TestWhiteBalanceGainsAndClamp(t *testing.T) {
	img := solid(2, 2, color.NRGBA{R: 200, G: 100, B: 250, A: 255})
	out := whiteBalance(img, 1.5, 1.0, 1.5)
	got := out.NRGBAAt(0, 0)
	if got.R != 255 {
		t.Errorf("red not clamped at 255: %d", got.R)
	}
	if got.G != 100 {
		t.Errorf("unity gain changed green: %d", got.G)
	}
	if got.B != 255 {
		t.Errorf("blue not clamped: %d", got.B)
	}
}

func TestEnhanceCanvaKeepsDimensions(t *testing.T) {
	img := solid(8, 6, color.NRGBA{R: 90, G: 120, B: 150, A: 255})
	out := EnhanceCanva(img, DefaultEnhanceParams())
	if out.Bounds().Dx() != 8 || out.Bounds().Dy() != 6 {
		t.Errorf("dimensions changed: %v", out.Bounds())
	}
}

func TestApplyOrientationRotations(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	cases := map[int][2]int{
		1: {4, 2},
		3: {4, 2},
		6: {2, 4},
		8: {2, 4},
	}
	for orientation, want := range cases {
		out := applyOrientation(img, orientation)
		if out.Bounds().Dx() != want[0] || out.Bounds().Dy() != want[1] {
			t.Errorf("orientation %d: got %v, want %dx%d", orientation, out.Bounds(), want[0], want[1])
		}
	}
}

func TestWriteJPEGWithExifSplicesAPP1(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jpg")
	img := solid(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	exifBlock := []byte("Exif\x00\x00fakedata")

	if err := writeJPEGWithExif(path, img, exifBlock, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != 0xff || data[1] != 0xd8 {
		t.Fatal("missing SOI")
	}
	if data[2] != 0xff || data[3] != 0xe1 {
		t.Fatalf("APP1 marker not spliced after SOI: % x", data[2:4])
	}
	wantLen := 2 + len(exifBlock)
	if got := int(data[4])<<8 | int(data[5]); got != wantLen {
		t.Errorf("APP1 length = %d, want %d", got, wantLen)
	}
	if !bytes.Contains(data, exifBlock) {
		t.Error("exif payload missing")
	}
	// Still a decodable JPEG.
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("output not decodable: %v", err)
	}
}

func TestWriteJPEGWithoutExif(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jpg")
	img := solid(4, 4, color.NRGBA{A: 255})
	if err := writeJPEGWithExif(path, img, nil, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, _ := os.ReadFile(path)
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("output not decodable: %v", err)
	}
}
