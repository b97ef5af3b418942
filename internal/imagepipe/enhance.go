/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package imagepipe

import (
	"image"

	"github.com/disintegration/imaging"
)

// EnhanceParams are the tunable factors of the canva preset. All are
// PIL-style multiplicative factors (1.0 = identity) except Gamma, which
// feeds the midtone lift directly.
type EnhanceParams struct {
	Brightness float64 `yaml:"brightness"`
	Contrast   float64 `yaml:"contrast"`
	Saturation float64 `yaml:"saturation"`
	Sharpness  float64 `yaml:"sharpness"`
	Gamma      float64 `yaml:"gamma"`
	RGain      float64 `yaml:"r_gain"`
	GGain      float64 `yaml:"g_gain"`
	BGain      float64 `yaml:"b_gain"`
}

// DefaultEnhanceParams are tuned for indoor product shots.
func DefaultEnhanceParams() EnhanceParams {
	return EnhanceParams{
		Brightness: 1.03,
		Contrast:   1.06,
		Saturation: 1.08,
		Sharpness:  1.08,
		Gamma:      0.98,
		RGain:      1.02,
		GGain:      1.00,
		BGain:      0.98,
	}
}

// EnhanceCanva applies the ordered tonal pipeline: autocontrast with a
// 1% clipping margin, gamma midtone lift, the four enhancement factors,
// then per-channel white balance gains clamped at channel max.
func EnhanceCanva(img image.Image, p EnhanceParams) *image.NRGBA {
	out := autocontrast(imaging.Clone(img), 1.0)
	out = imaging.AdjustGamma(out, p.Gamma)
	out = imaging.AdjustBrightness(out, (p.Brightness-1)*100)
	out = imaging.AdjustContrast(out, (p.Contrast-1)*100)
	out = imaging.AdjustSaturation(out, (p.Saturation-1)*100)
	if p.Sharpness > 1 {
		out = imaging.Sharpen(out, (p.Sharpness-1)*10)
	}
	return whiteBalance(out, p.RGain, p.GGain, p.BGain)
}

// autocontrast stretches each channel's histogram to full range after
// clipping cutoffPct percent of pixels at both ends, so isolated
// outliers cannot blow out highlights or shadows. No library in use
// offers a cutoff-aware autocontrast, hence the local implementation.
func autocontrast(img *image.NRGBA, cutoffPct float64) *image.NRGBA {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return img
	}

	var hist [3][256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[(y-bounds.Min.Y)*img.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			px := row[x*4:]
			hist[0][px[0]]++
			hist[1][px[1]]++
			hist[2][px[2]]++
		}
	}

	cut := int(float64(total) * cutoffPct / 100.0)
	var lut [3][256]uint8
	for c := 0; c < 3; c++ {
		lo, hi := clipRange(hist[c], cut)
		buildStretchLUT(&lut[c], lo, hi)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[(y-bounds.Min.Y)*img.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			px := row[x*4:]
			px[0] = lut[0][px[0]]
			px[1] = lut[1][px[1]]
			px[2] = lut[2][px[2]]
		}
	}
	return img
}

// clipRange finds the lowest and highest levels still populated after
// discarding cut pixels from each end of the histogram.
func clipRange(hist [256]int, cut int) (int, int) {
	lo, hi := 0, 255
	for n := cut; lo < 255; lo++ {
		if n -= hist[lo]; n < 0 {
			break
		}
	}
	for n := cut; hi > 0; hi-- {
		if n -= hist[hi]; n < 0 {
			break
		}
	}
	if lo >= hi {
		return 0, 255
	}
	return lo, hi
}

func buildStretchLUT(lut *[256]uint8, lo, hi int) {
	scale := 255.0 / float64(hi-lo)
	for i := 0; i < 256; i++ {
		v := float64(i-lo) * scale
		switch {
		case v < 0:
			lut[i] = 0
		case v > 255:
			lut[i] = 255
		default:
			lut[i] = uint8(v + 0.5)
		}
	}
}

// whiteBalance multiplies each channel by its gain, clamping at 255.
func whiteBalance(img *image.NRGBA, rGain, gGain, bGain float64) *image.NRGBA {
	if rGain == 1.0 && gGain == 1.0 && bGain == 1.0 {
		return img
	}
	var rLut, gLut, bLut [256]uint8
	for i := 0; i < 256; i++ {
		rLut[i] = clamp255(float64(i) * rGain)
		gLut[i] = clamp255(float64(i) * gGain)
		bLut[i] = clamp255(float64(i) * bGain)
	}
	bounds := img.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			px := row[x*4:]
			px[0] = rLut[px[0]]
			px[1] = gLut[px[1]]
			px[2] = bLut[px[2]]
		}
	}
	return img
}

func clamp255(v float64) uint8 {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}
