/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package imagepipe

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/jdeng/goheif"
	"github.com/rs/zerolog"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/friendsincode/shopmedia/internal/naming"
)

// Preset selects the tonal treatment applied after HEIC decode.
type Preset string

const (
	PresetNone  Preset = "none"
	PresetCanva Preset = "canva"
)

// Options configure a conversion pass.
type Options struct {
	ResizeWidth int // 0 disables resizing
	Preset      Preset
	Params      EnhanceParams
}

// Converter turns HEIC input into enhanced, maximum-quality JPEG.
type Converter struct {
	logger zerolog.Logger
}

func NewConverter(logger zerolog.Logger) *Converter {
	return &Converter{logger: logger}
}

// ConvertDir converts every .heic file directly under inDir into outDir,
// keeping the source stem. Per-file failures are logged and skipped so
// one corrupt capture cannot sink the folder.
func (c *Converter) ConvertDir(ctx context.Context, inDir, outDir string, opts Options) error {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return fmt.Errorf("read input dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".heic") {
			continue
		}
		src := filepath.Join(inDir, e.Name())
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		dst := filepath.Join(outDir, stem+".jpg")
		if _, err := os.Stat(dst); err == nil {
			// A previous pass already produced this stem.
			dst = naming.NextAvailable(outDir, stem, ".jpg")
		}
		if err := c.ConvertFile(ctx, src, dst, opts); err != nil {
			c.logger.Error().Err(err).Str("file", src).Msg("image conversion failed, skipping")
			continue
		}
		c.logger.Info().Str("from", e.Name()).Str("to", filepath.Base(dst)).Msg("converted")
	}
	return nil
}

// ConvertFile decodes one HEIC file, applies orientation, preset and
// resize, and writes a JPEG carrying the source EXIF block and ICC
// profile when present.
func (c *Converter) ConvertFile(ctx context.Context, src, dst string, opts Options) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	img, err := goheif.Decode(f)
	if err != nil {
		return fmt.Errorf("heic decode: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	exifData, err := goheif.ExtractExif(f)
	if err != nil {
		exifData = nil // orientation defaults to upright, EXIF is dropped
	}

	var iccData []byte
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		iccData = extractICC(f)
	}

	oriented := applyOrientation(img, orientationOf(exifData))

	var out image.Image = oriented
	if opts.Preset == PresetCanva {
		out = EnhanceCanva(oriented, opts.Params)
	}
	if opts.ResizeWidth > 0 {
		out = imaging.Resize(out, opts.ResizeWidth, 0, imaging.Lanczos)
	}

	return writeJPEGWithExif(dst, out, exifData, iccData)
}

// orientationOf reads the EXIF orientation tag, returning 1 (upright)
// when absent or unreadable.
func orientationOf(exifData []byte) int {
	if len(exifData) == 0 {
		return 1
	}
	tiff := exifData
	if bytes.HasPrefix(tiff, []byte("Exif\x00\x00")) {
		tiff = tiff[6:]
	}
	x, err := exif.Decode(bytes.NewReader(tiff))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// applyOrientation maps the eight EXIF orientation values onto their
// transforms.
func applyOrientation(img image.Image, orientation int) *image.NRGBA {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return imaging.Clone(img)
	}
}

// writeJPEGWithExif encodes img at maximum quality and splices the raw
// EXIF block back in as an APP1 segment right after SOI, followed by
// the ICC profile as APP2 ICC_PROFILE segments when present.
func writeJPEGWithExif(path string, img image.Image, exifData, iccData []byte) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		return fmt.Errorf("jpeg encode: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer f.Close()

	data := buf.Bytes()
	if (len(exifData) > 0 || len(iccData) > 0) && len(data) > 2 {
		if _, err := f.Write(data[:2]); err != nil { // SOI
			return err
		}
		if len(exifData) > 0 {
			if err := writeSegment(f, 0xe1, exifData); err != nil {
				return err
			}
		}
		if len(iccData) > 0 {
			if err := writeICCSegments(f, iccData); err != nil {
				return err
			}
		}
		data = data[2:]
	}
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Close()
}

// writeSegment emits one JPEG marker segment; the two-byte length field
// covers itself plus the payload.
func writeSegment(w io.Writer, marker byte, payload []byte) error {
	markerLen := 2 + len(payload)
	header := []byte{0xff, marker, byte(markerLen >> 8), byte(markerLen & 0xff)}
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// iccChunkSize is the profile payload per APP2 segment after the
// ICC_PROFILE identifier and the two chunk counters.
const iccChunkSize = 65519

// writeICCSegments splits the profile across numbered APP2 segments per
// the ICC embedding convention. Chunk counts are single bytes; real
// profiles are a few KB, so an overflow means garbage input.
func writeICCSegments(w io.Writer, icc []byte) error {
	count := (len(icc) + iccChunkSize - 1) / iccChunkSize
	if count > 255 {
		return fmt.Errorf("ICC profile too large: %d bytes", len(icc))
	}
	for i := 0; i < count; i++ {
		chunk := icc[i*iccChunkSize:]
		if len(chunk) > iccChunkSize {
			chunk = chunk[:iccChunkSize]
		}
		payload := make([]byte, 0, 14+len(chunk))
		payload = append(payload, "ICC_PROFILE\x00"...)
		payload = append(payload, byte(i+1), byte(count))
		payload = append(payload, chunk...)
		if err := writeSegment(w, 0xe2, payload); err != nil {
			return err
		}
	}
	return nil
}
