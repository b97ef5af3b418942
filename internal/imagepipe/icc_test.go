/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package imagepipe

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func isoBox(boxType string, parts ...[]byte) []byte {
	var body []byte
	for _, p := range parts {
		body = append(body, p...)
	}
	out := make([]byte, 8+len(body))
	binary.BigEndian.PutUint32(out[:4], uint32(8+len(body)))
	copy(out[4:8], boxType)
	copy(out[8:], body)
	return out
}

func heifWithColr(colourType string, profile []byte) []byte {
	colr := isoBox("colr", []byte(colourType), profile)
	meta := isoBox("meta",
		[]byte{0, 0, 0, 0}, // full box version and flags
		isoBox("hdlr", make([]byte, 24)),
		isoBox("iprp",
			isoBox("ipco",
				isoBox("ispe", make([]byte, 12)),
				colr,
			),
		),
	)
	var out []byte
	out = append(out, isoBox("ftyp", []byte("heic"), make([]byte, 8))...)
	out = append(out, meta...)
	out = append(out, isoBox("mdat", []byte("pixels"))...)
	return out
}

func TestExtractICCProfile(t *testing.T) {
	profile := []byte("display-p3-profile-payload")
	got := extractICC(bytes.NewReader(heifWithColr("prof", profile)))
	if !bytes.Equal(got, profile) {
		t.Fatalf("extracted %q, want %q", got, profile)
	}

	got = extractICC(bytes.NewReader(heifWithColr("rICC", profile)))
	if !bytes.Equal(got, profile) {
		t.Fatalf("rICC: extracted %q, want %q", got, profile)
	}
}

func TestExtractICCIgnoresNclx(t *testing.T) {
	if got := extractICC(bytes.NewReader(heifWithColr("nclx", []byte{0, 1, 0, 1, 0, 1, 0}))); got != nil {
		t.Fatalf("nclx colr yielded %q", got)
	}
}

func TestExtractICCMalformedInput(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("short"),
		isoBox("ftyp", []byte("heic")),
		isoBox("meta", []byte{0, 0, 0, 0}),
	} {
		if got := extractICC(bytes.NewReader(data)); got != nil {
			t.Errorf("input % x yielded %q", data, got)
		}
	}
}

func TestWriteJPEGWithICCProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jpg")
	img := solid(4, 4, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	exifBlock := []byte("Exif\x00\x00fakedata")
	profile := []byte("icc-bytes")

	if err := writeJPEGWithExif(path, img, exifBlock, profile); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// APP2 follows the EXIF APP1 and carries the marked profile.
	app1End := 6 + len(exifBlock)
	if data[app1End] != 0xff || data[app1End+1] != 0xe2 {
		t.Fatalf("APP2 marker not after APP1: % x", data[app1End:app1End+2])
	}
	segment := data[app1End+4:]
	if !bytes.HasPrefix(segment, []byte("ICC_PROFILE\x00")) {
		t.Fatal("ICC_PROFILE identifier missing")
	}
	if segment[12] != 1 || segment[13] != 1 {
		t.Errorf("chunk counters = %d/%d, want 1/1", segment[12], segment[13])
	}
	if !bytes.Contains(data, profile) {
		t.Error("profile payload missing")
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("output not decodable: %v", err)
	}
}

func TestWriteICCSegmentsChunksLargeProfile(t *testing.T) {
	profile := bytes.Repeat([]byte{0xab}, iccChunkSize+100)
	var buf bytes.Buffer
	if err := writeICCSegments(&buf, profile); err != nil {
		t.Fatalf("write: %v", err)
	}
	data := buf.Bytes()

	if data[0] != 0xff || data[1] != 0xe2 {
		t.Fatal("first chunk marker missing")
	}
	if data[16] != 1 || data[17] != 2 {
		t.Errorf("first chunk counters = %d/%d, want 1/2", data[16], data[17])
	}

	secondAt := 4 + 14 + iccChunkSize
	if data[secondAt] != 0xff || data[secondAt+1] != 0xe2 {
		t.Fatal("second chunk marker missing")
	}
	if data[secondAt+16] != 2 || data[secondAt+17] != 2 {
		t.Errorf("second chunk counters = %d/%d, want 2/2", data[secondAt+16], data[secondAt+17])
	}
	if wantTotal := 2*(4+14) + len(profile); len(data) != wantTotal {
		t.Errorf("total bytes = %d, want %d", len(data), wantTotal)
	}
}
