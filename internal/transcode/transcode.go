/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ErrToolInvocation marks a failed or missing ffmpeg run. Per-item, the
// batch swallows it and records the outcome.
var ErrToolInvocation = errors.New("encoder invocation failed")

// ErrExists is returned when the destination is already present and the
// overwrite flag is off. No work has been performed.
var ErrExists = errors.New("destination exists")

// Spec carries the resolved parameters for one encode. Width/Height of 0
// mean unset; the unset dimension is derived by ffmpeg preserving aspect.
type Spec struct {
	Width  int
	Height int

	CRF    int
	Preset string
	VCodec string
	ACodec string
	// ABitrate is the audio bitrate string passed through, e.g. "160k".
	ABitrate string

	// Identity values: Brightness 0, Contrast/Saturation/Gamma 1.
	Brightness float64
	Contrast   float64
	Saturation float64
	Gamma      float64

	StripMetadata bool
	Container     string // target container, e.g. "mp4"; empty keeps the output extension
	Overwrite     bool
}

// DefaultSpec mirrors the tool's stock encode settings.
func DefaultSpec() Spec {
	return Spec{
		CRF:           17,
		Preset:        "slow",
		VCodec:        "libx264",
		ACodec:        "aac",
		ABitrate:      "160k",
		Contrast:      1.0,
		Saturation:    1.0,
		Gamma:         1.0,
		StripMetadata: true,
		Container:     "mp4",
	}
}

// hasColorAdjust reports whether any color factor differs from identity.
func (s Spec) hasColorAdjust() bool {
	return s.Brightness != 0.0 || s.Contrast != 1.0 || s.Saturation != 1.0 || s.Gamma != 1.0
}

// containerFor resolves the effective container: explicit spec value or
// the output path's extension.
func containerFor(out string, s Spec) string {
	if s.Container != "" {
		return strings.ToLower(s.Container)
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(out), "."))
}

// isFastStartFamily reports whether the container takes +faststart.
func isFastStartFamily(container string) bool {
	switch container {
	case "mp4", "mov", "m4v":
		return true
	}
	return false
}

// BuildArgs assembles the ffmpeg argument list for one encode. Metadata
// is never written here; stripping happens before the mappings so the
// later exiftool pass starts from a clean container.
func BuildArgs(in, out string, s Spec) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-stats", "-i", in}

	if s.StripMetadata {
		args = append(args, "-map_metadata", "-1", "-map_chapters", "-1")
	}

	// Video and audio elementary streams only; subtitles and data
	// streams are dropped.
	args = append(args, "-map", "0:v?", "-map", "0:a?")

	args = append(args, "-c:v", s.VCodec, "-preset", s.Preset, "-crf", strconv.Itoa(s.CRF))

	if vf := filterGraph(s); vf != "" {
		args = append(args, "-vf", vf)
	}

	args = append(args, "-c:a", s.ACodec, "-b:a", s.ABitrate)

	if isFastStartFamily(containerFor(out, s)) {
		args = append(args, "-movflags", "+faststart")
	}

	return append(args, out)
}

// filterGraph builds the -vf value: an eq stage when any color factor is
// non-identity, then a lanczos scale stage when a dimension is set. When
// only one dimension is given the other is -2; when both are given,
// height yields so the aspect ratio is preserved.
func filterGraph(s Spec) string {
	var stages []string
	if s.hasColorAdjust() {
		stages = append(stages, fmt.Sprintf("eq=brightness=%g:contrast=%g:saturation=%g:gamma=%g",
			s.Brightness, s.Contrast, s.Saturation, s.Gamma))
	}
	if s.Width > 0 || s.Height > 0 {
		w, h := -2, -2
		if s.Width > 0 {
			w = s.Width
		}
		if s.Height > 0 {
			h = s.Height
		}
		if s.Width > 0 && s.Height > 0 {
			h = -2
		}
		stages = append(stages, fmt.Sprintf("scale=%d:%d:flags=lanczos", w, h))
	}
	return strings.Join(stages, ",")
}

// Transcoder runs ffmpeg encodes.
type Transcoder struct {
	bin    string
	logger zerolog.Logger
}

// New returns a Transcoder invoking the given ffmpeg binary.
func New(bin string, logger zerolog.Logger) *Transcoder {
	return &Transcoder{bin: bin, logger: logger}
}

// Run encodes in into out per spec. When out already exists and the
// overwrite flag is off it returns ErrExists without touching anything.
// Encoder failures come back wrapped in ErrToolInvocation with the full
// command line logged for reproduction.
func (t *Transcoder) Run(ctx context.Context, in, out string, spec Spec) error {
	if !spec.Overwrite {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, out)
		}
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	args := BuildArgs(in, out, spec)
	cmd := exec.CommandContext(ctx, t.bin, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	t.logger.Debug().Str("input", in).Str("output", out).Msg("encoding")
	if err := cmd.Run(); err != nil {
		t.logger.Error().
			Err(err).
			Str("cmd", t.bin+" "+strings.Join(args, " ")).
			Msg("ffmpeg failed")
		return fmt.Errorf("%w: %v", ErrToolInvocation, err)
	}
	return nil
}
