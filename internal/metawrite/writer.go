/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package metawrite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/shopmedia/internal/media"
)

// ErrToolInvocation marks a failed or missing exiftool run.
var ErrToolInvocation = errors.New("metadata tool invocation failed")

// Writer drives exiftool to clear and rewrite per-file metadata.
type Writer struct {
	bin    string
	logger zerolog.Logger
}

// New returns a Writer invoking the given exiftool binary.
func New(bin string, logger zerolog.Logger) *Writer {
	return &Writer{bin: bin, logger: logger}
}

// commonArgs is the invocation preamble shared by every write.
func commonArgs() []string {
	return []string{
		"-m", "-overwrite_original",
		"-charset", "UTF8", "-charset", "filename=UTF8",
		"-sep", ", ",
	}
}

// BuildVideoArgs assembles the clear-then-set argument list for a video
// container. Pre-existing fields relevant to the family are always
// cleared first so stale source tags cannot leak into the output.
func BuildVideoArgs(path, container string, spec Spec) []string {
	family := FamilyFor(container)
	tags := cleanTags(spec.Tags)
	joined := joinTags(spec.Tags)

	args := commonArgs()

	switch family {
	case FamilyMP4:
		args = append(args,
			"-ItemList:Title=", "-QuickTime:Title=",
			"-Comment=", "-ItemList:Comment=",
			"-Keys:Keywords=", "-XMP-dc:Subject=",
			"-XMP-xmp:Rating=",
			"-Xtra:Title=", "-Xtra:Keywords=", "-Xtra:Rating=",
		)
	default:
		args = append(args,
			"-Title=", "-Genre=", "-Comment=",
			"-XMP-dc:Subject=", "-XMP-xmp:Rating=",
		)
		if family == FamilyASF {
			args = append(args, "-RatingPercent=", "-XMP-microsoft:RatingPercent=")
		}
	}

	if spec.Title != "" {
		if family == FamilyMP4 {
			args = append(args,
				"-ItemList:Title="+spec.Title,
				"-QuickTime:Title="+spec.Title,
				"-XMP:Title="+spec.Title,
				"-Xtra:Title="+spec.Title,
			)
		} else {
			args = append(args, "-Title="+spec.Title, "-XMP:Title="+spec.Title)
		}
	}

	if len(tags) > 0 {
		if family == FamilyMP4 {
			args = append(args,
				"-Keys:Keywords="+joined,
				"-XMP-dc:Subject="+joined,
				"-Xtra:Keywords="+joined,
			)
		} else {
			args = append(args, "-Comment="+joined)
			// Repeated single values keep the multi-value semantics of
			// the XMP bag intact.
			for _, t := range tags {
				args = append(args, "-XMP-dc:Subject="+t)
			}
			if family != FamilyASF {
				args = append(args, "-Genre="+joined)
			}
		}
	}

	pct := strconv.Itoa(RatingPercent(spec.Rating))
	if family == FamilyASF {
		args = append(args, "-RatingPercent="+pct, "-XMP-microsoft:RatingPercent="+pct)
	} else {
		args = append(args,
			"-XMP-xmp:Rating="+strconv.Itoa(spec.Rating),
			"-Xtra:Rating="+pct,
			"-Keys:UserRating="+strconv.Itoa(spec.Rating),
		)
	}

	return append(args, path)
}

// BuildImageArgs assembles the argument list for a JPEG output: wipe
// everything, then write title, subject and rating plus the Xtra twins
// desktop shells read.
func BuildImageArgs(path string, spec Spec) []string {
	tags := cleanTags(spec.Tags)
	joined := joinTags(spec.Tags)

	args := append(commonArgs(), "-all=", "-P")
	if spec.Title != "" {
		args = append(args, "-XMP:Title="+spec.Title, "-Xtra:Title="+spec.Title)
	}
	if len(tags) > 0 {
		args = append(args, "-XMP-dc:Subject="+joined, "-Xtra:Keywords="+joined)
		for _, t := range tags {
			args = append(args, "-XMP-dc:Subject="+t)
		}
	}
	args = append(args,
		"-XMP-xmp:Rating="+strconv.Itoa(spec.Rating),
		"-Xtra:Rating="+strconv.Itoa(RatingPercent(spec.Rating)),
	)
	return append(args, path)
}

// Write clears and rewrites the metadata of path according to its media
// kind. The container family is derived from the file extension for
// videos. After exiftool succeeds a best-effort platform property-store
// write runs; its failure is logged and ignored.
func (w *Writer) Write(ctx context.Context, path string, kind media.Kind, spec Spec) error {
	var args []string
	if kind == media.KindImage {
		args = BuildImageArgs(path, spec)
	} else {
		args = BuildVideoArgs(path, containerOf(path), spec)
	}

	if err := w.run(ctx, args); err != nil {
		return err
	}

	if err := writePlatformProps(path, spec); err != nil {
		if !errors.Is(err, errPropsUnsupported) {
			w.logger.Warn().Err(err).Str("path", path).Msg("platform property store write failed")
		}
	}

	// Refresh mtime so shells notice the change.
	now := time.Now()
	_ = os.Chtimes(path, now, now)
	return nil
}

// RemoveAll strips every metadata field from path.
func (w *Writer) RemoveAll(ctx context.Context, path string) error {
	args := append(commonArgs(), "-all=", path)
	return w.run(ctx, args)
}

func (w *Writer) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, w.bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		w.logger.Error().
			Err(err).
			Str("cmd", w.bin+" "+strings.Join(args, " ")).
			Str("output", strings.TrimSpace(string(out))).
			Msg("exiftool failed")
		return fmt.Errorf("%w: %v", ErrToolInvocation, err)
	}
	return nil
}

func containerOf(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return strings.ToLower(path[i+1:])
	}
	return ""
}
