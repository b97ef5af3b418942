/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package media

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
)

// Toolbox resolves the external ffmpeg and exiftool binaries once per
// process. Invocations are strictly sequential, so no locking is needed
// around the resolved paths.
type Toolbox struct {
	FFmpeg   string
	ExifTool string
}

// ResolveTools locates both binaries. An explicit override wins, then a
// sibling of the running executable (copied into a user-writable cache
// so a packaged read-only install still works), then PATH.
func ResolveTools(ffmpegOverride, exiftoolOverride string, logger zerolog.Logger) (*Toolbox, error) {
	ffmpeg, err := resolveTool("ffmpeg", ffmpegOverride, logger)
	if err != nil {
		return nil, err
	}
	exiftool, err := resolveTool("exiftool", exiftoolOverride, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("ffmpeg", ffmpeg).Str("exiftool", exiftool).Msg("external tools resolved")
	return &Toolbox{FFmpeg: ffmpeg, ExifTool: exiftool}, nil
}

// ResolveTool locates a single binary by the same rules, for commands
// that need only one of the pair.
func ResolveTool(name, override string, logger zerolog.Logger) (string, error) {
	return resolveTool(name, override, logger)
}

func resolveTool(name, override string, logger zerolog.Logger) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("configured %s path: %w", name, err)
		}
		return override, nil
	}

	if sibling := siblingTool(name); sibling != "" {
		if cached, err := cacheCopy(sibling, name); err == nil {
			return cached, nil
		} else {
			logger.Warn().Err(err).Str("tool", name).Msg("cache copy failed, using bundled binary in place")
			return sibling, nil
		}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found next to the executable or on PATH: %w", name, err)
	}
	return path, nil
}

// siblingTool looks for the binary next to the running executable.
func siblingTool(name string) string {
	self, err := os.Executable()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(filepath.Dir(self), name+exeSuffix())
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// cacheCopy mirrors a bundled binary into the user cache directory and
// returns the cached path. The copy is refreshed when sizes differ.
func cacheCopy(src, name string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "shopmedia", "tools")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, name+exeSuffix())

	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	if dstInfo, err := os.Stat(dst); err == nil && dstInfo.Size() == srcInfo.Size() {
		return dst, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
