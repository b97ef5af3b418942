/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package mergetool consolidates duplicate shoot folders: subfolders
// present under BOTH parents are unioned into a destination. Folders
// unique to one side are deliberately left untouched.
package mergetool

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/friendsincode/shopmedia/internal/naming"
)

// Mode selects whether sources survive the merge.
type Mode string

const (
	ModeCopy Mode = "copy"
	ModeMove Mode = "move"
)

// ConflictPolicy governs same-destination-path collisions.
type ConflictPolicy string

const (
	ConflictOverwrite ConflictPolicy = "overwrite"
	ConflictSkip      ConflictPolicy = "skip"
	ConflictRename    ConflictPolicy = "rename"
)

// ErrConfig marks unusable parents or destination.
var ErrConfig = errors.New("merge configuration error")

// Stats summarizes one merge pass.
type Stats struct {
	CommonFolders int
	Transferred   int
	Skipped       int
	Errors        int
}

// MergeCommon unions the common immediate subfolders of parentA and
// parentB into dest/<name>/<relative-path>. Per-file failures are
// logged and counted, never fatal to the pass.
func MergeCommon(parentA, parentB, dest string, mode Mode, policy ConflictPolicy, logger zerolog.Logger) (Stats, error) {
	var stats Stats
	for _, p := range []string{parentA, parentB} {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			return stats, fmt.Errorf("%w: parent %q is not a directory", ErrConfig, p)
		}
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return stats, fmt.Errorf("%w: destination: %v", ErrConfig, err)
	}

	common, err := commonSubdirs(parentA, parentB)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if len(common) == 0 {
		logger.Info().Msg("no common subfolders, nothing to merge")
		return stats, nil
	}
	stats.CommonFolders = len(common)
	logger.Info().Strs("folders", common).Msg("merging common subfolders")

	for _, name := range common {
		for _, side := range []string{parentA, parentB} {
			mergeTree(filepath.Join(side, name), filepath.Join(dest, name), mode, policy, &stats, logger)
		}
	}
	return stats, nil
}

// commonSubdirs returns the sorted intersection of immediate subdirectory
// names.
func commonSubdirs(parentA, parentB string) ([]string, error) {
	names := func(parent string) (map[string]bool, error) {
		entries, err := os.ReadDir(parent)
		if err != nil {
			return nil, err
		}
		set := map[string]bool{}
		for _, e := range entries {
			if e.IsDir() {
				set[e.Name()] = true
			}
		}
		return set, nil
	}

	a, err := names(parentA)
	if err != nil {
		return nil, err
	}
	b, err := names(parentB)
	if err != nil {
		return nil, err
	}

	var common []string
	for name := range a {
		if b[name] {
			common = append(common, name)
		}
	}
	sort.Strings(common)
	return common, nil
}

func mergeTree(srcDir, dstDir string, mode Mode, policy ConflictPolicy, stats *Stats, logger zerolog.Logger) {
	_ = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("merge: unreadable entry")
			stats.Errors++
			return nil
		}
		rel, relErr := filepath.Rel(srcDir, path)
		if relErr != nil {
			return nil
		}
		target := filepath.Join(dstDir, rel)
		if d.IsDir() {
			if mkErr := os.MkdirAll(target, 0o755); mkErr != nil {
				logger.Warn().Err(mkErr).Str("dir", target).Msg("merge: mkdir failed")
				stats.Errors++
			}
			return nil
		}

		done, final, tErr := transferFile(path, target, mode, policy)
		switch {
		case tErr != nil:
			logger.Warn().Err(tErr).Str("src", path).Msg("merge: transfer failed")
			stats.Errors++
		case done:
			stats.Transferred++
			logger.Debug().Str("src", path).Str("dst", final).Str("mode", string(mode)).Msg("merged")
		default:
			stats.Skipped++
			logger.Info().Str("src", path).Str("dst", target).Msg("merge: conflict, skipped")
		}
		return nil
	})
}

// transferFile copies or moves src to dst honoring the conflict policy.
// Rename appends _2, _3, … before the extension until a free name is
// found, so a pre-existing destination file is never replaced.
func transferFile(src, dst string, mode Mode, policy ConflictPolicy) (bool, string, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, dst, err
	}

	target := dst
	if _, err := os.Stat(dst); err == nil {
		switch policy {
		case ConflictOverwrite:
			// fall through, replace
		case ConflictRename:
			target = naming.ResolveCollision(dst)
		default:
			return false, dst, nil
		}
	}

	if mode == ModeMove {
		if err := os.Rename(src, target); err == nil {
			return true, target, nil
		}
		// Cross-device move: copy then remove.
		if err := copyFile(src, target); err != nil {
			return false, target, err
		}
		return true, target, os.Remove(src)
	}
	if err := copyFile(src, target); err != nil {
		return false, target, err
	}
	return true, target, nil
}

// copyFile writes through a temp sibling and renames into place so a
// failure mid-copy cannot leave a truncated destination.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".merge-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
