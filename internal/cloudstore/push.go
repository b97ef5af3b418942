/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package cloudstore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// PushStats summarizes a bulk upload.
type PushStats struct {
	Folders  int
	Uploaded int
	Failed   int
}

// PushTree uploads a finished output tree: every top-level directory of
// srcRoot becomes a store folder holding that subtree's files, flat.
// Files sitting directly in srcRoot go to the store root. Per-file
// failures are logged and counted; the pass always continues.
func PushTree(ctx context.Context, store Store, srcRoot string, logger zerolog.Logger) PushStats {
	var stats PushStats

	entries, err := os.ReadDir(srcRoot)
	if err != nil {
		logger.Error().Err(err).Str("src", srcRoot).Msg("cannot read source root")
		stats.Failed++
		return stats
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			logger.Warn().Msg("push cancelled")
			return stats
		}

		full := filepath.Join(srcRoot, entry.Name())
		if !entry.IsDir() {
			pushFile(ctx, store, full, "", &stats, logger)
			continue
		}

		folderID, err := store.CreateFolder(ctx, entry.Name(), "")
		if err != nil {
			logger.Error().Err(err).Str("folder", entry.Name()).Msg("cannot create remote folder")
			stats.Failed++
			continue
		}
		stats.Folders++

		walkErr := filepath.WalkDir(full, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				return nil
			}
			pushFile(ctx, store, path, folderID, &stats, logger)
			return nil
		})
		if walkErr != nil {
			logger.Warn().Err(walkErr).Str("folder", entry.Name()).Msg("push interrupted")
			return stats
		}
	}

	logger.Info().
		Int("folders", stats.Folders).
		Int("uploaded", stats.Uploaded).
		Int("failed", stats.Failed).
		Msg("push finished")
	return stats
}

func pushFile(ctx context.Context, store Store, path, parentID string, stats *PushStats, logger zerolog.Logger) {
	if _, err := store.UploadFile(ctx, path, parentID); err != nil {
		logger.Error().Err(err).Str("file", path).Msg("upload failed")
		stats.Failed++
		return
	}
	stats.Uploaded++
}
