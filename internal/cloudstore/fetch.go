/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package cloudstore

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/friendsincode/shopmedia/internal/csvtable"
)

// FetchStats summarizes a bulk download.
type FetchStats struct {
	Folders    int
	Downloaded int
	Failed     int
}

// FetchFromCSV downloads the files directly under each record's target
// folder into destRoot/<folder>/. The folder key is the record's target
// id when present, else the lookup key itself. Per-folder and per-file
// failures are logged and counted; the pass always continues.
func FetchFromCSV(ctx context.Context, store Store, table csvtable.Table, destRoot string, logger zerolog.Logger) FetchStats {
	var stats FetchStats

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if ctx.Err() != nil {
			return stats
		}
		rec := table[key]
		folder := rec.TargetID
		if folder == "" {
			folder = key
		}
		stats.Folders++

		children, err := store.ListChildren(ctx, folder)
		if err != nil {
			logger.Error().Err(err).Str("folder", folder).Msg("fetch: list failed")
			stats.Failed++
			continue
		}
		for _, child := range children {
			if child.Kind != ChildFile {
				continue
			}
			dest := filepath.Join(destRoot, folder, child.Name)
			if err := store.DownloadFile(ctx, child.ID, dest); err != nil {
				logger.Error().Err(err).Str("id", child.ID).Msg("fetch: download failed")
				stats.Failed++
				continue
			}
			stats.Downloaded++
			logger.Info().Str("file", dest).Msg("fetched")
		}
	}
	return stats
}
