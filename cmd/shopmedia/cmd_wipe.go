/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/friendsincode/shopmedia/internal/media"
	"github.com/friendsincode/shopmedia/internal/metawrite"
)

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Strip all embedded metadata from the media files in a folder",
	Long:  "Run exiftool's remove-everything pass over every video and image directly in the given folder, for assets that must ship clean",
	RunE:  runWipe,
}

var (
	wipeDir         string
	wipeExifToolBin string
)

func init() {
	rootCmd.AddCommand(wipeCmd)

	wipeCmd.Flags().StringVar(&wipeDir, "dir", "", "Folder whose media files are wiped (required)")
	wipeCmd.Flags().StringVar(&wipeExifToolBin, "exiftool", "", "Path to the exiftool binary")
	wipeCmd.MarkFlagRequired("dir")
}

func runWipe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	exiftool, err := media.ResolveTool("exiftool", firstNonEmpty(wipeExifToolBin, cfg.ExifToolBin), logger)
	if err != nil {
		return err
	}
	writer := metawrite.New(exiftool, logger)

	entries, err := os.ReadDir(wipeDir)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	var failed int
	for _, entry := range entries {
		if entry.IsDir() || media.Classify(entry.Name()) == media.KindIgnored {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		path := filepath.Join(wipeDir, entry.Name())
		if err := writer.RemoveAll(ctx, path); err != nil {
			logger.Error().Err(err).Str("file", path).Msg("wipe failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d files could not be wiped", failed)
	}
	return nil
}
