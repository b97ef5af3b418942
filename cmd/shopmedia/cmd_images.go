/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/shopmedia/internal/config"
	"github.com/friendsincode/shopmedia/internal/imagepipe"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Convert a single folder of HEIC photos to enhanced JPEG",
	Long:  "One-shot HEIC to JPEG conversion for a flat folder, without the CSV mapping or metadata stages",
	RunE:  runImages,
}

var (
	imagesIn      string
	imagesOut     string
	imagesWidth   int
	imagesPreset  string
	imagesProfile string
)

func init() {
	rootCmd.AddCommand(imagesCmd)

	imagesCmd.Flags().StringVar(&imagesIn, "in", "", "Folder containing .heic files (required)")
	imagesCmd.Flags().StringVar(&imagesOut, "out", "", "Destination folder (required)")
	imagesCmd.Flags().IntVar(&imagesWidth, "width", 0, "Resize converted photos to this width")
	imagesCmd.Flags().StringVar(&imagesPreset, "preset", "canva", "Enhancement preset: canva or none")
	imagesCmd.Flags().StringVar(&imagesProfile, "profile", "", "YAML profile with enhancement overrides")
	imagesCmd.MarkFlagRequired("in")
	imagesCmd.MarkFlagRequired("out")
}

func runImages(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	preset := imagepipe.Preset(imagesPreset)
	if preset != imagepipe.PresetNone && preset != imagepipe.PresetCanva {
		return fmt.Errorf("unknown preset %q", imagesPreset)
	}

	profile, err := config.LoadProfile(firstNonEmpty(imagesProfile, cfg.ProfilePath))
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	converter := imagepipe.NewConverter(logger)
	return converter.ConvertDir(ctx, imagesIn, imagesOut, imagepipe.Options{
		ResizeWidth: imagesWidth,
		Preset:      preset,
		Params:      profile.EnhanceParams(),
	})
}
