/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/shopmedia/internal/batch"
	"github.com/friendsincode/shopmedia/internal/config"
	"github.com/friendsincode/shopmedia/internal/imagepipe"
	"github.com/friendsincode/shopmedia/internal/logging"
	"github.com/friendsincode/shopmedia/internal/media"
	"github.com/friendsincode/shopmedia/internal/metawrite"
	"github.com/friendsincode/shopmedia/internal/statusboard"
	"github.com/friendsincode/shopmedia/internal/transcode"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process a tree of videos and images in one pass",
	Long:  "Walk the input root, transcode every video, convert every HEIC photo, and stamp metadata resolved from the CSV product mapping",
	RunE:  runBatch,
}

var (
	batchInput   string
	batchOutput  string
	batchCSV     string
	batchTitle   string
	batchTags    string
	batchProfile string
	batchLogFile string

	batchCRF       int
	batchPreset    string
	batchVCodec    string
	batchACodec    string
	batchABitrate  string
	batchContainer string
	batchWidth     int
	batchHeight    int
	batchKeepMeta  bool
	batchOverwrite bool

	batchImages      bool
	batchImageWidth  int
	batchImagePreset string

	batchDryRun      bool
	batchMatchedOnly bool

	batchFFmpegBin   string
	batchExifToolBin string
)

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchInput, "input", "", "Input root directory (required unless SHOPMEDIA_INPUT_ROOT is set)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "Output root directory (required unless SHOPMEDIA_OUTPUT_ROOT is set)")
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "CSV product mapping file")
	batchCmd.Flags().StringVar(&batchTitle, "title", "", "Title override applied when the CSV has none")
	batchCmd.Flags().StringVar(&batchTags, "tags", "", "Comma-separated tag override applied when the CSV has none")
	batchCmd.Flags().StringVar(&batchProfile, "profile", "", "YAML profile with encode and enhancement overrides")
	batchCmd.Flags().StringVar(&batchLogFile, "log-file", "", "Also write the JSON log stream to this file")

	batchCmd.Flags().IntVar(&batchCRF, "crf", 0, "Constant rate factor (default 17)")
	batchCmd.Flags().StringVar(&batchPreset, "preset", "", "Encoder preset (default slow)")
	batchCmd.Flags().StringVar(&batchVCodec, "vcodec", "", "Video codec (default libx264)")
	batchCmd.Flags().StringVar(&batchACodec, "acodec", "", "Audio codec (default aac)")
	batchCmd.Flags().StringVar(&batchABitrate, "abitrate", "", "Audio bitrate (default 160k)")
	batchCmd.Flags().StringVar(&batchContainer, "container", "", "Target container (default mp4)")
	batchCmd.Flags().IntVar(&batchWidth, "width", 0, "Scale videos to this width, height derived")
	batchCmd.Flags().IntVar(&batchHeight, "height", 0, "Scale videos to this height, width derived")
	batchCmd.Flags().BoolVar(&batchKeepMeta, "keep-metadata", false, "Keep source metadata and chapters in the encode")
	batchCmd.Flags().BoolVar(&batchOverwrite, "overwrite", false, "Replace existing outputs instead of skipping them")

	batchCmd.Flags().BoolVar(&batchImages, "images", false, "Also convert HEIC photos to enhanced JPEG")
	batchCmd.Flags().IntVar(&batchImageWidth, "image-width", 0, "Resize converted photos to this width")
	batchCmd.Flags().StringVar(&batchImagePreset, "image-preset", "canva", "Photo enhancement preset: canva or none")

	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "Resolve and log every decision without touching files")
	batchCmd.Flags().BoolVar(&batchMatchedOnly, "matched-only", false, "Skip items that have no CSV match instead of using fallbacks")

	batchCmd.Flags().StringVar(&batchFFmpegBin, "ffmpeg", "", "Path to the ffmpeg binary")
	batchCmd.Flags().StringVar(&batchExifToolBin, "exiftool", "", "Path to the exiftool binary")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if batchLogFile != "" {
		l, f, err := logging.SetupToFile(cfg.Environment, batchLogFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = l
	}

	profile, err := config.LoadProfile(firstNonEmpty(batchProfile, cfg.ProfilePath))
	if err != nil {
		return err
	}

	spec := profile.ApplySpec(transcode.DefaultSpec())
	if cfg.DefaultCRF > 0 {
		spec.CRF = cfg.DefaultCRF
	}
	if batchCRF > 0 {
		spec.CRF = batchCRF
	}
	if batchPreset != "" {
		spec.Preset = batchPreset
	}
	if batchVCodec != "" {
		spec.VCodec = batchVCodec
	}
	if batchACodec != "" {
		spec.ACodec = batchACodec
	}
	if batchABitrate != "" {
		spec.ABitrate = batchABitrate
	}
	if batchContainer != "" {
		spec.Container = batchContainer
	}
	if batchWidth > 0 {
		spec.Width = batchWidth
	}
	if batchHeight > 0 {
		spec.Height = batchHeight
	}
	spec.StripMetadata = !batchKeepMeta
	spec.Overwrite = batchOverwrite

	imagePreset := imagepipe.Preset(batchImagePreset)
	if imagePreset != imagepipe.PresetNone && imagePreset != imagepipe.PresetCanva {
		return fmt.Errorf("unknown image preset %q", batchImagePreset)
	}

	// Dry runs never invoke the tools, so missing binaries must not
	// block them.
	toolbox := &media.Toolbox{}
	if !batchDryRun {
		toolbox, err = media.ResolveTools(
			firstNonEmpty(batchFFmpegBin, cfg.FFmpegBin),
			firstNonEmpty(batchExifToolBin, cfg.ExifToolBin),
			logger,
		)
		if err != nil {
			return err
		}
	}

	board := statusboard.New()
	runner := batch.NewRunner(
		batch.Config{
			InputRoot:     firstNonEmpty(batchInput, cfg.InputRoot),
			OutputRoot:    firstNonEmpty(batchOutput, cfg.OutputRoot),
			CSVPath:       firstNonEmpty(batchCSV, cfg.CSVPath),
			DefaultTitle:  firstNonEmpty(batchTitle, cfg.DefaultTitle),
			DefaultTags:   firstNonEmpty(batchTags, cfg.DefaultTags),
			Spec:          spec,
			ImageOpts:     imagepipe.Options{ResizeWidth: batchImageWidth, Preset: imagePreset, Params: profile.EnhanceParams()},
			ProcessImages: batchImages,
			DryRun:        batchDryRun,
			MatchedOnly:   batchMatchedOnly,
		},
		transcode.New(toolbox.FFmpeg, logger),
		imagepipe.NewConverter(logger),
		metawrite.New(toolbox.ExifTool, logger),
		board,
		logger,
	)

	ctx, stop := signalContext()
	defer stop()

	summary, err := runner.Run(ctx, nil)
	if err != nil {
		return err
	}
	for _, row := range board.Rows() {
		logger.Debug().Str("item", row.Key).Str("stage", row.Stage).Str("detail", row.Detail).Msg("final status")
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d items failed", summary.Failed, summary.Total)
	}
	return nil
}
