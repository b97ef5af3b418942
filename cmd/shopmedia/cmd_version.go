/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/shopmedia/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and check for updates",
	RunE:  runVersion,
}

var versionSkipCheck bool

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionSkipCheck, "no-check", false, "Skip the online update check")
}

func runVersion(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	fmt.Printf("shopmedia %s\n", version.Version)
	if versionSkipCheck {
		return nil
	}

	ctx, stop := signalContext()
	defer stop()

	info, err := version.CheckLatest(ctx, logger)
	if err != nil {
		logger.Debug().Err(err).Msg("update check failed")
		return nil
	}
	if info.UpdateAvailable {
		fmt.Printf("update available: %s (%s)\n", info.LatestVersion, info.ReleaseURL)
	}
	return nil
}
