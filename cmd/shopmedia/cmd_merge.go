/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/shopmedia/internal/mergetool"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge same-named folders from two parent directories",
	Long:  "Find subfolder names present under both parents and combine each pair's files into one folder under the destination",
	RunE:  runMerge,
}

var (
	mergeParentA  string
	mergeParentB  string
	mergeDest     string
	mergeMove     bool
	mergeConflict string
)

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&mergeParentA, "parent-a", "", "First parent directory (required)")
	mergeCmd.Flags().StringVar(&mergeParentB, "parent-b", "", "Second parent directory (required)")
	mergeCmd.Flags().StringVar(&mergeDest, "dest", "", "Destination directory (required)")
	mergeCmd.Flags().BoolVar(&mergeMove, "move", false, "Move files instead of copying them")
	mergeCmd.Flags().StringVar(&mergeConflict, "on-conflict", "rename", "Name collision policy: overwrite, skip, or rename")
	mergeCmd.MarkFlagRequired("parent-a")
	mergeCmd.MarkFlagRequired("parent-b")
	mergeCmd.MarkFlagRequired("dest")
}

func runMerge(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	policy := mergetool.ConflictPolicy(mergeConflict)
	switch policy {
	case mergetool.ConflictOverwrite, mergetool.ConflictSkip, mergetool.ConflictRename:
	default:
		return fmt.Errorf("unknown conflict policy %q", mergeConflict)
	}

	mode := mergetool.ModeCopy
	if mergeMove {
		mode = mergetool.ModeMove
	}

	stats, err := mergetool.MergeCommon(mergeParentA, mergeParentB, mergeDest, mode, policy, logger)
	if err != nil {
		return err
	}
	if stats.Errors > 0 {
		return fmt.Errorf("%d files could not be transferred", stats.Errors)
	}
	if stats.CommonFolders == 0 {
		logger.Info().Msg("no folder names in common, nothing merged")
	}
	return nil
}
