/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/shopmedia/internal/cloudstore"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload a finished output tree to object storage",
	Long:  "Upload every top-level folder of the source tree as a remote folder, with its files flattened inside",
	RunE:  runPush,
}

var (
	pushSrc      string
	pushBucket   string
	pushEndpoint string
)

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringVar(&pushSrc, "src", "", "Local source root to upload (required)")
	pushCmd.Flags().StringVar(&pushBucket, "bucket", "", "S3 bucket override")
	pushCmd.Flags().StringVar(&pushEndpoint, "endpoint", "", "S3 endpoint override for compatible services")
	pushCmd.MarkFlagRequired("src")
}

func runPush(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	store, err := newStore(ctx, pushBucket, pushEndpoint)
	if err != nil {
		return err
	}

	stats := cloudstore.PushTree(ctx, store, pushSrc, logger)
	if stats.Failed > 0 {
		return fmt.Errorf("%d uploads failed", stats.Failed)
	}
	return nil
}
