/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/shopmedia/internal/cloudstore"
	"github.com/friendsincode/shopmedia/internal/csvtable"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download source assets for every CSV row from object storage",
	Long:  "For each row in the CSV product mapping, download the files under its remote folder into a local tree ready for a batch run",
	RunE:  runFetch,
}

var (
	fetchCSV      string
	fetchDest     string
	fetchBucket   string
	fetchEndpoint string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchCSV, "csv", "", "CSV product mapping file (required)")
	fetchCmd.Flags().StringVar(&fetchDest, "dest", "", "Local destination root (required)")
	fetchCmd.Flags().StringVar(&fetchBucket, "bucket", "", "S3 bucket override")
	fetchCmd.Flags().StringVar(&fetchEndpoint, "endpoint", "", "S3 endpoint override for compatible services")
	fetchCmd.MarkFlagRequired("csv")
	fetchCmd.MarkFlagRequired("dest")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	table, err := csvtable.Load(fetchCSV)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	store, err := newStore(ctx, fetchBucket, fetchEndpoint)
	if err != nil {
		return err
	}

	stats := cloudstore.FetchFromCSV(ctx, store, table, fetchDest, logger)
	if stats.Failed > 0 {
		return fmt.Errorf("%d downloads failed", stats.Failed)
	}
	return nil
}
