/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cloudstore is the narrow folder-store contract the rest of
// the tool consumes, plus its S3-compatible implementation. Folder IDs
// are opaque strings; for S3 they are key prefixes.
package cloudstore

import (
	"context"
	"errors"
)

// ChildKind distinguishes folder entries from file entries.
type ChildKind string

const (
	ChildFolder ChildKind = "folder"
	ChildFile   ChildKind = "file"
)

// Child is one entry directly under a folder.
type Child struct {
	ID   string
	Name string
	Kind ChildKind
}

// ErrNotFound is returned for missing objects or unresolvable URLs.
var ErrNotFound = errors.New("cloud object not found")

// Store is the folder-store contract. Implementations live elsewhere in
// the app's wiring; the pipeline itself only ever sees local paths.
type Store interface {
	ListChildren(ctx context.Context, folderID string) ([]Child, error)
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	UploadFile(ctx context.Context, path, parentID string) (string, error)
	DownloadFile(ctx context.Context, id, destPath string) error
	ResolveIDFromURL(url string) (string, error)
}
