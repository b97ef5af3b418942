/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package cloudstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/friendsincode/shopmedia/internal/csvtable"
)

func TestResolveIDFromURL(t *testing.T) {
	s := &S3Store{bucket: "assets"}
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"s3://assets/products/SKU1", "products/SKU1", true},
		{"s3://other/products", "", false},
		{"https://minio.local/assets/products/SKU1", "products/SKU1", true},
		{"https://assets.s3.amazonaws.com/products/SKU1/", "products/SKU1", true},
		{"https://minio.local/assets", "", true},
		{"https://minio.local/elsewhere/x", "", false},
	}
	for _, c := range cases {
		got, err := s.ResolveIDFromURL(c.in)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error %v", c.in, err)
			continue
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected error, got %q", c.in, got)
			continue
		}
		if c.ok && got != c.want {
			t.Errorf("%s: got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFolderPrefix(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"/":        "",
		"products": "products/",
		"/a/b/":    "a/b/",
		"a/b/c":    "a/b/c/",
	}
	for in, want := range cases {
		if got := folderPrefix(in); got != want {
			t.Errorf("folderPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

// fakeStore serves canned folder listings and writes marker files.
type fakeStore struct {
	folders map[string][]Child
	fail    map[string]bool
	uploads []string
}

func (f *fakeStore) ListChildren(_ context.Context, folderID string) ([]Child, error) {
	if f.fail[folderID] {
		return nil, fmt.Errorf("listing %s: boom", folderID)
	}
	return f.folders[folderID], nil
}

func (f *fakeStore) CreateFolder(_ context.Context, name, parentID string) (string, error) {
	return parentID + "/" + name, nil
}

func (f *fakeStore) UploadFile(_ context.Context, path, parentID string) (string, error) {
	if f.fail[filepath.Base(path)] {
		return "", fmt.Errorf("upload %s: boom", path)
	}
	id := parentID + "/" + filepath.Base(path)
	f.uploads = append(f.uploads, id)
	return id, nil
}

func (f *fakeStore) DownloadFile(_ context.Context, id, destPath string) error {
	if f.fail[id] {
		return fmt.Errorf("download %s: boom", id)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, []byte(id), 0o644)
}

func (f *fakeStore) ResolveIDFromURL(url string) (string, error) { return url, nil }

func TestFetchFromCSV(t *testing.T) {
	dest := t.TempDir()
	store := &fakeStore{
		folders: map[string][]Child{
			"SKU1": {
				{ID: "SKU1/a.jpg", Name: "a.jpg", Kind: ChildFile},
				{ID: "SKU1/sub", Name: "sub", Kind: ChildFolder},
			},
			"plainkey": {
				{ID: "plainkey/b.mp4", Name: "b.mp4", Kind: ChildFile},
			},
			"broken": nil,
		},
		fail: map[string]bool{"broken": true},
	}
	table := csvtable.Table{
		"foldera":  {TargetID: "SKU1"},
		"plainkey": {},
		"broken":   {},
	}

	stats := FetchFromCSV(context.Background(), store, table, dest, zerolog.Nop())
	if stats.Folders != 3 {
		t.Errorf("folders = %d, want 3", stats.Folders)
	}
	if stats.Downloaded != 2 {
		t.Errorf("downloaded = %d, want 2", stats.Downloaded)
	}
	if stats.Failed != 1 {
		t.Errorf("failed = %d, want 1", stats.Failed)
	}
	if _, err := os.Stat(filepath.Join(dest, "SKU1", "a.jpg")); err != nil {
		t.Errorf("expected SKU1/a.jpg: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "plainkey", "b.mp4")); err != nil {
		t.Errorf("expected plainkey/b.mp4: %v", err)
	}
	// Folders under a fetched folder are not recursed into.
	if _, err := os.Stat(filepath.Join(dest, "SKU1", "sub")); !os.IsNotExist(err) {
		t.Error("subfolder should not have been created")
	}
}

func TestPushTree(t *testing.T) {
	src := t.TempDir()
	for _, p := range []string{
		filepath.Join("SKU1", "a.jpg"),
		filepath.Join("SKU1", "nested", "b.jpg"),
		filepath.Join("SKU2", "c.mp4"),
		"loose.txt",
	} {
		full := filepath.Join(src, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store := &fakeStore{fail: map[string]bool{"c.mp4": true}}
	stats := PushTree(context.Background(), store, src, zerolog.Nop())

	if stats.Folders != 2 {
		t.Errorf("folders = %d, want 2", stats.Folders)
	}
	if stats.Uploaded != 3 {
		t.Errorf("uploaded = %d, want 3: %v", stats.Uploaded, store.uploads)
	}
	if stats.Failed != 1 {
		t.Errorf("failed = %d, want 1", stats.Failed)
	}
	// Nested files are flattened into their top-level folder.
	found := false
	for _, id := range store.uploads {
		if id == "/SKU1/b.jpg" {
			found = true
		}
	}
	if !found {
		t.Errorf("nested upload missing: %v", store.uploads)
	}
}
