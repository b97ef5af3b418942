/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package mergetool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestMergeCommonOnlyTouchesIntersection(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	dest := filepath.Join(root, "dest")

	write(t, filepath.Join(a, "X", "fx.txt"), "x")
	write(t, filepath.Join(a, "Y", "fa.txt"), "ya")
	write(t, filepath.Join(b, "Y", "fb.txt"), "yb")
	write(t, filepath.Join(b, "Z", "fz.txt"), "z")

	stats, err := MergeCommon(a, b, dest, ModeCopy, ConflictRename, zerolog.Nop())
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if stats.CommonFolders != 1 {
		t.Errorf("common folders = %d, want 1", stats.CommonFolders)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "Y" {
		t.Fatalf("dest should contain only Y: %v", entries)
	}
	if got := read(t, filepath.Join(dest, "Y", "fa.txt")); got != "ya" {
		t.Errorf("fa.txt = %q", got)
	}
	if got := read(t, filepath.Join(dest, "Y", "fb.txt")); got != "yb" {
		t.Errorf("fb.txt = %q", got)
	}
}

func TestMergeRenameNeverOverwrites(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	dest := filepath.Join(root, "dest")

	write(t, filepath.Join(a, "Y", "f.txt"), "from-a")
	write(t, filepath.Join(b, "Y", "f.txt"), "from-b")

	stats, err := MergeCommon(a, b, dest, ModeCopy, ConflictRename, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Transferred != 2 {
		t.Errorf("transferred = %d, want 2", stats.Transferred)
	}
	if got := read(t, filepath.Join(dest, "Y", "f.txt")); got != "from-a" {
		t.Errorf("first file overwritten: %q", got)
	}
	if got := read(t, filepath.Join(dest, "Y", "f_2.txt")); got != "from-b" {
		t.Errorf("renamed copy = %q", got)
	}
}

func TestMergeSkipPolicy(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	dest := filepath.Join(root, "dest")

	write(t, filepath.Join(a, "Y", "f.txt"), "from-a")
	write(t, filepath.Join(b, "Y", "f.txt"), "from-b")

	stats, err := MergeCommon(a, b, dest, ModeCopy, ConflictSkip, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", stats.Skipped)
	}
	if got := read(t, filepath.Join(dest, "Y", "f.txt")); got != "from-a" {
		t.Errorf("existing file replaced under skip: %q", got)
	}
}

func TestMergeOverwritePolicy(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	dest := filepath.Join(root, "dest")

	write(t, filepath.Join(a, "Y", "f.txt"), "from-a")
	write(t, filepath.Join(b, "Y", "f.txt"), "from-b")

	if _, err := MergeCommon(a, b, dest, ModeCopy, ConflictOverwrite, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}
	if got := read(t, filepath.Join(dest, "Y", "f.txt")); got != "from-b" {
		t.Errorf("overwrite policy kept %q", got)
	}
}

func TestMergeMoveRemovesSource(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	dest := filepath.Join(root, "dest")

	srcFile := filepath.Join(a, "Y", "f.txt")
	write(t, srcFile, "payload")
	write(t, filepath.Join(b, "Y", "other.txt"), "o")

	if _, err := MergeCommon(a, b, dest, ModeMove, ConflictRename, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(srcFile); !os.IsNotExist(err) {
		t.Error("move left the source in place")
	}
	if got := read(t, filepath.Join(dest, "Y", "f.txt")); got != "payload" {
		t.Errorf("moved file = %q", got)
	}
}

func TestMergeMissingParent(t *testing.T) {
	root := t.TempDir()
	if _, err := MergeCommon(filepath.Join(root, "nope"), root, filepath.Join(root, "d"), ModeCopy, ConflictSkip, zerolog.Nop()); err == nil {
		t.Error("expected error for missing parent")
	}
}
