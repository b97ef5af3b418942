/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package media

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := map[string]Kind{
		"clip.MP4":     KindVideo,
		"clip.webm":    KindVideo,
		"shot.heic":    KindImage,
		"shot.JPEG":    KindImage,
		"notes.txt":    KindIgnored,
		"sub.srt":      KindIgnored,
		"noextension":  KindIgnored,
		"archive.mkv":  KindVideo,
		"ancient.avi":  KindVideo,
		"windows.wmv":  KindVideo,
		"picture.jpg":  KindImage,
		"clipless.flv": KindVideo,
	}
	for name, want := range cases {
		if got := Classify(name); got != want {
			t.Errorf("Classify(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestItemFolderKey(t *testing.T) {
	it := Item{RelPath: filepath.Join("FolderA", "sub", "clip.mp4")}
	if got := it.FolderKey(); got != "foldera" {
		t.Errorf("FolderKey = %q", got)
	}
	root := Item{RelPath: "clip.mp4"}
	if got := root.FolderKey(); got != "" {
		t.Errorf("root FolderKey = %q, want empty", got)
	}
}

func TestItemStem(t *testing.T) {
	it := Item{AbsPath: "/in/FolderA/clip.v2.mp4"}
	if got := it.Stem(); got != "clip.v2" {
		t.Errorf("Stem = %q", got)
	}
}

func TestItemPathTags(t *testing.T) {
	it := Item{RelPath: filepath.Join("Rugs", "Blue", "rugs", "img.heic")}
	got := it.PathTags()
	want := []string{"Rugs", "Blue"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PathTags = %v, want %v", got, want)
	}

	rootItem := Item{RelPath: "img.heic"}
	if tags := rootItem.PathTags(); tags != nil {
		t.Errorf("root file tags = %v, want none", tags)
	}
}
