/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeNameReservedChars(t *testing.T) {
	in := `a<b>c:d"e/f\g|h?i*j`
	got := SafeName(in, "video")
	if strings.ContainsAny(got, `<>:"/\|?*`) {
		t.Errorf("reserved characters survived: %q", got)
	}
	if got != "a_b_c_d_e_f_g_h_i_j" {
		t.Errorf("unexpected result %q", got)
	}
}

func TestSafeNameTrimAndTruncate(t *testing.T) {
	if got := SafeName("name... ", "video"); got != "name" {
		t.Errorf("trailing dots/spaces kept: %q", got)
	}
	long := strings.Repeat("x", 300)
	if got := SafeName(long, "video"); len([]rune(got)) != 150 {
		t.Errorf("expected 150 runes, got %d", len([]rune(got)))
	}
}

func TestSafeNameFallbacks(t *testing.T) {
	cases := map[string]string{"video": "video", "image": "image", "other": "media"}
	for kind, want := range cases {
		if got := SafeName("???", kind); got != want {
			t.Errorf("SafeName empty for kind %s = %q, want %q", kind, got, want)
		}
	}
}

func TestNextAvailableSequence(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 3; i++ {
		path := filepath.Join(dir, fmt.Sprintf("base_%d.jpg", i))
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got := NextAvailable(dir, "base", ".jpg")
	want := filepath.Join(dir, "base_4.jpg")
	if got != want {
		t.Errorf("NextAvailable = %q, want %q", got, want)
	}
	if _, err := os.Stat(got); !os.IsNotExist(err) {
		t.Error("NextAvailable must not create the file")
	}
}

func TestResolveCollision(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if got := ResolveCollision(path); got != path {
		t.Errorf("free path changed: %q", got)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got := ResolveCollision(path)
	if got != filepath.Join(dir, "file_2.txt") {
		t.Errorf("ResolveCollision = %q", got)
	}
}
