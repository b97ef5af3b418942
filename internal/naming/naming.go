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
)

// reserved is the set of characters Windows refuses in file names.
const reserved = `<>:"/\|?*`

const maxNameLen = 150

// SafeName turns a free-form title into a filesystem-safe base name.
// Reserved characters become underscores, trailing dots and spaces are
// trimmed, and the result is capped at 150 runes. An empty result falls
// back to the media kind ("video", "image" or "media").
func SafeName(raw, kind string) string {
	name := raw
	for _, ch := range reserved {
		name = strings.ReplaceAll(name, string(ch), "_")
	}
	name = strings.TrimRight(name, " .")
	if runes := []rune(name); len(runes) > maxNameLen {
		name = string(runes[:maxNameLen])
		name = strings.TrimRight(name, " .")
	}
	if name == "" {
		switch kind {
		case "video", "image":
			return kind
		default:
			return "media"
		}
	}
	return name
}

// NextAvailable returns the first path of the form dir/base_N.ext (N
// starting at 1) that does not exist yet. It never creates the file.
func NextAvailable(dir, base, ext string) string {
	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// ResolveCollision returns path untouched when it is free, otherwise the
// first stem_N.ext (N starting at 2) in the same directory that is.
func ResolveCollision(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
