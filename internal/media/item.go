/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package media

import (
	"path/filepath"
	"strings"
)

// Item is one discovered input file. It is created during discovery and
// never mutated afterwards.
type Item struct {
	AbsPath string
	RelPath string // relative to the batch input root, always slash-joined by filepath
	Kind    Kind
}

// Stem returns the file name without its extension.
func (it Item) Stem() string {
	base := filepath.Base(it.AbsPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FolderKey returns the normalized name of the item's top-level folder
// under the batch root, the primary CSV lookup key. Files sitting
// directly in the root yield "".
func (it Item) FolderKey() string {
	parts := strings.Split(filepath.ToSlash(it.RelPath), "/")
	if len(parts) < 2 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[0]))
}

// RelDir returns the directory portion of the relative path, "" when the
// file sits directly in the root.
func (it Item) RelDir() string {
	dir := filepath.Dir(it.RelPath)
	if dir == "." {
		return ""
	}
	return dir
}

// PathTags infers tags from the directory segments between the batch
// root and the file, deduplicated case-insensitively with first-seen
// casing and order preserved.
func (it Item) PathTags() []string {
	parts := strings.Split(filepath.ToSlash(it.RelPath), "/")
	if len(parts) > 1 {
		parts = parts[:len(parts)-1]
	} else {
		parts = nil
	}
	seen := map[string]bool{}
	var tags []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		low := strings.ToLower(p)
		if seen[low] {
			continue
		}
		seen[low] = true
		tags = append(tags, p)
	}
	return tags
}
