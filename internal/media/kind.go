/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package media

import (
	"path/filepath"
	"strings"
)

// Kind classifies a discovered file.
type Kind string

const (
	KindVideo   Kind = "video"
	KindImage   Kind = "image"
	KindIgnored Kind = "ignored"
)

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".m4v": true, ".mkv": true,
	".avi": true, ".wmv": true, ".flv": true, ".webm": true,
}

var imageExts = map[string]bool{
	".heic": true, ".jpg": true, ".jpeg": true,
}

// Classify maps a file name to its media kind by extension.
func Classify(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case videoExts[ext]:
		return KindVideo
	case imageExts[ext]:
		return KindImage
	default:
		return KindIgnored
	}
}
