/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package metawrite

import (
	"strconv"
	"strings"
)

// Spec is the resolved output metadata for one file.
type Spec struct {
	Title  string
	Tags   []string // order and casing preserved, may be empty
	Rating int      // always within [1,5]
}

// ParseRating coerces arbitrary rating input into [1,5]. Missing,
// non-numeric and out-of-range values all map to 5.
func ParseRating(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > 5 {
		return 5
	}
	return n
}

// ratingPercentTable maps the 1-5 star scale onto the percentage scale
// desktop shells expect.
var ratingPercentTable = map[int]int{1: 1, 2: 25, 3: 50, 4: 75, 5: 99}

// RatingPercent converts a star rating to its percentage value,
// defaulting to 99 for anything outside the table.
func RatingPercent(stars int) int {
	if pct, ok := ratingPercentTable[stars]; ok {
		return pct
	}
	return 99
}

// Family groups containers by the metadata fields they accept.
type Family int

const (
	// FamilyMP4 covers the QuickTime item-list containers.
	FamilyMP4 Family = iota
	// FamilyASF covers wmv/wma/asf, which carry no integer rating field.
	FamilyASF
	// FamilyGeneric covers everything else, images included.
	FamilyGeneric
)

// FamilyFor classifies a container or extension string.
func FamilyFor(container string) Family {
	switch strings.ToLower(strings.TrimPrefix(container, ".")) {
	case "mp4", "mov", "m4v":
		return FamilyMP4
	case "wmv", "wma", "asf":
		return FamilyASF
	default:
		return FamilyGeneric
	}
}

// joinTags renders the ", "-joined text form used by single-value
// fields.
func joinTags(tags []string) string {
	clean := cleanTags(tags)
	return strings.Join(clean, ", ")
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
