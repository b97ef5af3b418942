/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package metawrite

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// VerifyResult is the diagnostic comparison of written vs read-back
// metadata. It never fails a batch item; mismatches are logged only.
type VerifyResult struct {
	TitleOK  bool
	TagsOK   bool
	RatingOK bool

	ActualTitle  string
	ActualTags   []string
	ActualRating string
}

// OK reports whether every requested field matched.
func (r VerifyResult) OK() bool {
	return r.TitleOK && r.TagsOK && r.RatingOK
}

// verifyReadFields is the -G1 field list re-read after a write.
var verifyReadFields = []string{
	"-ItemList:Title", "-QuickTime:Title", "-Title", "-XMP-dc:Title",
	"-Keys:Keywords", "-XMP-dc:Subject", "-Comment",
	"-Keys:UserRating", "-XMP-xmp:Rating", "-ASF:RatingPercent",
}

// titleReadOrder is the precedence for the read-back title.
var titleReadOrder = []string{"ItemList:Title", "QuickTime:Title", "Title", "XMP-dc:Title"}

// Verify re-reads path with exiftool -j and compares against expected:
// exact title (when one was requested), case-insensitive tag subset, and
// rating (exact stars for integer-rating families, >=99% for the ASF
// family). The result is observational; only the tool run itself can
// return an error.
func (w *Writer) Verify(ctx context.Context, path, container string, expected Spec) (VerifyResult, error) {
	args := append([]string{"-j", "-G1"}, verifyReadFields...)
	args = append(args, path)

	cmd := exec.CommandContext(ctx, w.bin, args...)
	out, err := cmd.Output()
	if err != nil {
		return VerifyResult{}, fmt.Errorf("%w: %v", ErrToolInvocation, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(out, &records); err != nil || len(records) == 0 {
		return VerifyResult{}, fmt.Errorf("%w: unreadable verify output", ErrToolInvocation)
	}

	result := compareReadback(records[0], FamilyFor(container), expected)
	if result.OK() {
		w.logger.Debug().Str("path", path).Msg("metadata verified")
	} else {
		w.logger.Warn().
			Str("path", path).
			Str("expected_title", expected.Title).
			Str("actual_title", result.ActualTitle).
			Strs("expected_tags", cleanTags(expected.Tags)).
			Strs("actual_tags", result.ActualTags).
			Int("expected_rating", expected.Rating).
			Str("actual_rating", result.ActualRating).
			Msg("metadata verify mismatch")
	}
	return result, nil
}

func compareReadback(d map[string]any, family Family, expected Spec) VerifyResult {
	var result VerifyResult

	for _, key := range titleReadOrder {
		if v := asString(d[key]); v != "" {
			result.ActualTitle = v
			break
		}
	}
	result.TitleOK = expected.Title == "" ||
		strings.TrimSpace(result.ActualTitle) == strings.TrimSpace(expected.Title)

	got := map[string]bool{}
	for _, key := range []string{"XMP-dc:Subject", "Keys:Keywords"} {
		for _, tag := range asStringList(d[key]) {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				got[tag] = true
				result.ActualTags = append(result.ActualTags, tag)
			}
		}
	}
	result.TagsOK = true
	for _, want := range cleanTags(expected.Tags) {
		if !got[strings.ToLower(want)] {
			result.TagsOK = false
			break
		}
	}

	if family == FamilyASF {
		pct := strings.TrimSpace(asString(d["ASF:RatingPercent"]))
		result.ActualRating = pct
		result.RatingOK = pct == "99" || pct == "100"
	} else {
		stars := strconv.Itoa(expected.Rating)
		user := strings.TrimSpace(asString(d["Keys:UserRating"]))
		xmp := strings.TrimSpace(asString(d["XMP-xmp:Rating"]))
		result.ActualRating = firstNonEmpty(user, xmp)
		result.RatingOK = user == stars || xmp == stars
	}

	return result
}

// asString renders a scalar exiftool JSON value.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// asStringList accepts either a JSON array or a ", "-joined string.
func asStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, asString(e))
		}
		return out
	case string:
		return strings.Split(t, ",")
	default:
		return []string{asString(v)}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
