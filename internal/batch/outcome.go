/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package batch

// Reason categorizes a per-item result.
type Reason string

const (
	ReasonOK              Reason = "ok"
	ReasonTranscodeFailed Reason = "transcode_failed"
	ReasonMetadataFailed  Reason = "metadata_failed"
	ReasonSkippedExisting Reason = "skipped_existing"
	ReasonSkippedNoMatch  Reason = "skipped_no_match"
)

// Outcome is the immutable result of one item.
type Outcome struct {
	RelPath   string
	Succeeded bool
	Reason    Reason
}

// Summary aggregates a finished run. It is delivered exactly once per
// run, including early "nothing to do" terminations.
type Summary struct {
	RunID       string
	NothingToDo bool
	Cancelled   bool
	Total       int
	Succeeded   int
	Failed      int
	Skipped     int
	ByReason    map[Reason]int
	Outcomes    []Outcome
}

func newSummary(runID string) *Summary {
	return &Summary{RunID: runID, ByReason: map[Reason]int{}}
}

func (s *Summary) record(relPath string, reason Reason) {
	o := Outcome{RelPath: relPath, Reason: reason, Succeeded: reason == ReasonOK}
	s.Outcomes = append(s.Outcomes, o)
	s.ByReason[reason]++
	s.Total++
	switch reason {
	case ReasonOK:
		s.Succeeded++
	case ReasonSkippedExisting, ReasonSkippedNoMatch:
		s.Skipped++
	default:
		s.Failed++
	}
}
