/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package statusboard holds the per-item progress rows shared between a
// background run and the foreground display. Writers replace an
// immutable snapshot; readers never observe a half-updated row set.
package statusboard

import "sync/atomic"

// Row is one item's latest known stage.
type Row struct {
	Key    string
	Stage  string
	Detail string
}

// Board is safe for one writer and any number of readers.
type Board struct {
	snapshot atomic.Pointer[[]Row]
}

func New() *Board {
	b := &Board{}
	empty := []Row{}
	b.snapshot.Store(&empty)
	return b
}

// Update replaces or appends the row for key. The previous snapshot is
// never mutated; a fresh slice is swapped in.
func (b *Board) Update(key, stage, detail string) {
	old := *b.snapshot.Load()
	next := make([]Row, 0, len(old)+1)
	replaced := false
	for _, row := range old {
		if row.Key == key {
			next = append(next, Row{Key: key, Stage: stage, Detail: detail})
			replaced = true
			continue
		}
		next = append(next, row)
	}
	if !replaced {
		next = append(next, Row{Key: key, Stage: stage, Detail: detail})
	}
	b.snapshot.Store(&next)
}

// Rows returns the current immutable snapshot. Callers must not modify
// it.
func (b *Board) Rows() []Row {
	return *b.snapshot.Load()
}
