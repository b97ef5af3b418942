/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package statusboard

import "testing"

func TestBoardUpdateAndReplace(t *testing.T) {
	b := New()
	b.Update("a", "processing", "")
	b.Update("b", "processing", "")
	b.Update("a", "done", "ok")

	rows := b.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Key != "a" || rows[0].Stage != "done" || rows[0].Detail != "ok" {
		t.Errorf("row a not replaced in place: %+v", rows[0])
	}
}

func TestBoardSnapshotIsolation(t *testing.T) {
	b := New()
	b.Update("a", "processing", "")
	before := b.Rows()
	b.Update("a", "done", "")
	if before[0].Stage != "processing" {
		t.Error("earlier snapshot mutated by later update")
	}
}
