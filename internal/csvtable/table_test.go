/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package csvtable

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseSemicolonDelimiter(t *testing.T) {
	data := []byte("SKU Original;SKU Kyopa;Title;Tags\nFolderA;SKU1;Blue Rug;rug, blue\n")
	table, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec, ok := table["foldera"]
	if !ok {
		t.Fatalf("expected key foldera, got %v", table)
	}
	if rec.TargetID != "SKU1" || rec.Title != "Blue Rug" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestParseBOMHeader(t *testing.T) {
	data := []byte("\uFEFFsku original,title,tags\nabc,Hello,\n")
	table, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := table["abc"]; !ok {
		t.Fatalf("BOM header not normalized: %v", table)
	}
}

func TestParseDuplicateKeyLastWins(t *testing.T) {
	data := []byte("sku original,title\nX,first\nx ,second\n")
	table, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := table["x"].Title; got != "second" {
		t.Errorf("expected last row to win, got %q", got)
	}
}

func TestParseDropsRowsWithoutKey(t *testing.T) {
	data := []byte("sku original,title\n,orphan\nok,kept\n")
	table, _ := Parse(data)
	if len(table) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table))
	}
}

func TestLoadIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.csv")
	content := "sku original|sku kyopa|title|tags\na|S1|T1|x y\nb|S2|T2|p, q\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	first, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("loads differ: %v vs %v", first, second)
	}
}

func TestLoadMissingFile(t *testing.T) {
	table, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if len(table) != 0 {
		t.Errorf("expected empty table, got %v", table)
	}
}

func TestSplitTags(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"rug, blue", []string{"rug", "blue"}},
		{"rug blue", []string{"rug", "blue"}},
		{"  solo  ", []string{"solo"}},
		{"", nil},
		{"a,,b", []string{"a", "b"}},
	}
	for _, c := range cases {
		got := Record{Tags: c.raw}.SplitTags()
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitTags(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}
