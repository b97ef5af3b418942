/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package csvtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrConfig marks a table that could not be read at all. Callers are
// expected to degrade to an empty table rather than abort a run.
var ErrConfig = errors.New("csv table unavailable")

// keyColumn is the header cell carrying the original identifier a row is
// looked up by.
const keyColumn = "sku original"

// Record is one row of the lookup table, already normalized.
type Record struct {
	TargetID string // optional destination folder key
	Title    string
	Tags     string // raw tag cell, split lazily via SplitTags
}

// SplitTags splits the raw tag cell on commas when any are present,
// otherwise on whitespace. Empty pieces are dropped.
func (r Record) SplitTags() []string {
	raw := strings.TrimSpace(r.Tags)
	if raw == "" {
		return nil
	}
	var parts []string
	if strings.Contains(raw, ",") {
		parts = strings.Split(raw, ",")
	} else {
		parts = strings.Fields(raw)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Table maps a normalized key (lowercased, trimmed folder name or file
// stem) to its record. Built once per run, read-only afterwards.
type Table map[string]Record

// NormalizeKey applies the same normalization used for header cells and
// lookup keys: BOM strip, trim, lowercase.
func NormalizeKey(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	return strings.ToLower(strings.TrimSpace(s))
}

// Load reads a delimited file into a Table. The delimiter is sniffed
// from the first 4KB. A missing or unreadable file returns an empty
// table and an ErrConfig-wrapped error; rows without a key cell are
// dropped; duplicate keys resolve last-row-wins.
func Load(path string) (Table, error) {
	if path == "" {
		return Table{}, fmt.Errorf("%w: no path given", ErrConfig)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return Parse(data)
}

// Parse builds a Table from raw file content.
func Parse(data []byte) (Table, error) {
	delim := sniffDelimiter(data)

	r := csv.NewReader(strings.NewReader(string(data)))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return Table{}, nil
		}
		return Table{}, fmt.Errorf("%w: header: %v", ErrConfig, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[NormalizeKey(h)] = i
	}
	keyIdx, ok := cols[keyColumn]
	if !ok {
		// No key column means no row can ever match.
		return Table{}, nil
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	table := Table{}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row should not lose the rest of the file.
			continue
		}
		key := NormalizeKey(cellAt(row, keyIdx))
		if key == "" {
			continue
		}
		table[key] = Record{
			TargetID: cell(row, "sku kyopa"),
			Title:    cell(row, "title"),
			Tags:     cell(row, "tags"),
		}
	}
	return table, nil
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// sniffDelimiter picks the most frequent candidate in the first 4KB,
// defaulting to comma.
func sniffDelimiter(data []byte) rune {
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	best, bestCount := ',', 0
	for _, c := range []rune{',', ';', '\t', '|'} {
		n := strings.Count(string(sample), string(c))
		if n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}
