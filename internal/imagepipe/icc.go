/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package imagepipe

import (
	"encoding/binary"
	"io"
)

// extractICC pulls the ICC profile out of a HEIF container: the colr
// property inside meta/iprp/ipco, when its colour type is an embedded
// profile. Returns nil for nclx (enum-only) colr boxes, malformed
// input, or profile-less files.
func extractICC(r io.Reader) []byte {
	for {
		hdr := make([]byte, 8)
		if _, err := io.ReadFull(r, hdr); err != nil {
			return nil
		}
		size := int64(binary.BigEndian.Uint32(hdr[:4]))
		boxType := string(hdr[4:8])

		var payload int64
		switch size {
		case 0:
			// Box runs to end of stream.
			payload = -1
		case 1:
			ext := make([]byte, 8)
			if _, err := io.ReadFull(r, ext); err != nil {
				return nil
			}
			payload = int64(binary.BigEndian.Uint64(ext)) - 16
		default:
			payload = size - 8
		}
		if payload < -1 {
			return nil
		}

		if boxType == "meta" {
			var body []byte
			var err error
			if payload < 0 {
				body, err = io.ReadAll(r)
			} else {
				body = make([]byte, payload)
				_, err = io.ReadFull(r, body)
			}
			if err != nil || len(body) < 4 {
				return nil
			}
			// meta is a full box: skip version and flags.
			return iccFromMeta(body[4:])
		}

		if payload < 0 {
			return nil
		}
		if _, err := io.CopyN(io.Discard, r, payload); err != nil {
			return nil
		}
	}
}

func iccFromMeta(meta []byte) []byte {
	colr := childBox(childBox(childBox(meta, "iprp"), "ipco"), "colr")
	if len(colr) < 4 {
		return nil
	}
	switch string(colr[:4]) {
	case "prof", "rICC":
		return colr[4:]
	}
	return nil
}

// childBox scans a flat box sequence for the first box of the given
// type and returns its payload.
func childBox(data []byte, boxType string) []byte {
	for len(data) >= 8 {
		size := binary.BigEndian.Uint32(data[:4])
		if size < 8 || int64(size) > int64(len(data)) {
			return nil
		}
		if string(data[4:8]) == boxType {
			return data[8:size]
		}
		data = data[size:]
	}
	return nil
}
