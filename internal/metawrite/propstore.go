/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package metawrite

import "errors"

var errPropsUnsupported = errors.New("platform property store not available")

// writePlatformProps would push title/keywords/rating into the desktop
// shell's property store directly. The exiftool write is authoritative;
// the Xtra fields it sets are what Explorer reads, so this hook stays a
// no-op until a COM binding is worth carrying.
func writePlatformProps(path string, spec Spec) error {
	return errPropsUnsupported
}
