// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package metadata

import (
	"fmt"
	"strings"
)

// ResizeImage rewrites an Amazon-hosted poster URL to request an image of the
// given height. The last four characters (the ".jpg" extension) are replaced.
// URLs shorter than that, and "N/A", are returned unchanged.
func ResizeImage(url string, size int) string {
	if len(url) < 4 || strings.EqualFold(url, "N/A") {
		return url
	}
	return fmt.Sprintf("%s._V1_SY%d.jpg", url[:len(url)-4], size)
}
