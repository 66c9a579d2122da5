// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package sys

import (
	"strings"

	"golang.org/x/sys/unix"
)

// FileExists reports whether the file with the given path exists.
//
// It probes with [unix.Access] so it works for any file type, including
// dangling symlink targets the caller intends to overwrite. Paths picked up
// from tool output may carry stray whitespace, so a failed probe is retried
// with the trimmed path.
func FileExists(path string) bool {
	if unix.Access(path, unix.F_OK) == nil {
		return true
	}

	trimmed := strings.TrimSpace(path)
	if trimmed == path {
		return false
	}

	return unix.Access(trimmed, unix.F_OK) == nil
}

// IsWritable reports whether the file with the given path can be written by
// the calling process.
func IsWritable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}
