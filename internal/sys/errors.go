// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package sys

import "errors"

var (
	// ErrEmptyPath is returned if an empty path is given.
	ErrEmptyPath = errors.New("path must not be empty")

	// ErrTargetExists is returned if a copy target exists and overwriting
	// is not enabled.
	ErrTargetExists = errors.New("file already exists")

	// ErrNotRegularFile is returned if a copy source is not a regular file.
	ErrNotRegularFile = errors.New("not a regular file")
)
