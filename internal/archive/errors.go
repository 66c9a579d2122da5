// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package archive

import "errors"

var (
	// ErrNotRegularFile is returned if a source file is not a regular
	// file.
	ErrNotRegularFile = errors.New("source is not a regular file")

	// ErrUnsupportedFile is returned for file types that cannot be
	// archived, like sockets or device nodes.
	ErrUnsupportedFile = errors.New("unsupported file type")
)
