// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

// Package archive exports a bundled library directory as a CPIO archive,
// the payload format used by macOS installer packages.
package archive
