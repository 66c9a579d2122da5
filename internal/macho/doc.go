// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

// Package macho reads and rewrites Mach-O load command metadata through the
// system binary tools. Reading goes through otool, rewriting through
// install_name_tool and signing through codesign. The package never parses
// Mach-O files itself, so it works with any file the installed tools accept,
// including fat binaries.
package macho
