// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

// Package cmd provides the CLI command entry point for dylibbundler. It
// handles flag parsing, error handling, and output handling.
package cmd
