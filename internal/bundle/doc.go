// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

// Package bundle resolves the transitive shared library dependencies of
// Mach-O binaries and rewires them into a relocatable bundle. A [Bundler]
// discovers the dependency closure through the metadata tool, copies the
// libraries into the destination directory and rewrites install names, run
// paths and code signatures so the fixed binaries only reference the
// bundled copies.
package bundle
