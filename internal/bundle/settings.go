// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package bundle

import (
	"slices"
	"strings"
)

// Default locations used when the command line does not override them.
const (
	DefaultDestDir       = "./libs/"
	DefaultInsideLibPath = "@executable_path/../libs/"
)

// Settings holds the configuration of a bundling run. All bundling stages
// treat it as read-only.
type Settings struct {
	// FixFiles are the root binaries whose dependencies are resolved and
	// rewritten, in command line order.
	FixFiles []string

	// BundleLibs enables copying the resolved libraries into DestDir.
	// Without it only the report is produced and the root binaries are
	// rewritten.
	BundleLibs bool

	// DestDir is the directory the libraries are copied into, with a
	// trailing slash.
	DestDir string

	// InsideLibPath is the logical in-bundle prefix rewritten into the
	// fixed binaries, with a trailing slash. It usually starts with an
	// @executable_path token, so it must never go through path cleaning.
	InsideLibPath string

	// SearchPaths are additional directories scanned for libraries that
	// are not present at their declared location.
	SearchPaths []string

	// IgnoredPrefixes are directory prefixes, with trailing slashes, whose
	// libraries are never bundled.
	IgnoredPrefixes []string

	OverwriteFiles bool
	OverwriteDir   bool
	CreateDir      bool
	Codesign       bool

	// MissingMode selects how libraries that cannot be located anywhere
	// are handled. The zero value behaves like [MissingAsk].
	MissingMode MissingMode

	// Audit enables a verification scan of the installed files after
	// bundling.
	Audit bool
}

// IsSystemPath reports whether the path is owned by the operating system.
// System libraries are expected on every machine and never bundled.
func IsSystemPath(path string) bool {
	return strings.HasPrefix(path, "/usr/lib/") ||
		strings.HasPrefix(path, "/System/Library/")
}

// IsPrefixIgnored reports whether the prefix exactly matches one of the
// configured ignored prefixes.
func (s Settings) IsPrefixIgnored(prefix string) bool {
	return slices.Contains(s.IgnoredPrefixes, prefix)
}

// IsPrefixBundled reports whether libraries under the given prefix are
// subject to bundling at all. Frameworks, anything already relative to the
// executable, system libraries and ignored prefixes are not.
func (s Settings) IsPrefixBundled(prefix string) bool {
	if strings.Contains(prefix, ".framework") {
		return false
	}

	if strings.Contains(prefix, "@executable_path") {
		return false
	}

	if IsSystemPath(prefix) {
		return false
	}

	return !s.IsPrefixIgnored(prefix)
}
