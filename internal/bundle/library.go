// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package bundle

import (
	"iter"
	"slices"
)

// Library is a resolved shared library dependency. Identity is the
// canonical leaf filename, so the same physical library referenced through
// different symlinks collapses into a single entry that accumulates the
// alternative spellings as aliases.
type Library struct {
	// Name is the canonical leaf filename.
	Name string

	// Prefix is the directory the library was resolved in, with a
	// trailing slash. Empty if the location is unknown.
	Prefix string

	// aliases are alternative reference spellings in discovery order,
	// without duplicates.
	aliases []string
}

// OriginalPath returns the resolved source location of the library.
func (l *Library) OriginalPath() string {
	return l.Prefix + l.Name
}

// InstallPath returns the physical path of the library inside destDir.
//
// Plain string concatenation. destDir is already slash terminated and may
// be relative, it must not be cleaned.
func (l *Library) InstallPath(destDir string) string {
	return destDir + l.Name
}

// InnerPath returns the logical in-bundle reference that is written into
// the binaries depending on this library.
//
// Plain string concatenation. insideLibPath usually starts with an
// @executable_path token that path cleaning would destroy.
func (l *Library) InnerPath(insideLibPath string) string {
	return insideLibPath + l.Name
}

// AddAlias records an alternative spelling of a reference to this library.
// Duplicates are dropped, every alias costs one rewrite call per fixed
// binary.
func (l *Library) AddAlias(alias string) {
	if !slices.Contains(l.aliases, alias) {
		l.aliases = append(l.aliases, alias)
	}
}

// Aliases returns an iterator over the recorded aliases in discovery
// order.
func (l *Library) Aliases() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, alias := range l.aliases {
			if !yield(alias) {
				return
			}
		}
	}
}

// Merge absorbs the aliases of other if both entries resolve to the same
// leaf filename and reports whether it did.
func (l *Library) Merge(other *Library) bool {
	if other.Name != l.Name {
		return false
	}

	for _, alias := range other.aliases {
		l.AddAlias(alias)
	}

	return true
}

// Clone returns an independent copy. The flat and the per binary registry
// views hold separate instances, so their alias sets can diverge.
func (l *Library) Clone() *Library {
	clone := *l
	clone.aliases = slices.Clone(l.aliases)

	return &clone
}
