// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package bundle

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/shakfu/macdylibbundler/internal/sys"
)

// runPathTokenRE matches the run path token prefix of a reference, like
// @rpath/ or @loader_path/.
var runPathTokenRE = regexp.MustCompile(`^@[a-z_]+path/`)

// hasRunPathToken reports whether the reference needs run path resolution
// instead of plain canonicalization.
func hasRunPathToken(ref string) bool {
	return strings.HasPrefix(ref, "@rpath") ||
		strings.HasPrefix(ref, "@loader_path")
}

func stripRunPathToken(ref string) string {
	return runPathTokenRE.ReplaceAllString(ref, "")
}

func ensureTrailingSlash(dir string) string {
	if dir == "" || strings.HasSuffix(dir, "/") {
		return dir
	}

	return dir + "/"
}

// newLibrary resolves the raw reference declared by declarer into a
// [Library].
//
// Token references go through run path resolution, everything else is
// canonicalized directly. A reference that cannot be canonicalized is kept
// literally with a warning, later steps may still recover the location
// through the search paths. If the resolved file is absent from its stated
// location, the search path list is scanned, in the worst case after
// seeding it from the dynamic linker environment, then the missing library
// policy applies.
func (b *Bundler) newLibrary(ref, declarer string) (*Library, error) {
	ref = strings.TrimRight(ref, " \f\n\r\t\v")

	var original string

	if hasRunPathToken(ref) {
		resolved, err := b.resolveRunPathReference(ref, declarer)
		if err != nil {
			return nil, err
		}

		original = resolved
	} else {
		resolved, err := sys.Realpath(ref)
		if err != nil {
			slog.Warn("Cannot resolve path", slog.String("path", ref))

			original = ref
		} else {
			original = resolved
		}
	}

	lib := &Library{}
	if original != ref {
		lib.AddAlias(ref)
	}

	idx := strings.LastIndex(original, "/")
	lib.Name = original[idx+1:]
	lib.Prefix = original[:idx+1]

	if !b.settings.IsPrefixBundled(lib.Prefix) {
		return lib, nil
	}

	if lib.Prefix == "" || !sys.FileExists(lib.OriginalPath()) {
		b.seedSearchPaths()

		if dir, found := b.findInSearchPaths(lib.Name); found {
			fmt.Fprintf(b.out, "\nFOUND %s in %s\n", lib.Name, dir)

			lib.Prefix = dir
			b.missingPrefixes = true
		}
	}

	if !b.settings.IsPrefixIgnored(lib.Prefix) &&
		(lib.Prefix == "" || !sys.FileExists(lib.OriginalPath())) {
		slog.Warn("Library has an incomplete name, location unknown",
			slog.String("library", lib.Name))

		b.missingPrefixes = true

		dir, err := b.askForDirectory(lib.Name)
		if err != nil {
			return nil, err
		}

		if dir != "" {
			lib.Prefix = dir
		}
	}

	return lib, nil
}

// resolveRunPathReference resolves a token reference to a real location.
//
// Resolutions are cached by the raw reference, shared across declaring
// binaries. A cache miss first tries the token substituted with the
// declarer's directory, then each declared run path entry of the declarer
// with the token suffix appended, then the search paths, and finally the
// missing library policy. An unresolvable reference is returned as is so
// the caller can apply its own fallbacks.
func (b *Bundler) resolveRunPathReference(ref, declarer string) (string, error) {
	if full, hit := b.runPathCache[ref]; hit {
		return full, nil
	}

	if full, found := b.substituteToken(ref, declarer, ref); found {
		return full, nil
	}

	suffix := stripRunPathToken(ref)

	for _, runPath := range b.runPaths[declarer] {
		candidate := ensureTrailingSlash(runPath) + suffix

		if full, found := b.substituteToken(candidate, declarer, ref); found {
			return full, nil
		}
	}

	for _, dir := range b.searchPaths {
		if sys.FileExists(dir + suffix) {
			return dir + suffix, nil
		}
	}

	slog.Warn("Cannot get path for reference", slog.String("reference", ref))

	dir, err := b.askForDirectory(suffix)
	if err != nil {
		return "", err
	}

	if dir == "" {
		return ref, nil
	}

	full := dir + suffix
	if resolved, err := sys.Realpath(full); err == nil {
		full = resolved
	}

	return full, nil
}

// substituteToken checks one candidate location for the raw reference ref.
// Tokens in the candidate are substituted with the declarer's directory.
// Successful resolutions are cached. Resolving a reference against itself
// cannot succeed, that happens when a stored location is re-resolved
// without its declarer, where only the cache and the search paths apply.
func (b *Bundler) substituteToken(candidate, declarer, ref string) (string, bool) {
	if declarer == ref {
		return "", false
	}

	declarerDir := declarer[:strings.LastIndex(declarer, "/")+1]

	probe := candidate

	switch {
	case strings.Contains(candidate, "@loader_path"):
		probe = strings.Replace(candidate, "@loader_path/", declarerDir, 1)
	case strings.Contains(candidate, "@rpath"):
		probe = strings.Replace(candidate, "@rpath/", declarerDir, 1)
	}

	resolved, err := sys.Realpath(probe)
	if err != nil {
		return "", false
	}

	b.runPathCache[ref] = resolved

	return resolved, true
}

// seedSearchPaths populates the search path list from the environment
// variables the dynamic linker itself consults. Only happens as long as no
// search path is configured at all.
func (b *Bundler) seedSearchPaths() {
	if len(b.searchPaths) > 0 {
		return
	}

	joined := env.Str("DYLD_LIBRARY_PATH") + ":" +
		env.Str("DYLD_FALLBACK_FRAMEWORK_PATH") + ":" +
		env.Str("DYLD_FALLBACK_LIBRARY_PATH")

	for _, dir := range strings.Split(joined, ":") {
		if dir == "" {
			continue
		}

		b.searchPaths = append(b.searchPaths, ensureTrailingSlash(dir))
	}
}

func (b *Bundler) findInSearchPaths(name string) (string, bool) {
	for _, dir := range b.searchPaths {
		if sys.FileExists(dir + name) {
			return dir, true
		}
	}

	return "", false
}

func (b *Bundler) addSearchPath(dir string) {
	b.searchPaths = append(b.searchPaths, ensureTrailingSlash(dir))
}
