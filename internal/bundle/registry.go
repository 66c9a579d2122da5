// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package bundle

// addDependency resolves the raw reference declared by declarer and
// merge-or-inserts the result into the flat registry and into the
// declarer's per binary view.
//
// Merging happens by leaf filename. A fresh instance whose name is already
// known donates its aliases to the existing entry and is dropped. The two
// views merge independently and hold independent instances, so an entry's
// alias set in a per binary view reflects what was known when that binary
// declared it, while the flat entry keeps accumulating.
//
// References that resolve outside the bundleable world still donate their
// aliases, but are never inserted.
func (b *Bundler) addDependency(ref, declarer string) error {
	fresh, err := b.newLibrary(ref, declarer)
	if err != nil {
		return err
	}

	inFlat := false

	for _, existing := range b.libs {
		if existing.Merge(fresh) {
			inFlat = true
		}
	}

	inFile := false

	for _, existing := range b.perFile[declarer] {
		if existing.Merge(fresh) {
			inFile = true
		}
	}

	if !b.settings.IsPrefixBundled(fresh.Prefix) {
		return nil
	}

	if !inFlat {
		b.libs = append(b.libs, fresh)
	}

	if !inFile {
		b.perFile[declarer] = append(b.perFile[declarer], fresh.Clone())
	}

	return nil
}
