// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shakfu/macdylibbundler/internal/sys"
)

// install copies the resolved libraries into the destination directory and
// rewrites all produced files.
//
// Libraries are processed in reverse discovery order, then the root
// binaries in reverse configuration order, so the deepest dependencies are
// finished first. Libraries surfacing only now are recorded but not
// installed anymore, a completed closure resolution leaves none.
func (b *Bundler) install(ctx context.Context) error {
	if b.settings.BundleLibs {
		err := b.createDestDir()
		if err != nil {
			return err
		}

		for idx := len(b.libs) - 1; idx >= 0; idx-- {
			lib := b.libs[idx]

			if lib.Prefix == "" || !sys.FileExists(lib.OriginalPath()) {
				slog.Warn("Cannot install library with unknown location",
					slog.String("library", lib.Name))

				continue
			}

			fmt.Fprintf(b.out, "\n* Processing dependency %s\n",
				lib.InnerPath(b.settings.InsideLibPath))

			err := b.installLibrary(ctx, lib)
			if err != nil {
				return err
			}
		}
	}

	for idx := len(b.settings.FixFiles) - 1; idx >= 0; idx-- {
		file := b.settings.FixFiles[idx]

		fmt.Fprintf(b.out, "\n* Processing %s\n", file)

		err := b.fixFile(ctx, file)
		if err != nil {
			return err
		}
	}

	return nil
}

// createDestDir ensures the destination directory exists, erasing a stale
// one first if enabled.
func (b *Bundler) createDestDir() error {
	destDir := b.settings.DestDir

	fmt.Fprintf(b.out, "* Checking output directory %s\n", destDir)

	exists := sys.FileExists(destDir)

	if exists && b.settings.OverwriteDir {
		fmt.Fprintf(b.out, "* Erasing old output directory %s\n", destDir)

		err := os.RemoveAll(destDir)
		if err != nil {
			return fmt.Errorf("erase output directory: %w", err)
		}

		exists = false
	}

	if exists {
		return nil
	}

	if !b.settings.CreateDir {
		return fmt.Errorf("%w: %s", ErrDestDirMissing, destDir)
	}

	fmt.Fprintf(b.out, "* Creating output directory %s\n", destDir)

	err := os.MkdirAll(destDir, 0o755)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	return nil
}

// installLibrary copies lib into the destination directory, stamps its new
// identity and rewrites the copy so it only references bundled locations.
func (b *Bundler) installLibrary(ctx context.Context, lib *Library) error {
	installPath := lib.InstallPath(b.settings.DestDir)

	err := sys.CopyFile(lib.OriginalPath(), installPath, b.settings.OverwriteFiles)
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", lib.OriginalPath(), installPath, err)
	}

	err = b.tool.SetID(ctx, installPath, lib.InnerPath(b.settings.InsideLibPath))
	if err != nil {
		return fmt.Errorf("change identity of library %s: %w", installPath, err)
	}

	err = b.rewriteDependencies(ctx, installPath)
	if err != nil {
		return err
	}

	b.rewriteRunPaths(ctx, lib.OriginalPath(), installPath)

	return b.sign(ctx, installPath)
}

// fixFile makes the root binary writable and rewrites it in place.
func (b *Bundler) fixFile(ctx context.Context, file string) error {
	err := sys.CopyFile(file, file, b.settings.OverwriteFiles)
	if err != nil {
		return fmt.Errorf("make %s writable: %w", file, err)
	}

	err = b.rewriteDependencies(ctx, file)
	if err != nil {
		return err
	}

	b.rewriteRunPaths(ctx, file, file)

	return b.sign(ctx, file)
}

// rewriteDependencies redirects all dependency references of file onto the
// bundled copies, based on the file's own dependency view. Freshly
// installed copies have not been scanned yet and are collected on the fly.
func (b *Bundler) rewriteDependencies(ctx context.Context, file string) error {
	if !b.collected[file] {
		fmt.Fprint(b.out, "    ")

		err := b.collect(ctx, file)
		if err != nil {
			return err
		}

		fmt.Fprintln(b.out)
	}

	fmt.Fprintf(b.out, "  * Fixing dependencies on %s\n", file)

	for _, lib := range b.perFile[file] {
		err := b.rewriteReference(ctx, lib, file)
		if err != nil {
			return err
		}
	}

	return nil
}

// rewriteReference redirects every known spelling of lib inside file to
// the in-bundle location.
func (b *Bundler) rewriteReference(ctx context.Context, lib *Library, file string) error {
	inner := lib.InnerPath(b.settings.InsideLibPath)

	err := b.changeReference(ctx, file, lib.OriginalPath(), inner)
	if err != nil {
		return err
	}

	for alias := range lib.Aliases() {
		err := b.changeReference(ctx, file, alias, inner)
		if err != nil {
			return err
		}
	}

	// Once any library was located through fallback search, references may
	// carry no directory part at all.
	if b.missingPrefixes {
		return b.changeReference(ctx, file, lib.Name, inner)
	}

	return nil
}

// changeReference rewrites one dependency reference. install_name_tool
// ignores references the file does not contain, so the canonical path,
// every alias and the bare name can be rewritten unconditionally.
func (b *Bundler) changeReference(ctx context.Context, file, oldRef, newRef string) error {
	err := b.tool.ChangeDependency(ctx, file, oldRef, newRef)
	if err != nil {
		return fmt.Errorf("fix dependencies of %s: %w", file, err)
	}

	return nil
}

// rewriteRunPaths replaces the run path entries recorded for originalFile
// with the in-bundle library path, on file. Failures are reported and
// skipped.
func (b *Bundler) rewriteRunPaths(ctx context.Context, originalFile, file string) {
	for _, runPath := range b.runPaths[originalFile] {
		err := b.tool.ChangeRunPath(ctx, file, runPath, b.settings.InsideLibPath)
		if err != nil {
			slog.Warn("Cannot change run path",
				slog.String("file", file),
				slog.String("path", runPath),
				slog.Any("error", err))
		}
	}
}

// sign applies an ad-hoc code signature to file. A rejected signature is
// retried once on a fresh inode, which works around codesign failing on
// binaries rewritten in place. If the retry fails as well the error is
// fatal on ARM hosts, where unsigned binaries do not run, and reported
// otherwise.
func (b *Bundler) sign(ctx context.Context, file string) error {
	if !b.settings.Codesign {
		return nil
	}

	err := b.tool.Sign(ctx, file)
	if err == nil {
		return nil
	}

	slog.Warn("Ad-hoc signing failed, retrying on a fresh inode",
		slog.String("file", file),
		slog.Any("error", err))

	err = b.resign(ctx, file)
	if err == nil {
		return nil
	}

	if b.tool.HostIsARM(ctx) {
		return fmt.Errorf("sign %s: %w", file, err)
	}

	slog.Warn("Cannot sign file",
		slog.String("file", file),
		slog.Any("error", err))

	return nil
}

// resign rewrites file onto a new inode and signs it again.
func (b *Bundler) resign(ctx context.Context, file string) error {
	err := refreshInode(file)
	if err != nil {
		return fmt.Errorf("refresh inode: %w", err)
	}

	return b.tool.Sign(ctx, file)
}

// refreshInode replaces file with a copy of itself under a new inode.
func refreshInode(file string) error {
	dir, err := os.MkdirTemp("", "dylibbundler")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	tmp := filepath.Join(dir, filepath.Base(file))

	err = sys.CopyFile(file, tmp, true)
	if err != nil {
		return err
	}

	err = os.Rename(tmp, file)
	if err == nil {
		return nil
	}

	// Rename fails across file systems. The copy removes the target first,
	// so the result still lands on a new inode.
	return sys.CopyFile(tmp, file, true)
}
