// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package bundle

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/shakfu/macdylibbundler/internal/macho"
)

// Bundler carries the complete state of a single bundling run: the
// resolved library registry, the per binary dependency views, the run path
// cache and the search path list. It is not safe for concurrent use, a
// run executes strictly sequentially, see [Bundler.Run].
type Bundler struct {
	settings Settings
	tool     macho.Tool
	out      io.Writer
	prompts  *bufio.Scanner

	// libs is the flat registry in discovery order. perFile holds the
	// per binary views with independent instances.
	libs    []*Library
	perFile map[string][]*Library

	// collected memoizes which files have been scanned.
	collected map[string]bool

	// runPaths holds the declared run path entries per scanned file.
	// runPathCache maps raw run path references to their resolution,
	// shared across declaring binaries.
	runPaths     map[string][]string
	runPathCache map[string]string

	searchPaths []string

	// missingPrefixes is raised once any library had to be located through
	// fallback search. Rewrites then additionally patch bare filename
	// references, see rewriteReference.
	missingPrefixes bool
}

// New creates a Bundler for the given settings. Interactive prompts read
// from in, progress and report output goes to out. Warnings are emitted
// through the default slog logger.
//
// All directory valued settings are slash terminated on the way in, the
// bundling stages rely on that.
func New(settings Settings, tool macho.Tool, in io.Reader, out io.Writer) *Bundler {
	settings.DestDir = ensureTrailingSlash(settings.DestDir)
	settings.InsideLibPath = ensureTrailingSlash(settings.InsideLibPath)

	ignored := make([]string, 0, len(settings.IgnoredPrefixes))
	for _, prefix := range settings.IgnoredPrefixes {
		ignored = append(ignored, ensureTrailingSlash(prefix))
	}

	settings.IgnoredPrefixes = ignored

	searchPaths := make([]string, 0, len(settings.SearchPaths))
	for _, dir := range settings.SearchPaths {
		searchPaths = append(searchPaths, ensureTrailingSlash(dir))
	}

	return &Bundler{
		settings:     settings,
		tool:         tool,
		out:          out,
		prompts:      bufio.NewScanner(in),
		perFile:      make(map[string][]*Library),
		collected:    make(map[string]bool),
		runPaths:     make(map[string][]string),
		runPathCache: make(map[string]string),
		searchPaths:  searchPaths,
	}
}

// Run resolves the dependency closure of all configured root binaries,
// prints the dependency report and, if enabled, installs the closure into
// the destination directory and rewrites all files.
//
// Resolution, installation and rewriting are strictly sequential.
// Libraries are installed in reverse discovery order, then the root
// binaries in reverse configuration order. Only the optional verification
// scan at the end runs concurrently, on files that are not written
// anymore.
func (b *Bundler) Run(ctx context.Context) error {
	fmt.Fprint(b.out, "* Collecting dependencies")

	for _, file := range b.settings.FixFiles {
		err := b.collect(ctx, file)
		if err != nil {
			return err
		}
	}

	err := b.resolveClosure(ctx)
	if err != nil {
		return err
	}

	b.report()

	err = b.install(ctx)
	if err != nil {
		return err
	}

	if b.settings.Audit {
		err = b.audit(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}

// Libraries returns the resolved libraries in discovery order.
func (b *Bundler) Libraries() []*Library {
	return b.libs
}

// report prints all resolved libraries with their alternative spellings.
func (b *Bundler) report() {
	fmt.Fprintln(b.out)

	for _, lib := range b.libs {
		fmt.Fprintf(b.out, "\n * %s from %s\n", lib.Name, lib.Prefix)

		for alias := range lib.Aliases() {
			fmt.Fprintf(b.out, "     symlink --> %s\n", alias)
		}
	}

	fmt.Fprintln(b.out)
}
