// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shakfu/macdylibbundler/internal/sys"
)

// audit reloads every produced file and reports dependency references
// that still point outside the bundle. The loads run concurrently, no
// file is written anymore at this point. Findings are warnings, a bundle
// may legitimately keep references to ignored prefixes.
func (b *Bundler) audit(ctx context.Context) error {
	fmt.Fprintln(b.out, "\n* Verifying bundle")

	files := b.auditTargets()
	findings := make([][]string, len(files))

	group, ctx := errgroup.WithContext(ctx)

	for idx, file := range files {
		group.Go(func() error {
			info, err := b.tool.Load(ctx, file)
			if err != nil {
				return fmt.Errorf("verify %s: %w", file, err)
			}

			for _, ref := range info.Dependencies {
				if b.escapesBundle(ref) {
					findings[idx] = append(findings[idx], ref)
				}
			}

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return err
	}

	for idx, refs := range findings {
		for _, ref := range refs {
			slog.Warn("Reference still points outside the bundle",
				slog.String("file", files[idx]),
				slog.String("reference", ref))
		}
	}

	return nil
}

// auditTargets returns all files the run has written, in install order.
// Libraries that could not be installed have no file to verify and are
// left out.
func (b *Bundler) auditTargets() []string {
	var files []string

	if b.settings.BundleLibs {
		for idx := len(b.libs) - 1; idx >= 0; idx-- {
			path := b.libs[idx].InstallPath(b.settings.DestDir)
			if !sys.FileExists(path) {
				continue
			}

			files = append(files, path)
		}
	}

	return append(files, b.settings.FixFiles...)
}

// escapesBundle reports whether the reference is subject to bundling but
// does not point into the bundle.
func (b *Bundler) escapesBundle(ref string) bool {
	if strings.HasPrefix(ref, b.settings.InsideLibPath) {
		return false
	}

	if strings.Contains(ref, ".framework") {
		return false
	}

	prefix := ""
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		prefix = ref[:idx+1]
	}

	return b.settings.IsPrefixBundled(prefix)
}
