// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shakfu/macdylibbundler/internal/sys"
)

// collect scans the file with the given path and feeds every dependency
// reference into the registry. Scans are memoized, a file is read only
// once per run. Framework and system references are skipped before they
// reach the registry.
func (b *Bundler) collect(ctx context.Context, file string) error {
	if b.collected[file] {
		return nil
	}

	info, err := b.tool.Load(ctx, file)
	if err != nil {
		return fmt.Errorf("read dependencies of %s: %w", file, err)
	}

	b.runPaths[file] = info.RunPaths

	for _, line := range info.MalformedRunPaths {
		slog.Warn("Unexpected run path command format",
			slog.String("file", file),
			slog.String("line", strings.TrimSpace(line)))
	}

	fmt.Fprint(b.out, ".")

	for _, ref := range info.Dependencies {
		fmt.Fprint(b.out, ".")

		if strings.Contains(ref, ".framework") {
			continue
		}

		if IsSystemPath(ref) {
			continue
		}

		err := b.addDependency(ref, file)
		if err != nil {
			return err
		}
	}

	b.collected[file] = true

	return nil
}

// resolveClosure repeatedly scans every registered library until a full
// pass adds no new entries. Scanning library N can register new libraries
// that the same sweep picks up, the pass comparison catches additions made
// while the list was walked.
func (b *Bundler) resolveClosure(ctx context.Context) error {
	for {
		before := len(b.libs)

		for idx := 0; idx < len(b.libs); idx++ {
			fmt.Fprint(b.out, ".")

			lib := b.libs[idx]

			file := lib.OriginalPath()
			if hasRunPathToken(file) {
				resolved, err := b.resolveRunPathReference(file, file)
				if err != nil {
					return err
				}

				file = resolved
			}

			if lib.Prefix == "" || hasRunPathToken(file) || !sys.FileExists(file) {
				if !b.collected[file] {
					b.collected[file] = true

					slog.Warn("Cannot scan library with unknown location",
						slog.String("library", lib.Name))
				}

				continue
			}

			err := b.collect(ctx, file)
			if err != nil {
				return err
			}
		}

		if len(b.libs) == before {
			fmt.Fprintln(b.out)
			return nil
		}
	}
}
