// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package bundle

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shakfu/macdylibbundler/internal/sys"
)

// MissingMode selects how a library that cannot be located anywhere is
// handled.
type MissingMode string

const (
	// MissingAsk prompts interactively for a directory containing the
	// library. This is the default.
	MissingAsk MissingMode = "ask"

	// MissingSkip records the library with an unknown location and moves
	// on.
	MissingSkip MissingMode = "skip"

	// MissingFail aborts the run.
	MissingFail MissingMode = "fail"
)

func (m MissingMode) String() string {
	return string(m)
}

func (m MissingMode) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

func (m *MissingMode) UnmarshalText(text []byte) error {
	mode := MissingMode(text)

	switch mode {
	case MissingAsk, MissingSkip, MissingFail:
		*m = mode
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMissingMode, text)
	}
}

// askForDirectory determines the location of the library with the given
// name after all resolution steps failed, according to the configured
// missing library policy.
//
// The returned directory is slash terminated, verified to contain the
// library and appended to the search path list. An empty directory with a
// nil error means the caller continues without a location. Interactive
// prompts that cannot read any input degrade to that, so runs without a
// terminal never hang.
func (b *Bundler) askForDirectory(name string) (string, error) {
	switch b.settings.MissingMode {
	case MissingSkip:
		return "", nil
	case MissingFail:
		return "", fmt.Errorf("%w: %s", ErrMissingLibrary, name)
	default:
	}

	// An earlier prompt may have added the right directory already.
	if dir, found := b.findInSearchPaths(name); found {
		b.confirmFound(dir + name)
		return dir, nil
	}

	for {
		fmt.Fprint(b.out,
			"Please specify the directory where this library is located "+
				"(or enter 'quit' to abort): ")

		if !b.prompts.Scan() {
			slog.Warn("No input available for library location",
				slog.String("library", name))

			return "", nil
		}

		input := strings.TrimSpace(b.prompts.Text())
		if input == "" {
			continue
		}

		if input == "quit" {
			return "", fmt.Errorf("%w: %s", ErrPromptAborted, name)
		}

		dir := ensureTrailingSlash(input)
		if !sys.FileExists(dir + name) {
			fmt.Fprintf(b.out, "%s does not exist. Try again\n", dir+name)
			continue
		}

		b.confirmFound(dir + name)
		b.addSearchPath(dir)

		return dir, nil
	}
}

func (b *Bundler) confirmFound(path string) {
	fmt.Fprintf(b.out,
		"%s was found. Manually located libraries may not bundle "+
			"correctly, check the result with 'otool -L'\n", path)
}
