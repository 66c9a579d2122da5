// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shakfu/macdylibbundler/internal/archive"
	"github.com/shakfu/macdylibbundler/internal/bundle"
	"github.com/shakfu/macdylibbundler/internal/macho"
)

const localConfigFile = ".dylibbundler-args"

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func newFlags(args []string, cfg IO) (*flags, error) {
	args, err := MergedArgs(args, os.DirFS("."), localConfigFile)
	if err != nil {
		return nil, err
	}

	flags, err := parseArgs(args, cfg.Stderr)
	if err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}

	return flags, nil
}

func run(ctx context.Context, flags *flags, cfg IO) error {
	bundler := bundle.New(flags.settings, macho.ExecTool{}, cfg.Stdin, cfg.Stdout)

	err := bundler.Run(ctx)
	if err != nil {
		return fmt.Errorf("bundle: %w", err)
	}

	if flags.archivePath != "" {
		err := archive.ExportFile(flags.settings.DestDir, flags.archivePath)
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}

		slog.Debug("Wrote bundle archive",
			slog.String("path", flags.archivePath))
	}

	return nil
}

func handleRunError(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	// Help and version requests end the run without an error.
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	// Parse errors have already been printed along with the usage.
	if errors.Is(err, &ParseArgsError{}) {
		return -1
	}

	fmt.Fprintf(stderr, "Error [%s]: %v\n", name, err)

	return -1
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	flags, err := newFlags(args, cfg)
	if err != nil {
		return handleRunError(err, cfg.Stderr)
	}

	setupLogging(cfg.Stderr, flags.debug)

	if flags.update {
		return handleRunError(checkForUpdate(cfg.Stdout), cfg.Stderr)
	}

	return handleRunError(run(ctx, flags, cfg), cfg.Stderr)
}
