// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"flag"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/shakfu/macdylibbundler/internal/bundle"
)

// Set on build.
var version = "dev"

const (
	name = "dylibbundler"

	usageMessage = `Usage of 'dylibbundler':
    dylibbundler [flags...]

Collects the non-system libraries a Mach-O binary depends on, copies them
into a bundle directory and rewrites the load commands so the binary runs
on machines that do not have the libraries installed:
    dylibbundler -od -b -x ./MyApp.app/Contents/MacOS/MyApp

All flags can also be provided via environment variable DYLIBBUNDLER_ARGS:
    DYLIBBUNDLER_ARGS="-cd -b" dylibbundler -x ./my_binary

or via file ./.dylibbundler-args, with one argument per line.
`
)

type flags struct {
	settings bundle.Settings

	archivePath string
	noCodesign  bool
	debug       bool
	update      bool
	version     bool

	flagSet *flag.FlagSet
}

func parseArgs(args []string, output io.Writer) (*flags, error) {
	flags := &flags{
		settings: bundle.Settings{
			DestDir:       bundle.DefaultDestDir,
			InsideLibPath: bundle.DefaultInsideLibPath,
			MissingMode:   bundle.MissingAsk,
		},
	}

	flags.initFlagSet(output)

	err := flags.parse(args)
	if err != nil {
		return nil, err
	}

	return flags, nil
}

func (f *flags) parse(args []string) error {
	err := f.flagSet.Parse(args)
	if err != nil {
		return &ParseArgsError{msg: "flag parse", err: err}
	}

	// With version flag, just print the version and exit. Using
	// [flag.ErrHelp] the main binary is supposed to return with a non
	// error exit code.
	if f.version {
		f.printVersionInformation()
		return &ParseArgsError{msg: "version requested", err: flag.ErrHelp}
	}

	if f.settings.OverwriteDir {
		f.settings.CreateDir = true
	}

	f.settings.Codesign = !f.noCodesign

	// The update check needs no files to work on.
	if f.update {
		return nil
	}

	if positional := f.flagSet.Args(); len(positional) > 0 {
		return f.fail("unexpected argument: "+positional[0], nil)
	}

	// Bundling without any file to fix is valid and just prepares the
	// destination directory.
	if len(f.settings.FixFiles) == 0 && !f.settings.BundleLibs {
		f.flagSet.Usage()
		return &ParseArgsError{msg: "no file to fix given", err: flag.ErrHelp}
	}

	if f.archivePath != "" && !f.settings.BundleLibs {
		return f.fail("archive output requires bundling (-b)", nil)
	}

	return nil
}

func (f *flags) initFlagSet(output io.Writer) {
	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = f.usage

	fixFiles := (*stringList)(&f.settings.FixFiles)
	flagSet.Var(
		fixFiles,
		"x",
		"Mach-O binary to fix. Flag may be used more than once. "+
			"Empty value clears the list.",
	)
	flagSet.Var(fixFiles, "fix-file", "alias for -x")

	flagSet.BoolVar(
		&f.settings.BundleLibs,
		"b",
		f.settings.BundleLibs,
		"copy the libraries to the output directory. Without it only the "+
			"fixed binaries themselves are rewritten.",
	)
	flagSet.BoolVar(
		&f.settings.BundleLibs, "bundle-deps", f.settings.BundleLibs,
		"alias for -b",
	)

	flagSet.StringVar(
		&f.settings.DestDir,
		"d",
		f.settings.DestDir,
		"directory the libraries are copied into, relative to the "+
			"current working directory",
	)
	flagSet.StringVar(
		&f.settings.DestDir, "dest-dir", f.settings.DestDir,
		"alias for -d",
	)

	flagSet.StringVar(
		&f.settings.InsideLibPath,
		"p",
		f.settings.InsideLibPath,
		"path the libraries are loaded from inside the bundle, usually "+
			"starting with @executable_path or @loader_path",
	)
	flagSet.StringVar(
		&f.settings.InsideLibPath, "install-path", f.settings.InsideLibPath,
		"alias for -p",
	)

	searchPaths := (*stringList)(&f.settings.SearchPaths)
	flagSet.Var(
		searchPaths,
		"s",
		"directory to scan for libraries missing from their declared "+
			"location. Flag may be used more than once. Empty value "+
			"clears the list.",
	)
	flagSet.Var(searchPaths, "search-path", "alias for -s")

	ignoredPrefixes := (*stringList)(&f.settings.IgnoredPrefixes)
	flagSet.Var(
		ignoredPrefixes,
		"i",
		"directory prefix whose libraries are left untouched. Flag may "+
			"be used more than once. Empty value clears the list.",
	)
	flagSet.Var(ignoredPrefixes, "ignore", "alias for -i")

	flagSet.BoolVar(
		&f.settings.OverwriteFiles,
		"of",
		f.settings.OverwriteFiles,
		"overwrite files in the output directory",
	)
	flagSet.BoolVar(
		&f.settings.OverwriteFiles, "overwrite-files", f.settings.OverwriteFiles,
		"alias for -of",
	)

	flagSet.BoolVar(
		&f.settings.OverwriteDir,
		"od",
		f.settings.OverwriteDir,
		"erase the output directory before bundling. Implies -cd.",
	)
	flagSet.BoolVar(
		&f.settings.OverwriteDir, "overwrite-dir", f.settings.OverwriteDir,
		"alias for -od",
	)

	flagSet.BoolVar(
		&f.settings.CreateDir,
		"cd",
		f.settings.CreateDir,
		"create the output directory if needed",
	)
	flagSet.BoolVar(
		&f.settings.CreateDir, "create-dir", f.settings.CreateDir,
		"alias for -cd",
	)

	flagSet.BoolVar(
		&f.noCodesign,
		"ns",
		f.noCodesign,
		"skip ad-hoc code signing of the modified files",
	)
	flagSet.BoolVar(
		&f.noCodesign, "no-codesign", f.noCodesign,
		"alias for -ns",
	)

	flagSet.TextVar(
		&f.settings.MissingMode,
		"missing",
		f.settings.MissingMode,
		"how to handle libraries that cannot be located: ask, skip, fail",
	)

	flagSet.BoolVar(
		&f.settings.Audit,
		"audit",
		f.settings.Audit,
		"verify after bundling that no installed file references "+
			"libraries outside the bundle",
	)

	flagSet.StringVar(
		&f.archivePath,
		"archive",
		f.archivePath,
		"write the bundled library directory as a CPIO archive to the "+
			"given path. Requires -b.",
	)

	flagSet.BoolVar(
		&f.debug,
		"debug",
		f.debug,
		"enable debug output",
	)

	flagSet.BoolVar(
		&f.update,
		"update",
		f.update,
		"check for a newer release and exit",
	)

	flagSet.BoolVar(
		&f.version,
		"version",
		f.version,
		"show version and exit",
	)

	f.flagSet = flagSet
}

// fail fails like flag does. It prints the error first and then usage.
func (f *flags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.flagSet.Output(), err.Error())

	f.flagSet.Usage()

	return err
}

func (f *flags) printVersionInformation() {
	fmt.Fprintf(f.flagSet.Output(), "%s: %s\n", name, version)

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		fmt.Fprintf(f.flagSet.Output(), "built with %s\n", buildInfo.GoVersion)
	}
}

func (f *flags) usage() {
	fmt.Fprint(f.flagSet.Output(), usageMessage)
	fmt.Fprintln(f.flagSet.Output(), "\nFlags:")
	f.flagSet.PrintDefaults()
}
