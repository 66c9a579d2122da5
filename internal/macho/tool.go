// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package macho

import "context"

// Info holds the load command metadata of a single Mach-O file.
type Info struct {
	// Dependencies are the library references declared by LC_LOAD_DYLIB and
	// LC_REEXPORT_DYLIB commands, in declaration order. References are the
	// raw strings from the load commands, so they may be absolute paths,
	// @rpath or @loader_path tokens, or bare filenames.
	Dependencies []string

	// RunPaths are the LC_RPATH entries, in declaration order.
	RunPaths []string

	// MalformedRunPaths are lines inside LC_RPATH commands that could not
	// be parsed. They are skipped, callers may report them.
	MalformedRunPaths []string
}

// Tool reads and rewrites Mach-O load commands.
type Tool interface {
	// Load reads the dependency and run path load commands of the file with
	// the given path.
	Load(ctx context.Context, path string) (Info, error)

	// ChangeDependency rewrites the library reference oldRef to newRef in
	// the given file.
	ChangeDependency(ctx context.Context, file, oldRef, newRef string) error

	// SetID sets the identification install name of the given library file.
	SetID(ctx context.Context, file, id string) error

	// ChangeRunPath rewrites the run path entry oldPath to newPath in the
	// given file.
	ChangeRunPath(ctx context.Context, file, oldPath, newPath string) error

	// Sign applies an ad-hoc code signature to the given file.
	Sign(ctx context.Context, file string) error

	// HostIsARM reports whether the host requires valid code signatures on
	// all executables, which is the case on Apple silicon machines.
	HostIsARM(ctx context.Context) bool
}
