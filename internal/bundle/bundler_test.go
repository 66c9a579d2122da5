// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package bundle_test

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/shakfu/macdylibbundler/internal/bundle"
	"github.com/shakfu/macdylibbundler/internal/macho"
	"github.com/shakfu/macdylibbundler/internal/sys"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testDir returns a temp dir with symlinks resolved, so directories match
// the canonicalized locations the resolver produces.
func testDir(t *testing.T) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	return dir
}

func writeBinary(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	require.NoError(t, err)

	err = os.WriteFile(path, []byte(name+" mach-o"), 0o755)
	require.NoError(t, err)

	return path
}

func clearLinkerEnv(t *testing.T) {
	t.Helper()

	t.Setenv("DYLD_LIBRARY_PATH", "")
	t.Setenv("DYLD_FALLBACK_FRAMEWORK_PATH", "")
	t.Setenv("DYLD_FALLBACK_LIBRARY_PATH", "")
}

func TestBundlerCollectsTransitiveDependencies(t *testing.T) {
	dir := testDir(t)

	app := writeBinary(t, dir, "bin/main")
	libFunc1 := writeBinary(t, dir, "libfunc1.dylib")
	libFunc2 := writeBinary(t, dir, "libfunc2.dylib")

	tool := &macho.FakeTool{
		Infos: map[string]macho.Info{
			app: {
				Dependencies: []string{
					libFunc1,
					"/usr/lib/libSystem.B.dylib",
					"/Library/Frameworks/Foo.framework/Versions/A/Foo",
				},
			},
			libFunc1: {Dependencies: []string{libFunc2}},
			libFunc2: {},
		},
	}

	var out bytes.Buffer

	bundler := bundle.New(bundle.Settings{
		FixFiles:      []string{app},
		InsideLibPath: bundle.DefaultInsideLibPath,
	}, tool, strings.NewReader(""), &out)

	err := bundler.Run(t.Context())
	require.NoError(t, err)

	var names []string

	for _, lib := range bundler.Libraries() {
		names = append(names, lib.Name)
		assert.Equal(t, dir+"/", lib.Prefix)
	}

	assert.Equal(t, []string{"libfunc1.dylib", "libfunc2.dylib"}, names)
	assert.Contains(t, out.String(), "* Collecting dependencies")
	assert.Contains(t, out.String(), " * libfunc1.dylib from "+dir+"/")

	// Only the direct dependency is referenced by the root binary, and
	// the system and framework references are left alone.
	expected := []macho.ToolCall{
		{
			Op:   "change",
			File: app,
			Old:  libFunc1,
			New:  "@executable_path/../libs/libfunc1.dylib",
		},
	}
	assert.Equal(t, expected, tool.Calls)
}

func TestBundlerMergesAliases(t *testing.T) {
	dir := testDir(t)

	appOne := writeBinary(t, dir, "main1")
	appTwo := writeBinary(t, dir, "main2")
	libReal := writeBinary(t, dir, "libfunc1.1.dylib")

	link := filepath.Join(dir, "libfunc1.dylib")
	require.NoError(t, os.Symlink(libReal, link))

	tool := &macho.FakeTool{
		Infos: map[string]macho.Info{
			appOne:  {Dependencies: []string{link}},
			appTwo:  {Dependencies: []string{libReal}},
			libReal: {},
		},
	}

	var out bytes.Buffer

	bundler := bundle.New(bundle.Settings{
		FixFiles:      []string{appOne, appTwo},
		InsideLibPath: bundle.DefaultInsideLibPath,
	}, tool, strings.NewReader(""), &out)

	err := bundler.Run(t.Context())
	require.NoError(t, err)

	libs := bundler.Libraries()
	require.Len(t, libs, 1)

	assert.Equal(t, "libfunc1.1.dylib", libs[0].Name)
	assert.Equal(t, dir+"/", libs[0].Prefix)
	assert.Equal(t, []string{link}, slices.Collect(libs[0].Aliases()))
	assert.Contains(t, out.String(), "symlink --> "+link)

	// Root binaries are fixed in reverse order. The one that declared the
	// canonical name gets one rewrite, the one that declared the symlink
	// gets the alias rewritten as well.
	inner := "@executable_path/../libs/libfunc1.1.dylib"
	expected := []macho.ToolCall{
		{Op: "change", File: appTwo, Old: libReal, New: inner},
		{Op: "change", File: appOne, Old: libReal, New: inner},
		{Op: "change", File: appOne, Old: link, New: inner},
	}
	assert.Equal(t, expected, tool.Calls)
}

func TestBundlerResolvesRunPathReferences(t *testing.T) {
	dir := testDir(t)

	app := writeBinary(t, dir, "bin/main")
	libFunc1 := writeBinary(t, dir, "lib/libfunc1.dylib")
	libFunc2 := writeBinary(t, dir, "lib/libfunc2.dylib")
	libDir := filepath.Join(dir, "lib")

	tool := &macho.FakeTool{
		Infos: map[string]macho.Info{
			app: {
				Dependencies: []string{"@rpath/libfunc1.dylib"},
				RunPaths:     []string{libDir},
			},
			libFunc1: {Dependencies: []string{"@loader_path/libfunc2.dylib"}},
			libFunc2: {},
		},
	}

	var out bytes.Buffer

	bundler := bundle.New(bundle.Settings{
		FixFiles:      []string{app},
		InsideLibPath: bundle.DefaultInsideLibPath,
	}, tool, strings.NewReader(""), &out)

	err := bundler.Run(t.Context())
	require.NoError(t, err)

	libs := bundler.Libraries()
	require.Len(t, libs, 2)

	assert.Equal(t, libDir+"/", libs[0].Prefix)
	assert.Equal(t,
		[]string{"@rpath/libfunc1.dylib"},
		slices.Collect(libs[0].Aliases()),
	)
	assert.Equal(t, libDir+"/", libs[1].Prefix)
	assert.Equal(t,
		[]string{"@loader_path/libfunc2.dylib"},
		slices.Collect(libs[1].Aliases()),
	)

	inner := "@executable_path/../libs/libfunc1.dylib"
	expected := []macho.ToolCall{
		{Op: "change", File: app, Old: libFunc1, New: inner},
		{Op: "change", File: app, Old: "@rpath/libfunc1.dylib", New: inner},
		{Op: "rpath", File: app, Old: libDir, New: "@executable_path/../libs/"},
	}
	assert.Equal(t, expected, tool.Calls)
}

func TestBundlerReusesRunPathResolution(t *testing.T) {
	clearLinkerEnv(t)

	dir := testDir(t)

	appOne := writeBinary(t, dir, "bin/main1")
	appTwo := writeBinary(t, dir, "tools/main2")
	libFunc1 := writeBinary(t, dir, "lib/libfunc1.dylib")

	// Only the first binary carries a run path entry, and that entry is
	// itself token valued. The second binary has no run paths at all, so
	// its reference can only resolve through the resolution recorded for
	// the first one. In fail mode a fresh lookup would abort the run.
	tool := &macho.FakeTool{
		Infos: map[string]macho.Info{
			appOne: {
				Dependencies: []string{"@rpath/libfunc1.dylib"},
				RunPaths:     []string{"@loader_path/../lib"},
			},
			appTwo: {
				Dependencies: []string{"@rpath/libfunc1.dylib"},
			},
			libFunc1: {},
		},
	}

	var out bytes.Buffer

	bundler := bundle.New(bundle.Settings{
		FixFiles:      []string{appOne, appTwo},
		InsideLibPath: bundle.DefaultInsideLibPath,
		MissingMode:   bundle.MissingFail,
	}, tool, strings.NewReader(""), &out)

	err := bundler.Run(t.Context())
	require.NoError(t, err)

	libs := bundler.Libraries()
	require.Len(t, libs, 1)
	assert.Equal(t, dir+"/lib/", libs[0].Prefix)
	assert.Equal(t,
		[]string{"@rpath/libfunc1.dylib"},
		slices.Collect(libs[0].Aliases()),
	)

	inner := "@executable_path/../libs/libfunc1.dylib"
	expected := []macho.ToolCall{
		{Op: "change", File: appTwo, Old: libFunc1, New: inner},
		{Op: "change", File: appTwo, Old: "@rpath/libfunc1.dylib", New: inner},
		{Op: "change", File: appOne, Old: libFunc1, New: inner},
		{Op: "change", File: appOne, Old: "@rpath/libfunc1.dylib", New: inner},
		{Op: "rpath", File: appOne, Old: "@loader_path/../lib", New: "@executable_path/../libs/"},
	}
	assert.Equal(t, expected, tool.Calls)
}

func TestBundlerInstall(t *testing.T) {
	dir := testDir(t)

	app := writeBinary(t, dir, "bin/main")
	libFunc1 := writeBinary(t, dir, "lib/libfunc1.dylib")
	libFunc2 := writeBinary(t, dir, "lib/libfunc2.dylib")
	libDir := filepath.Join(dir, "lib")

	destDir := filepath.Join(dir, "bundle", "libs") + "/"
	destFunc1 := destDir + "libfunc1.dylib"
	destFunc2 := destDir + "libfunc2.dylib"

	tool := &macho.FakeTool{
		Infos: map[string]macho.Info{
			app: {
				Dependencies: []string{"@rpath/libfunc1.dylib"},
				RunPaths:     []string{libDir},
			},
			libFunc1: {
				Dependencies: []string{libFunc2},
				RunPaths:     []string{libDir},
			},
			libFunc2: {},
			// The installed copies carry the same load commands as their
			// sources.
			destFunc1: {
				Dependencies: []string{libFunc2},
				RunPaths:     []string{libDir},
			},
			destFunc2: {},
		},
	}

	var out bytes.Buffer

	bundler := bundle.New(bundle.Settings{
		FixFiles:      []string{app},
		BundleLibs:    true,
		DestDir:       filepath.Join(dir, "bundle", "libs"),
		InsideLibPath: bundle.DefaultInsideLibPath,
		CreateDir:     true,
		Codesign:      true,
		Audit:         true,
	}, tool, strings.NewReader(""), &out)

	err := bundler.Run(t.Context())
	require.NoError(t, err)

	for _, path := range []string{destFunc1, destFunc2} {
		source, err := os.ReadFile(filepath.Join(libDir, filepath.Base(path)))
		require.NoError(t, err)

		copied, err := os.ReadFile(path)
		require.NoError(t, err)

		assert.Equal(t, source, copied)
	}

	inside := "@executable_path/../libs/"
	innerFunc1 := inside + "libfunc1.dylib"
	innerFunc2 := inside + "libfunc2.dylib"

	// Libraries are installed in reverse discovery order, the deepest
	// dependency first, then the root binary is fixed.
	expected := []macho.ToolCall{
		{Op: "id", File: destFunc2, New: innerFunc2},
		{Op: "sign", File: destFunc2},
		{Op: "id", File: destFunc1, New: innerFunc1},
		{Op: "change", File: destFunc1, Old: libFunc2, New: innerFunc2},
		{Op: "rpath", File: destFunc1, Old: libDir, New: inside},
		{Op: "sign", File: destFunc1},
		{Op: "change", File: app, Old: libFunc1, New: innerFunc1},
		{Op: "change", File: app, Old: "@rpath/libfunc1.dylib", New: innerFunc1},
		{Op: "rpath", File: app, Old: libDir, New: inside},
		{Op: "sign", File: app},
	}
	assert.Equal(t, expected, tool.Calls)

	// The verification scan reloads all three produced files and finds
	// only in-bundle references.
	require.GreaterOrEqual(t, len(tool.Loads), 3)
	assert.ElementsMatch(t,
		[]string{destFunc1, destFunc2, app},
		tool.Loads[len(tool.Loads)-3:],
	)

	assert.Contains(t, out.String(), "* Creating output directory "+destDir)
	assert.Contains(t, out.String(), "* Processing dependency "+innerFunc1)
	assert.Contains(t, out.String(), "* Verifying bundle")
}

func TestBundlerSearchPathFallback(t *testing.T) {
	t.Run("configured search path", func(t *testing.T) {
		clearLinkerEnv(t)

		dir := testDir(t)
		app := writeBinary(t, dir, "main")
		libFunc1 := writeBinary(t, dir, "elsewhere/libfunc1.dylib")
		elsewhere := filepath.Join(dir, "elsewhere")

		tool := &macho.FakeTool{
			Infos: map[string]macho.Info{
				app:      {Dependencies: []string{"libfunc1.dylib"}},
				libFunc1: {},
			},
		}

		var out bytes.Buffer

		bundler := bundle.New(bundle.Settings{
			FixFiles:      []string{app},
			InsideLibPath: bundle.DefaultInsideLibPath,
			SearchPaths:   []string{elsewhere},
		}, tool, strings.NewReader(""), &out)

		err := bundler.Run(t.Context())
		require.NoError(t, err)

		libs := bundler.Libraries()
		require.Len(t, libs, 1)
		assert.Equal(t, elsewhere+"/", libs[0].Prefix)
		assert.Contains(t, out.String(), "FOUND libfunc1.dylib in "+elsewhere+"/")

		// Fallback search raises the flag that makes rewrites cover bare
		// filename references.
		inner := "@executable_path/../libs/libfunc1.dylib"
		expected := []macho.ToolCall{
			{Op: "change", File: app, Old: libFunc1, New: inner},
			{Op: "change", File: app, Old: "libfunc1.dylib", New: inner},
		}
		assert.Equal(t, expected, tool.Calls)
	})

	t.Run("dynamic linker environment", func(t *testing.T) {
		clearLinkerEnv(t)

		dir := testDir(t)
		app := writeBinary(t, dir, "main")
		libFunc1 := writeBinary(t, dir, "elsewhere/libfunc1.dylib")
		elsewhere := filepath.Join(dir, "elsewhere")

		t.Setenv("DYLD_FALLBACK_LIBRARY_PATH", elsewhere)

		tool := &macho.FakeTool{
			Infos: map[string]macho.Info{
				app:      {Dependencies: []string{"libfunc1.dylib"}},
				libFunc1: {},
			},
		}

		var out bytes.Buffer

		bundler := bundle.New(bundle.Settings{
			FixFiles:      []string{app},
			InsideLibPath: bundle.DefaultInsideLibPath,
		}, tool, strings.NewReader(""), &out)

		err := bundler.Run(t.Context())
		require.NoError(t, err)

		libs := bundler.Libraries()
		require.Len(t, libs, 1)
		assert.Equal(t, elsewhere+"/", libs[0].Prefix)
	})

	t.Run("environment ignored with configured paths", func(t *testing.T) {
		clearLinkerEnv(t)

		dir := testDir(t)
		app := writeBinary(t, dir, "main")
		writeBinary(t, dir, "elsewhere/libfunc1.dylib")
		empty := filepath.Join(dir, "empty")
		require.NoError(t, os.MkdirAll(empty, 0o755))

		t.Setenv("DYLD_FALLBACK_LIBRARY_PATH", filepath.Join(dir, "elsewhere"))

		tool := &macho.FakeTool{
			Infos: map[string]macho.Info{
				app: {Dependencies: []string{"libfunc1.dylib"}},
			},
		}

		var out bytes.Buffer

		bundler := bundle.New(bundle.Settings{
			FixFiles:      []string{app},
			InsideLibPath: bundle.DefaultInsideLibPath,
			SearchPaths:   []string{empty},
			MissingMode:   bundle.MissingSkip,
		}, tool, strings.NewReader(""), &out)

		err := bundler.Run(t.Context())
		require.NoError(t, err)

		libs := bundler.Libraries()
		require.Len(t, libs, 1)
		assert.Empty(t, libs[0].Prefix)
	})
}

func TestBundlerPrompt(t *testing.T) {
	clearLinkerEnv(t)

	t.Run("located interactively", func(t *testing.T) {
		dir := testDir(t)
		app := writeBinary(t, dir, "main")
		writeBinary(t, dir, "pearl/libfunc1.dylib")
		writeBinary(t, dir, "pearl/libfunc2.dylib")
		pearl := filepath.Join(dir, "pearl")

		tool := &macho.FakeTool{
			Infos: map[string]macho.Info{
				app: {
					Dependencies: []string{
						"libfunc1.dylib",
						"libfunc2.dylib",
					},
				},
				filepath.Join(pearl, "libfunc1.dylib"): {},
				filepath.Join(pearl, "libfunc2.dylib"): {},
			},
		}

		in := strings.NewReader("missing\n" + pearl + "\n")

		var out bytes.Buffer

		bundler := bundle.New(bundle.Settings{
			FixFiles:      []string{app},
			InsideLibPath: bundle.DefaultInsideLibPath,
		}, tool, in, &out)

		err := bundler.Run(t.Context())
		require.NoError(t, err)

		libs := bundler.Libraries()
		require.Len(t, libs, 2)
		assert.Equal(t, pearl+"/", libs[0].Prefix)
		assert.Equal(t, pearl+"/", libs[1].Prefix)

		// The first library needs two attempts, the second is found in
		// the search paths the prompt extended without asking again.
		assert.Contains(t, out.String(), "does not exist. Try again")
		assert.Equal(t, 2, strings.Count(out.String(), "Please specify"))
	})

	t.Run("quit aborts", func(t *testing.T) {
		dir := testDir(t)
		app := writeBinary(t, dir, "main")

		tool := &macho.FakeTool{
			Infos: map[string]macho.Info{
				app: {Dependencies: []string{"libfunc1.dylib"}},
			},
		}

		bundler := bundle.New(bundle.Settings{
			FixFiles:      []string{app},
			InsideLibPath: bundle.DefaultInsideLibPath,
		}, tool, strings.NewReader("quit\n"), &bytes.Buffer{})

		err := bundler.Run(t.Context())
		require.ErrorIs(t, err, bundle.ErrPromptAborted)
	})

	t.Run("no input continues without location", func(t *testing.T) {
		dir := testDir(t)
		app := writeBinary(t, dir, "main")

		tool := &macho.FakeTool{
			Infos: map[string]macho.Info{
				app: {Dependencies: []string{"libfunc1.dylib"}},
			},
		}

		bundler := bundle.New(bundle.Settings{
			FixFiles:      []string{app},
			InsideLibPath: bundle.DefaultInsideLibPath,
		}, tool, strings.NewReader(""), &bytes.Buffer{})

		err := bundler.Run(t.Context())
		require.NoError(t, err)

		libs := bundler.Libraries()
		require.Len(t, libs, 1)
		assert.Empty(t, libs[0].Prefix)
	})

	t.Run("fail mode aborts", func(t *testing.T) {
		dir := testDir(t)
		app := writeBinary(t, dir, "main")

		tool := &macho.FakeTool{
			Infos: map[string]macho.Info{
				app: {Dependencies: []string{"libfunc1.dylib"}},
			},
		}

		bundler := bundle.New(bundle.Settings{
			FixFiles:      []string{app},
			InsideLibPath: bundle.DefaultInsideLibPath,
			MissingMode:   bundle.MissingFail,
		}, tool, strings.NewReader(""), &bytes.Buffer{})

		err := bundler.Run(t.Context())
		require.ErrorIs(t, err, bundle.ErrMissingLibrary)
	})
}

func TestBundlerSkipsUnlocatedLibraryOnInstall(t *testing.T) {
	clearLinkerEnv(t)

	dir := testDir(t)
	app := writeBinary(t, dir, "main")
	destDir := filepath.Join(dir, "libs") + "/"

	tool := &macho.FakeTool{
		Infos: map[string]macho.Info{
			app: {Dependencies: []string{"/nonexistent/libfunc1.dylib"}},
		},
	}

	var out bytes.Buffer

	bundler := bundle.New(bundle.Settings{
		FixFiles:      []string{app},
		BundleLibs:    true,
		DestDir:       destDir,
		InsideLibPath: bundle.DefaultInsideLibPath,
		CreateDir:     true,
		MissingMode:   bundle.MissingSkip,
	}, tool, strings.NewReader(""), &out)

	err := bundler.Run(t.Context())
	require.NoError(t, err)

	entries, err := os.ReadDir(destDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The root binary is still rewritten, by the declared path and by the
	// bare filename.
	inner := "@executable_path/../libs/libfunc1.dylib"
	expected := []macho.ToolCall{
		{Op: "change", File: app, Old: "/nonexistent/libfunc1.dylib", New: inner},
		{Op: "change", File: app, Old: "libfunc1.dylib", New: inner},
	}
	assert.Equal(t, expected, tool.Calls)
}

func TestBundlerSign(t *testing.T) {
	newSignBundler := func(
		t *testing.T, tool *macho.FakeTool, app string,
	) *bundle.Bundler {
		t.Helper()

		return bundle.New(bundle.Settings{
			FixFiles:      []string{app},
			InsideLibPath: bundle.DefaultInsideLibPath,
			Codesign:      true,
		}, tool, strings.NewReader(""), &bytes.Buffer{})
	}

	t.Run("fresh inode retry succeeds", func(t *testing.T) {
		t.Setenv("TMPDIR", t.TempDir())

		dir := testDir(t)
		app := writeBinary(t, dir, "main")

		tool := &macho.FakeTool{
			Infos:        map[string]macho.Info{app: {}},
			SignFailures: map[string]int{app: 1},
		}

		err := newSignBundler(t, tool, app).Run(t.Context())
		require.NoError(t, err)

		content, err := os.ReadFile(app)
		require.NoError(t, err)
		assert.Equal(t, []byte("main mach-o"), content)

		expected := []macho.ToolCall{
			{Op: "sign", File: app},
			{Op: "sign", File: app},
		}
		assert.Equal(t, expected, tool.Calls)
	})

	t.Run("persistent failure is reported on intel", func(t *testing.T) {
		t.Setenv("TMPDIR", t.TempDir())

		dir := testDir(t)
		app := writeBinary(t, dir, "main")

		tool := &macho.FakeTool{
			Infos:        map[string]macho.Info{app: {}},
			SignFailures: map[string]int{app: 2},
		}

		err := newSignBundler(t, tool, app).Run(t.Context())
		require.NoError(t, err)
	})

	t.Run("persistent failure is fatal on arm", func(t *testing.T) {
		t.Setenv("TMPDIR", t.TempDir())

		dir := testDir(t)
		app := writeBinary(t, dir, "main")

		tool := &macho.FakeTool{
			Infos:        map[string]macho.Info{app: {}},
			SignFailures: map[string]int{app: 2},
			ARM:          true,
		}

		err := newSignBundler(t, tool, app).Run(t.Context())
		require.ErrorIs(t, err, &macho.ExecError{})
	})
}

func TestBundlerDestDir(t *testing.T) {
	newInstallTool := func(app string) *macho.FakeTool {
		return &macho.FakeTool{
			Infos: map[string]macho.Info{app: {}},
		}
	}

	t.Run("missing without create", func(t *testing.T) {
		dir := testDir(t)
		app := writeBinary(t, dir, "main")

		bundler := bundle.New(bundle.Settings{
			FixFiles:      []string{app},
			BundleLibs:    true,
			DestDir:       filepath.Join(dir, "libs"),
			InsideLibPath: bundle.DefaultInsideLibPath,
		}, newInstallTool(app), strings.NewReader(""), &bytes.Buffer{})

		err := bundler.Run(t.Context())
		require.ErrorIs(t, err, bundle.ErrDestDirMissing)
	})

	t.Run("erases stale directory", func(t *testing.T) {
		dir := testDir(t)
		app := writeBinary(t, dir, "main")
		stale := writeBinary(t, dir, "libs/libstale.dylib")

		bundler := bundle.New(bundle.Settings{
			FixFiles:      []string{app},
			BundleLibs:    true,
			DestDir:       filepath.Join(dir, "libs"),
			InsideLibPath: bundle.DefaultInsideLibPath,
			OverwriteDir:  true,
			CreateDir:     true,
		}, newInstallTool(app), strings.NewReader(""), &bytes.Buffer{})

		err := bundler.Run(t.Context())
		require.NoError(t, err)

		assert.NoFileExists(t, stale)
		assert.DirExists(t, filepath.Join(dir, "libs"))
	})

	t.Run("existing file collision", func(t *testing.T) {
		dir := testDir(t)
		app := writeBinary(t, dir, "main")
		libFunc1 := writeBinary(t, dir, "lib/libfunc1.dylib")
		writeBinary(t, dir, "libs/libfunc1.dylib")

		tool := newInstallTool(app)
		tool.Infos[app] = macho.Info{Dependencies: []string{libFunc1}}
		tool.Infos[libFunc1] = macho.Info{}

		bundler := bundle.New(bundle.Settings{
			FixFiles:      []string{app},
			BundleLibs:    true,
			DestDir:       filepath.Join(dir, "libs"),
			InsideLibPath: bundle.DefaultInsideLibPath,
		}, tool, strings.NewReader(""), &bytes.Buffer{})

		err := bundler.Run(t.Context())
		require.ErrorIs(t, err, sys.ErrTargetExists)
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		dir := testDir(t)
		app := writeBinary(t, dir, "main")
		libFunc1 := writeBinary(t, dir, "lib/libfunc1.dylib")
		writeBinary(t, dir, "libs/libfunc1.dylib")
		destFunc1 := filepath.Join(dir, "libs", "libfunc1.dylib")

		tool := newInstallTool(app)
		tool.Infos[app] = macho.Info{Dependencies: []string{libFunc1}}
		tool.Infos[libFunc1] = macho.Info{}
		tool.Infos[destFunc1] = macho.Info{}

		bundler := bundle.New(bundle.Settings{
			FixFiles:       []string{app},
			BundleLibs:     true,
			DestDir:        filepath.Join(dir, "libs"),
			InsideLibPath:  bundle.DefaultInsideLibPath,
			OverwriteFiles: true,
		}, tool, strings.NewReader(""), &bytes.Buffer{})

		err := bundler.Run(t.Context())
		require.NoError(t, err)

		content, err := os.ReadFile(destFunc1)
		require.NoError(t, err)
		assert.Equal(t, []byte("lib/libfunc1.dylib mach-o"), content)
	})
}
