// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package bundle

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shakfu/macdylibbundler/internal/macho"
)

func TestEscapesBundle(t *testing.T) {
	bundler := New(Settings{
		InsideLibPath:   "@executable_path/../libs/",
		IgnoredPrefixes: []string{"/opt/vendor/lib/"},
	}, nil, strings.NewReader(""), io.Discard)

	tests := []struct {
		name     string
		ref      string
		expected bool
	}{
		{
			name:     "inside bundle",
			ref:      "@executable_path/../libs/libfunc1.dylib",
			expected: false,
		},
		{
			name:     "framework",
			ref:      "/Library/Frameworks/Foo.framework/Versions/A/Foo",
			expected: false,
		},
		{
			name:     "system",
			ref:      "/usr/lib/libSystem.B.dylib",
			expected: false,
		},
		{
			name:     "ignored prefix",
			ref:      "/opt/vendor/lib/libvendor.dylib",
			expected: false,
		},
		{
			name:     "local path",
			ref:      "/usr/local/lib/libfunc1.dylib",
			expected: true,
		},
		{
			name:     "unresolved run path token",
			ref:      "@rpath/libfunc1.dylib",
			expected: true,
		},
		{
			name:     "bare filename",
			ref:      "libfunc1.dylib",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, bundler.escapesBundle(tt.ref))
		})
	}
}

func TestAuditReportsEscapedReferences(t *testing.T) {
	dir := t.TempDir()
	app := filepath.Join(dir, "main")

	err := os.WriteFile(app, []byte("main mach-o"), 0o755)
	require.NoError(t, err)

	tool := &macho.FakeTool{
		Infos: map[string]macho.Info{
			app: {
				Dependencies: []string{
					"/usr/local/lib/libfunc1.dylib",
					"@executable_path/../libs/libfunc2.dylib",
					"/usr/lib/libSystem.B.dylib",
				},
			},
		},
	}

	bundler := New(Settings{
		FixFiles:      []string{app},
		InsideLibPath: "@executable_path/../libs/",
	}, tool, strings.NewReader(""), io.Discard)

	var logBuf bytes.Buffer

	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logBuf, nil)))

	defer slog.SetDefault(prev)

	err = bundler.audit(t.Context())
	require.NoError(t, err)

	assert.Contains(t, logBuf.String(), "/usr/local/lib/libfunc1.dylib")
	assert.NotContains(t, logBuf.String(), "libfunc2.dylib")
	assert.NotContains(t, logBuf.String(), "libSystem")
}

func TestAuditFailsOnUnreadableFile(t *testing.T) {
	bundler := New(Settings{
		FixFiles:      []string{"/nonexistent/main"},
		InsideLibPath: "@executable_path/../libs/",
	}, &macho.FakeTool{}, strings.NewReader(""), io.Discard)

	err := bundler.audit(t.Context())
	require.ErrorIs(t, err, &macho.ExecError{})
	require.ErrorContains(t, err, "verify /nonexistent/main")
}
