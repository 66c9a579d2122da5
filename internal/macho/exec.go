// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package macho

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
)

const (
	otoolCommand           = "otool"
	installNameToolCommand = "install_name_tool"
	codesignCommand        = "codesign"
	machineCommand         = "machine"
)

// ExecTool implements [Tool] with the system binary tools, which are
// expected to be present, as they ship with the Xcode command line tools.
// The zero value is ready to use.
type ExecTool struct{}

func (ExecTool) Load(ctx context.Context, path string) (Info, error) {
	var output bytes.Buffer

	err := run(ctx, &output, otoolCommand, "-l", path)
	if err != nil {
		return Info{}, err
	}

	return parseLoadCommands(&output)
}

func (ExecTool) ChangeDependency(
	ctx context.Context,
	file, oldRef, newRef string,
) error {
	return run(ctx, nil, installNameToolCommand, "-change", oldRef, newRef, file)
}

func (ExecTool) SetID(ctx context.Context, file, id string) error {
	return run(ctx, nil, installNameToolCommand, "-id", id, file)
}

func (ExecTool) ChangeRunPath(
	ctx context.Context,
	file, oldPath, newPath string,
) error {
	return run(ctx, nil, installNameToolCommand, "-rpath", oldPath, newPath, file)
}

func (ExecTool) Sign(ctx context.Context, file string) error {
	return run(ctx, nil,
		codesignCommand,
		"--force",
		"--deep",
		"--preserve-metadata=entitlements,requirements,flags,runtime",
		"--sign", "-",
		file,
	)
}

func (ExecTool) HostIsARM(ctx context.Context) bool {
	var output bytes.Buffer

	err := run(ctx, &output, machineCommand)
	if err != nil {
		return false
	}

	return strings.Contains(output.String(), "arm")
}

func run(ctx context.Context, outW io.Writer, name string, args ...string) error {
	var stderrBuf bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = outW
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	if err != nil {
		return &ExecError{
			Command: name,
			Err:     err,
			Stderr:  strings.TrimSpace(stderrBuf.String()),
		}
	}

	return nil
}
