// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package macho

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ToolCall records a single rewrite operation performed through [FakeTool].
type ToolCall struct {
	Op   string
	File string
	Old  string
	New  string
}

// FakeTool is a scriptable in-memory [Tool] for tests.
//
// Load serves entries from Infos. Rewrite operations are recorded in Calls
// and applied to the stored metadata, so a later Load observes the rewritten
// state just like with the real tools. The zero value works and fails all
// Load calls until Infos is populated. Safe for concurrent use.
type FakeTool struct {
	mu sync.Mutex

	Infos map[string]Info

	// LoadErrs fails Load for the given paths.
	LoadErrs map[string]error

	// ChangeErrs, IDErrs and RunPathErrs fail the respective rewrite
	// operation for the given file. SignFailures is decremented on each
	// attempt, so a value of 1 fails the first Sign call and lets the
	// retry succeed.
	ChangeErrs   map[string]error
	IDErrs       map[string]error
	RunPathErrs  map[string]error
	SignFailures map[string]int

	ARM bool

	// Loads records the paths passed to Load in call order.
	Loads []string

	// Calls records all rewrite operations in call order.
	Calls []ToolCall
}

func (f *FakeTool) Load(_ context.Context, path string) (Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Loads = append(f.Loads, path)

	err := f.LoadErrs[path]
	if err != nil {
		return Info{}, err
	}

	info, exists := f.Infos[path]
	if !exists {
		return Info{}, &ExecError{
			Command: otoolCommand,
			Err:     errors.New("exit status 1"),
			Stderr: fmt.Sprintf(
				"can't open file: %s (No such file or directory)", path,
			),
		}
	}

	info.Dependencies = slices.Clone(info.Dependencies)
	info.RunPaths = slices.Clone(info.RunPaths)
	info.MalformedRunPaths = slices.Clone(info.MalformedRunPaths)

	return info, nil
}

func (f *FakeTool) ChangeDependency(
	_ context.Context,
	file, oldRef, newRef string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, ToolCall{
		Op:   "change",
		File: file,
		Old:  oldRef,
		New:  newRef,
	})

	err := f.ChangeErrs[file]
	if err != nil {
		return err
	}

	if info, exists := f.Infos[file]; exists {
		for idx, dep := range info.Dependencies {
			if dep == oldRef {
				info.Dependencies[idx] = newRef
			}
		}
	}

	return nil
}

func (f *FakeTool) SetID(_ context.Context, file, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, ToolCall{Op: "id", File: file, New: id})

	return f.IDErrs[file]
}

func (f *FakeTool) ChangeRunPath(
	_ context.Context,
	file, oldPath, newPath string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, ToolCall{
		Op:   "rpath",
		File: file,
		Old:  oldPath,
		New:  newPath,
	})

	err := f.RunPathErrs[file]
	if err != nil {
		return err
	}

	if info, exists := f.Infos[file]; exists {
		for idx, path := range info.RunPaths {
			if path == oldPath {
				info.RunPaths[idx] = newPath
			}
		}
	}

	return nil
}

func (f *FakeTool) Sign(_ context.Context, file string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, ToolCall{Op: "sign", File: file})

	if f.SignFailures[file] > 0 {
		f.SignFailures[file]--

		return &ExecError{
			Command: codesignCommand,
			Err:     errors.New("exit status 1"),
			Stderr:  "main executable failed strict validation",
		}
	}

	return nil
}

func (f *FakeTool) HostIsARM(_ context.Context) bool {
	return f.ARM
}
