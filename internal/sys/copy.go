// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package sys

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// CopyFile copies the regular file from to the path to, keeping the source
// file mode, and forces the copy writable afterwards.
//
// If from and to name the same path, no data is copied and only the
// permission change is applied. This is used for fixing files in place that
// may have been installed read-only.
//
// If to exists already and overwrite is not set, [ErrTargetExists] is
// returned. With overwrite set an existing target is removed first, so the
// copy always gets a fresh inode.
func CopyFile(from, to string, overwrite bool) error {
	if from != to {
		if !overwrite && FileExists(to) {
			return fmt.Errorf("%w: %s", ErrTargetExists, to)
		}

		err := copyContents(from, to, overwrite)
		if err != nil {
			return err
		}
	}

	return ForceWritable(to)
}

func copyContents(from, to string, overwrite bool) error {
	src, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, from)
	}

	if overwrite {
		err := os.Remove(to)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove target: %w", err)
		}
	}

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}

	_, err = io.Copy(dst, src)
	if err != nil {
		_ = dst.Close()
		return fmt.Errorf("copy contents: %w", err)
	}

	err = dst.Close()
	if err != nil {
		return fmt.Errorf("close target: %w", err)
	}

	return nil
}

// ForceWritable adds the owner write permission to the file with the given
// path, like chmod u+w.
func ForceWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	mode := info.Mode()
	if mode&0o200 != 0 {
		return nil
	}

	err = os.Chmod(path, mode|0o200)
	if err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	return nil
}
