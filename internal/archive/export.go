// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package archive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Export writes the directory tree rooted at dir into the writer. Entry
// names are relative to dir. File modes and symbolic links are preserved,
// other special files are rejected.
func Export(dir string, writer Writer) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("relative name for %s: %w", path, err)
		}

		if name == "." {
			return nil
		}

		switch {
		case entry.IsDir():
			return writer.WriteDirectory(name)
		case entry.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("read link %s: %w", path, err)
			}

			return writer.WriteLink(name, target)
		case entry.Type().IsRegular():
			return exportRegular(path, name, writer)
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
		}
	})
}

func exportRegular(path, name string, writer Writer) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return writer.WriteRegular(name, file, 0)
}

// ExportFile writes the directory tree rooted at dir as a CPIO archive
// into a new file with the given path.
func ExportFile(dir, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer file.Close()

	writer := NewCPIOWriter(file)

	err = Export(dir, writer)
	if err != nil {
		return err
	}

	err = writer.Close()
	if err != nil {
		return err
	}

	return file.Close()
}
