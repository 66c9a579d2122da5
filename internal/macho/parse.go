// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package macho

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// parseLoadCommands extracts dependency references and run path entries from
// otool -l output.
//
// Dependency commands span multiple lines. The line identifying the command
// opens a stanza that is terminated by the line carrying the name value.
// Anything in between, like cmdsize and version lines, is skipped. LC_RPATH
// stanzas work the same, except that the line following the command is always
// the cmdsize line and skipped unconditionally, and that an unparsable value
// line is recorded instead of terminating the parse.
func parseLoadCommands(r io.Reader) (Info, error) {
	var (
		info           Info
		depSearching   bool
		rpathSearching bool
		skipNext       bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if skipNext {
			skipNext = false
			continue
		}

		switch {
		case strings.Contains(line, "cmd LC_LOAD_DYLIB"),
			strings.Contains(line, "cmd LC_REEXPORT_DYLIB"):
			if depSearching {
				return info, fmt.Errorf("%w: %s", ErrNameMissing, strings.TrimSpace(line))
			}

			depSearching = true
		case strings.Contains(line, "LC_RPATH"):
			rpathSearching = true
			skipNext = true
		case rpathSearching:
			value, ok := runPathValue(line)
			if !ok {
				info.MalformedRunPaths = append(info.MalformedRunPaths, line)
				continue
			}

			info.RunPaths = append(info.RunPaths, value)
			rpathSearching = false
		case depSearching:
			value, ok := nameValue(line)
			if !ok {
				continue
			}

			info.Dependencies = append(info.Dependencies, value)
			depSearching = false
		}
	}

	err := scanner.Err()
	if err != nil {
		return info, fmt.Errorf("scan tool output: %w", err)
	}

	return info, nil
}

// nameValue extracts the reference from the name line of a dependency
// command. The trailing offset annotation is cut off if present.
func nameValue(line string) (string, bool) {
	start := strings.Index(line, "name ")
	if start < 0 {
		return "", false
	}

	value := line[start+len("name "):]

	end := strings.LastIndex(value, " (")
	if end >= 0 {
		value = value[:end]
	}

	return value, true
}

// runPathValue extracts the path from the value line of an LC_RPATH command.
// Unlike dependency names, a missing offset annotation means the line is not
// a valid value line.
func runPathValue(line string) (string, bool) {
	start := strings.Index(line, "path ")
	end := strings.Index(line, " (")

	if start < 0 || end < 0 {
		return "", false
	}

	start += len("path ")
	if end < start {
		return "", false
	}

	return line[start:end], true
}
