// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package macho

import (
	"errors"
	"fmt"
)

// ErrNameMissing is returned if a dependency load command ends without a
// name value before the next one starts.
var ErrNameMissing = errors.New("no name value before next load command")

// ExecError wraps errors of external tool invocations together with the
// stderr output of the tool.
type ExecError struct {
	Command string
	Err     error
	Stderr  string
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Command, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}

	return msg
}

func (e *ExecError) Is(other error) bool {
	_, ok := other.(*ExecError)
	return ok
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
