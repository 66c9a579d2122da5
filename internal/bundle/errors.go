// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package bundle

import "errors"

var (
	// ErrMissingLibrary is returned in [MissingFail] mode if a library
	// location cannot be determined.
	ErrMissingLibrary = errors.New("library location unknown")

	// ErrPromptAborted is returned if the user quits the interactive
	// prompt for a library location.
	ErrPromptAborted = errors.New("aborted by user")

	// ErrDestDirMissing is returned if the destination directory does not
	// exist and creating it is not enabled.
	ErrDestDirMissing = errors.New("destination directory does not exist")

	// ErrUnknownMissingMode is returned for unsupported missing library
	// policy names.
	ErrUnknownMissingMode = errors.New("unknown missing library mode")
)
