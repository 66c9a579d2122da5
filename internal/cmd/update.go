// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"io"

	"github.com/tcnksm/go-latest"
)

const (
	githubOwner      = "shakfu"
	githubRepository = "macdylibbundler"
)

// checkForUpdate compares the running version against the latest release
// tag on GitHub.
func checkForUpdate(out io.Writer) error {
	githubTag := &latest.GithubTag{
		Owner:      githubOwner,
		Repository: githubRepository,
	}

	res, err := latest.Check(githubTag, version)
	if err != nil {
		return fmt.Errorf("check latest release: %w", err)
	}

	if res.Outdated {
		fmt.Fprintf(out,
			"A new version is available: %s (you have %s)\n",
			res.Current, version)
		fmt.Fprintf(out,
			"Download it from https://github.com/%s/%s/releases\n",
			githubOwner, githubRepository)
	} else {
		fmt.Fprintf(out, "You are using the latest version: %s\n", version)
	}

	return nil
}
