// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package cmd

import "strings"

// stringList collects the values of a repeatable flag. An empty value
// clears the list, so command line arguments can override list flags
// accumulated from the environment or a config file.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(s string) error {
	if s == "" {
		*l = nil
		return nil
	}

	*l = append(*l, s)

	return nil
}
