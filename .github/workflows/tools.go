// SPDX-FileCopyrightText: 2025 The macdylibbundler authors
//
// SPDX-License-Identifier: MIT

package tools

import (
	_ "github.com/jstemmer/go-junit-report/v2"
	_ "golang.org/x/vuln/cmd/govulncheck"
)
