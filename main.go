// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Wikiread fetches wiki pages and renders them as compact, themed
// documents with their images cached locally.
package main

import (
	"os"

	"codeberg.org/wikiread/wikiread/internal/app"
)

func main() {
	os.Exit(app.Run())
}
