// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package configs

// version is set at build time.
var version = "dev"

// Version returns the application version.
func Version() string {
	return version
}
