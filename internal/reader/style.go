// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package reader

import (
	_ "embed"
)

//go:embed assets/base.css
var baseStyle string

//go:embed assets/dark.css
var darkStyle string

//go:embed assets/sepia.css
var sepiaStyle string

func themeStyle(theme Theme) string {
	switch theme {
	case ThemeDark:
		return darkStyle
	case ThemeSepia:
		return sepiaStyle
	}
	return ""
}
