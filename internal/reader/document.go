// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package reader assembles processed page content into a full HTML
// document and drives its delivery to a display surface.
package reader

import (
	"fmt"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// Theme selects the color scheme of the rendered document.
type Theme string

const (
	ThemeLight Theme = ""
	ThemeDark  Theme = "theme-dark"
	ThemeSepia Theme = "theme-sepia"
)

// ParseTheme maps a user supplied theme name to a Theme. Unknown
// names fall back to the light theme.
func ParseTheme(name string) Theme {
	switch strings.ToLower(name) {
	case "dark":
		return ThemeDark
	case "sepia":
		return ThemeSepia
	}
	return ThemeLight
}

const pageTitleClass = "page-title"

// BuildDocument wraps an article body into a standalone HTML document.
// The title is rendered as a single leading h1; any title heading
// already present in the body is removed first, so building from an
// already built body yields the same document. The body starts hidden
// and a trailing script reveals it once the document is loaded.
func BuildDocument(title, body string, theme Theme) string {
	body = stripTitleHeadings(body)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString(`<style>` + baseStyle + `</style>` + "\n")
	if css := themeStyle(theme); css != "" {
		b.WriteString(`<style>` + css + `</style>` + "\n")
	}
	b.WriteString("</head>\n")

	class := "page"
	if theme != ThemeLight {
		class += " " + string(theme)
	}
	fmt.Fprintf(&b, `<body class="%s" style="visibility: hidden">`+"\n", class)
	fmt.Fprintf(&b, `<h1 class="%s">%s</h1>`+"\n", pageTitleClass, html.EscapeString(title))
	b.WriteString(body)
	b.WriteString("\n<script>document.body.style.visibility = \"visible\";</script>\n")
	b.WriteString("</body>\n</html>\n")

	return b.String()
}

// stripTitleHeadings removes every h1 carrying the page title class.
func stripTitleHeadings(body string) string {
	if !strings.Contains(body, pageTitleClass) {
		return body
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return body
	}

	for _, node := range dom.GetAllNodesWithTag(doc, "h1") {
		if !strings.Contains(" "+dom.GetAttribute(node, "class")+" ", " "+pageTitleClass+" ") {
			continue
		}
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}

	var b strings.Builder
	for _, node := range dom.GetElementsByTagName(doc, "body") {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			b.WriteString(dom.OuterHTML(child))
		}
		break
	}
	return b.String()
}
