// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package contents turns a raw article body fragment into displayable
// content: site-relative URLs are made absolute, desktop-only table rows
// are dropped, and the referenced images are collected and partitioned
// into priority and background sets.
package contents

import (
	"bytes"
	"net/url"
	"sort"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// Content is a processed article body.
type Content struct {
	// HTML is the rewritten body fragment, serialized without
	// pretty-printing.
	HTML string

	// Priority holds the image URLs that must be cached before the page
	// is shown; Background everything else. The two sets are disjoint
	// and their union is every image URL the body references.
	Priority   []string
	Background []string
}

// Process parses and processes a raw body fragment against the wiki's
// site origin.
func Process(rawBody string, origin *url.URL) (*Content, error) {
	doc, err := html.Parse(strings.NewReader(rawBody))
	if err != nil {
		return nil, err
	}

	// Resource sidebars move to the end of the body first, so the row
	// removal below can't take them out of view.
	relocateResourceBlocks(doc)
	removeBlockedRows(doc)
	rewriteSiteURLs(doc, origin)

	priority, background := scanImages(doc, origin)

	return &Content{
		HTML:       renderBody(doc),
		Priority:   priority,
		Background: background,
	}, nil
}

// renderBody serializes the children of the document's body element.
func renderBody(doc *html.Node) string {
	buf := new(bytes.Buffer)
	for _, body := range dom.GetElementsByTagName(doc, "body") {
		for _, c := range dom.ChildNodes(body) {
			html.Render(buf, c) //nolint:errcheck
		}
		break
	}
	return buf.String()
}

// classTokens returns the whitespace-separated class attribute tokens
// of a node.
func classTokens(node *html.Node) []string {
	return strings.Fields(dom.GetAttribute(node, "class"))
}

func hasClass(node *html.Node, name string) bool {
	for _, c := range classTokens(node) {
		if c == name {
			return true
		}
	}
	return false
}

func hasClassPrefix(node *html.Node, prefix string) bool {
	for _, c := range classTokens(node) {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	res := make([]string, 0, len(set))
	for k := range set {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
