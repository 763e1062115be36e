// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package contents

import (
	"net/url"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"codeberg.org/wikiread/wikiread/pkg/srcset"
)

// blockedClasses marks the presentation-only rows that make no sense on
// a small screen: advanced stat rows, flag rows and spacer rows.
var blockedClasses = []string{
	"advanced-data",
	"infobox-flag",
	"infobox-padding",
}

// resourceClassPrefix marks the sidebar blocks listing a page's
// resources. They are kept, but moved to the end of the body.
const resourceClassPrefix = "infobox-resources-"

// urlAttributes are the attributes that get the site origin prefixed
// when their value is site-relative.
var urlAttributes = []string{"src", "href", "srcset"}

// relocateResourceBlocks moves every resource sidebar element to the
// end of the body, content preserved.
func relocateResourceBlocks(doc *html.Node) {
	bodies := dom.GetElementsByTagName(doc, "body")
	if len(bodies) == 0 {
		return
	}
	body := bodies[0]

	var blocks []*html.Node
	for _, node := range dom.GetElementsByTagName(doc, "*") {
		if hasClassPrefix(node, resourceClassPrefix) {
			blocks = append(blocks, node)
		}
	}

	for _, node := range blocks {
		if node.Parent == nil || node == body {
			continue
		}
		node.Parent.RemoveChild(node)
		dom.AppendChild(body, node)
	}
}

// removeBlockedRows drops every element carrying one of the blocked
// classes, subtree included.
func removeBlockedRows(doc *html.Node) {
	dom.RemoveNodes(dom.GetElementsByTagName(doc, "*"), func(node *html.Node) bool {
		for _, name := range blockedClasses {
			if hasClass(node, name) {
				return true
			}
		}
		return false
	})
}

// rewriteSiteURLs prefixes the site origin to every site-relative URL
// attribute. Protocol-relative values (starting with "//") and absolute
// values are left alone.
func rewriteSiteURLs(doc *html.Node, origin *url.URL) {
	prefix := origin.Scheme + "://" + origin.Host

	dom.ForEachNode(dom.GetElementsByTagName(doc, "*"), func(node *html.Node, _ int) {
		for _, attr := range urlAttributes {
			if !dom.HasAttribute(node, attr) {
				continue
			}
			value := dom.GetAttribute(node, attr)
			if attr == "srcset" {
				dom.SetAttribute(node, attr, rewriteSourceSet(value, prefix))
				continue
			}
			if isSiteRelative(value) {
				dom.SetAttribute(node, attr, prefix+value)
			}
		}
	})
}

func rewriteSourceSet(value, prefix string) string {
	set := srcset.Parse(value)
	for i, src := range set {
		if isSiteRelative(src.URL) {
			set[i].URL = prefix + src.URL
		}
	}
	return set.String()
}

// isSiteRelative reports whether a URL value starts with a single
// slash. "//" is protocol-relative, not site-relative.
func isSiteRelative(value string) bool {
	return strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "//")
}
