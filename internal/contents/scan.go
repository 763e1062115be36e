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

// priorityClasses mark the containers that sit above the fold: an image
// inside one of them must be cached before the page is shown.
var priorityClasses = []string{"infobox", "floatleft"}

// scanImages collects every image URL referenced by src or srcset and
// splits it into priority and background sets. A URL referenced from
// both a priority and a regular element is priority; the background set
// is the remainder.
func scanImages(doc *html.Node, origin *url.URL) (priority, background []string) {
	all := make(map[string]struct{})
	prio := make(map[string]struct{})

	for _, node := range dom.GetAllNodesWithTag(doc, "img", "source") {
		urls := nodeImageURLs(node, origin)
		if len(urls) == 0 {
			continue
		}

		isPriority := hasPriorityAncestor(node)
		for _, u := range urls {
			all[u] = struct{}{}
			if isPriority {
				prio[u] = struct{}{}
			}
		}
	}

	bg := make(map[string]struct{}, len(all))
	for u := range all {
		if _, ok := prio[u]; !ok {
			bg[u] = struct{}{}
		}
	}

	return sortedKeys(prio), sortedKeys(bg)
}

// nodeImageURLs returns the absolute image URLs a single element
// references.
func nodeImageURLs(node *html.Node, origin *url.URL) []string {
	var urls []string

	if src := strings.TrimSpace(dom.GetAttribute(node, "src")); src != "" {
		if u := toAbsoluteURL(src, origin); u != "" {
			urls = append(urls, u)
		}
	}

	for _, candidate := range srcset.Parse(dom.GetAttribute(node, "srcset")) {
		if u := toAbsoluteURL(candidate.URL, origin); u != "" {
			urls = append(urls, u)
		}
	}

	return urls
}

func hasPriorityAncestor(node *html.Node) bool {
	for p := node.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		for _, name := range priorityClasses {
			if hasClass(p, name) {
				return true
			}
		}
	}
	return false
}

// toAbsoluteURL resolves a reference against the site origin. Data URIs
// and unparsable values are dropped.
func toAbsoluteURL(ref string, origin *url.URL) string {
	if ref == "" || strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "#") {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if u.Scheme != "" {
		return u.String()
	}
	return origin.ResolveReference(u).String()
}
