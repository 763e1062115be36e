// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package srcset parses and serializes HTML "srcset" attribute values.
package srcset

import (
	"strconv"
	"strings"
)

// ImageSource is one image candidate of a source set.
// Width, Height and Density are mutually constrained as per the HTML
// specification: a candidate carries at most one of each and cannot
// combine a density with a width or height.
type ImageSource struct {
	URL     string
	Width   int
	Height  int
	Density float64
}

// String returns the candidate in its attribute form.
func (s ImageSource) String() string {
	b := new(strings.Builder)
	b.WriteString(s.URL)
	if s.Width > 0 {
		b.WriteString(" " + strconv.Itoa(s.Width) + "w")
	}
	if s.Height > 0 {
		b.WriteString(" " + strconv.Itoa(s.Height) + "h")
	}
	if s.Density > 0 {
		b.WriteString(" " + strconv.FormatFloat(s.Density, 'f', -1, 64) + "x")
	}
	return b.String()
}

// SourceSet is a list of image candidates.
type SourceSet []ImageSource

// String returns the whole set in its attribute form.
func (s SourceSet) String() string {
	parts := make([]string, len(s))
	for i, src := range s {
		parts[i] = src.String()
	}
	return strings.Join(parts, ", ")
}

// Parse parses a srcset attribute value. Invalid candidates (bad or
// duplicate descriptors, parenthesized garbage) are dropped from the
// result, never reported as errors.
func Parse(input string) SourceSet {
	res := SourceSet{}

	pos := 0
	for pos < len(input) {
		// Skip leading whitespace and commas.
		for pos < len(input) && (isSpace(input[pos]) || input[pos] == ',') {
			pos++
		}
		if pos >= len(input) {
			break
		}

		// The URL runs to the next whitespace.
		start := pos
		for pos < len(input) && !isSpace(input[pos]) {
			pos++
		}
		uri := input[start:pos]

		if trimmed := strings.TrimRight(uri, ","); trimmed != uri {
			// The URL carries its own trailing comma, there are no descriptors.
			if src, ok := newSource(trimmed, nil); ok {
				res = append(res, src)
			}
			continue
		}

		descriptors, next := parseDescriptors(input, pos)
		pos = next
		if src, ok := newSource(uri, descriptors); ok {
			res = append(res, src)
		}
	}

	return res
}

// parseDescriptors collects descriptor tokens until a top-level comma
// or the end of input. Parentheses group tokens, like the HTML parsing
// algorithm does.
func parseDescriptors(input string, pos int) (descriptors []string, next int) {
	start := -1
	depth := 0

	flush := func(end int) {
		if start >= 0 {
			descriptors = append(descriptors, input[start:end])
			start = -1
		}
	}

	for pos < len(input) {
		c := input[pos]
		switch {
		case c == ',' && depth == 0:
			flush(pos)
			return descriptors, pos + 1
		case isSpace(c) && depth == 0:
			flush(pos)
		default:
			if c == '(' {
				depth++
			}
			if c == ')' && depth > 0 {
				depth--
			}
			if start < 0 {
				start = pos
			}
		}
		pos++
	}
	flush(pos)
	return descriptors, pos
}

// newSource builds an [ImageSource] from a URL and its descriptors.
// It returns false when any descriptor is invalid.
func newSource(uri string, descriptors []string) (ImageSource, bool) {
	src := ImageSource{URL: uri}
	if uri == "" {
		return src, false
	}

	for _, d := range descriptors {
		if len(d) < 2 {
			return src, false
		}
		value, unit := d[:len(d)-1], d[len(d)-1]
		switch unit {
		case 'w', 'W':
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 || src.Width > 0 || src.Density > 0 {
				return src, false
			}
			src.Width = n
		case 'h', 'H':
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 || src.Height > 0 || src.Density > 0 {
				return src, false
			}
			src.Height = n
		case 'x', 'X':
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f <= 0 || src.Density > 0 || src.Width > 0 || src.Height > 0 {
				return src, false
			}
			src.Density = f
		default:
			return src, false
		}
	}

	return src, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
