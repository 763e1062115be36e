// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package pipeline wires page retrieval, content processing and asset
// download into a single ordered event stream.
package pipeline

import (
	"codeberg.org/wikiread/wikiread/internal/wiki"
)

// Phase is the stage a progress event belongs to.
type Phase int

const (
	// PhasePage covers fetching and decoding the page body.
	PhasePage Phase = iota

	// PhaseAssets covers downloading the priority asset set.
	PhaseAssets
)

func (p Phase) String() string {
	if p == PhaseAssets {
		return "assets"
	}
	return "page"
}

// Result is the payload of a successful terminal event.
type Result struct {
	// Page holds the decoded parse response.
	Page *wiki.ParseResult

	// HTML is the processed article body, URLs rewritten and
	// blocked fragments removed.
	HTML string

	// Background lists the asset URLs excluded from the priority
	// set, to be fetched after the page is displayed.
	Background []string

	// Saved reports that the page came from local storage and no
	// network request was made.
	Saved bool
}

// Event is one element of the stream returned by Load. Non-terminal
// events report progress, the final event carries either a Result or
// an error, and the channel is closed right after it.
type Event struct {
	Phase   Phase
	Percent int
	Result  *Result
	Err     error
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Result != nil || e.Err != nil
}
