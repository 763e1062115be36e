// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package app

import (
	"log/slog"

	. "github.com/phsym/console-slog" //nolint:revive,staticcheck
)

// logTheme styles the console handler. Level colors are indexed from
// error down to debug.
type logTheme struct {
	timestamp ANSIMod
	source    ANSIMod
	message   ANSIMod
	debugMsg  ANSIMod
	attrKey   ANSIMod
	attrValue ANSIMod
	attrError ANSIMod
	levels    [4]ANSIMod
}

func (t logTheme) Name() string            { return "" }
func (t logTheme) Timestamp() ANSIMod      { return t.timestamp }
func (t logTheme) Source() ANSIMod         { return t.source }
func (t logTheme) Message() ANSIMod        { return t.message }
func (t logTheme) MessageDebug() ANSIMod   { return t.debugMsg }
func (t logTheme) AttrKey() ANSIMod        { return t.attrKey }
func (t logTheme) AttrValue() ANSIMod      { return t.attrValue }
func (t logTheme) AttrValueError() ANSIMod { return t.attrError }
func (t logTheme) LevelError() ANSIMod     { return t.levels[0] }
func (t logTheme) LevelWarn() ANSIMod      { return t.levels[1] }
func (t logTheme) LevelInfo() ANSIMod      { return t.levels[2] }
func (t logTheme) LevelDebug() ANSIMod     { return t.levels[3] }
func (t logTheme) Level(level slog.Level) ANSIMod {
	switch {
	case level >= slog.LevelError:
		return t.LevelError()
	case level >= slog.LevelWarn:
		return t.LevelWarn()
	case level >= slog.LevelInfo:
		return t.LevelInfo()
	default:
		return t.LevelDebug()
	}
}

// stdLogTheme is unstyled, for logs going to a file or a pipe.
var stdLogTheme = logTheme{}

// devLogTheme keeps messages plain and pushes everything else into the
// margins, so page titles and asset URLs stand out when tailing.
var devLogTheme = logTheme{
	timestamp: ToANSICode(Faint),
	source:    ToANSICode(Faint, BrightBlack),
	message:   ToANSICode(Bold),
	attrKey:   ToANSICode(Blue),
	attrValue: ToANSICode(BrightBlack),
	attrError: ToANSICode(Bold, Red),
	levels: [4]ANSIMod{
		ToANSICode(Bold, Red),
		ToANSICode(Bold, Yellow),
		ToANSICode(Bold, Cyan),
		ToANSICode(Faint, Magenta),
	},
}
