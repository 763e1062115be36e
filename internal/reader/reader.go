// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package reader

import (
	"context"
	"errors"
	"log/slog"

	"codeberg.org/wikiread/wikiread/internal/pipeline"
	"codeberg.org/wikiread/wikiread/internal/wiki"
)

// Surface receives the final document. Implementations range from an
// HTTP response writer to a file on disk.
type Surface interface {
	Render(document string) error
}

// Progress receives overall completion percents. The acquisition
// pipeline maps to the 0 to 50 range, rendering to 50 to 100.
type Progress func(percent int)

// History records pages as they are opened.
type History interface {
	RecordVisit(page *wiki.ParseResult) error
}

// Reader turns a page reference into a rendered document.
type Reader struct {
	loader  *pipeline.Loader
	theme   Theme
	history History
	logger  *slog.Logger
}

// Option configures a Reader.
type Option func(r *Reader)

// WithTheme sets the document theme.
func WithTheme(theme Theme) Option {
	return func(r *Reader) {
		r.theme = theme
	}
}

// WithHistory installs a visit recorder.
func WithHistory(h History) Option {
	return func(r *Reader) {
		r.history = h
	}
}

// WithLogger sets the reader's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// New creates a Reader on top of a pipeline loader.
func New(loader *pipeline.Loader, options ...Option) *Reader {
	r := &Reader{
		loader: loader,
		logger: slog.Default(),
	}
	for _, fn := range options {
		fn(r)
	}
	return r
}

// Open loads a page, renders its document on the surface and schedules
// the remaining assets in the background. Once the surface has
// rendered, a load error can no longer occur; asset failures never
// surface here at all.
func (r *Reader) Open(ctx context.Context, ref wiki.PageRef, surface Surface, progress Progress) error {
	emit := func(percent int) {
		if progress != nil {
			progress(percent)
		}
	}

	var result *pipeline.Result
	for event := range r.loader.Load(ctx, ref) {
		if event.Err != nil {
			return event.Err
		}
		if event.Result != nil {
			result = event.Result
			continue
		}
		// Page and asset phases each cover a quarter of the bar.
		switch event.Phase {
		case pipeline.PhasePage:
			emit(event.Percent / 4)
		case pipeline.PhaseAssets:
			emit(25 + event.Percent/4)
		}
	}
	if result == nil {
		return errors.New("page load ended without a result")
	}
	emit(50)

	doc := BuildDocument(result.Page.DisplayTitle, result.HTML, r.theme)
	if err := surface.Render(doc); err != nil {
		return err
	}
	emit(100)

	r.logger.Info("page rendered",
		slog.String("page", ref.String()),
		slog.String("title", result.Page.Title),
		slog.Bool("saved", result.Saved),
		slog.Int("background_assets", len(result.Background)),
	)

	if r.history != nil {
		if err := r.history.RecordVisit(result.Page); err != nil {
			r.logger.Warn("history record failed", slog.Any("err", err))
		}
	}

	r.loader.DownloadBackground(result.Background)
	return nil
}
