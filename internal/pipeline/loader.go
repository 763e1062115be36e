// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"codeberg.org/wikiread/wikiread/internal/contents"
	"codeberg.org/wikiread/wikiread/internal/wiki"
	"codeberg.org/wikiread/wikiread/pkg/fetch"
)

// SavedLookup returns a locally stored parse result for a page, when
// one exists. It lets the loader serve saved pages without touching
// the network.
type SavedLookup func(ref wiki.PageRef) (*wiki.ParseResult, bool)

// Loader runs the full acquisition pipeline for one page.
type Loader struct {
	wiki   *wiki.Client
	dl     *fetch.Downloader
	saved  SavedLookup
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(l *Loader)

// WithSavedLookup installs a local page store lookup.
func WithSavedLookup(s SavedLookup) LoaderOption {
	return func(l *Loader) {
		l.saved = s
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader around a wiki client and a downloader.
func NewLoader(client *wiki.Client, dl *fetch.Downloader, options ...LoaderOption) *Loader {
	l := &Loader{
		wiki:   client,
		dl:     dl,
		logger: slog.Default(),
	}
	for _, fn := range options {
		fn(l)
	}
	return l
}

// Load starts the pipeline for the given page and returns its event
// stream. The stream always ends with exactly one terminal event,
// after which the channel is closed. Progress percents within a phase
// never decrease and repeated values are dropped.
//
// The stream is unbuffered. A consumer that stops reading only parks
// the sender: the downloads themselves keep running to completion and
// still populate the cache.
func (l *Loader) Load(ctx context.Context, ref wiki.PageRef) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)
		l.run(ctx, ref, events)
	}()

	return events
}

func (l *Loader) run(ctx context.Context, ref wiki.PageRef, events chan<- Event) {
	page, saved := l.lookupSaved(ref)
	if !saved {
		var err error
		last := -1
		page, err = l.wiki.ParsePage(ctx, ref, func(percent int) {
			if percent <= last {
				return
			}
			last = percent
			events <- Event{Phase: PhasePage, Percent: percent}
		})
		if err != nil {
			l.logger.Error("page load failed", slog.String("page", ref.String()), slog.Any("err", err))
			events <- Event{Err: err}
			return
		}
	}

	content, err := contents.Process(page.BodyHTML, l.wiki.Origin())
	if err != nil {
		events <- Event{Err: err}
		return
	}

	l.fetchPriority(ctx, content.Priority, events)

	events <- Event{
		Phase:   PhaseAssets,
		Percent: 100,
		Result: &Result{
			Page:       page,
			HTML:       content.HTML,
			Background: content.Background,
			Saved:      saved,
		},
	}
}

func (l *Loader) lookupSaved(ref wiki.PageRef) (*wiki.ParseResult, bool) {
	if l.saved == nil {
		return nil, false
	}
	page, ok := l.saved(ref)
	if !ok {
		return nil, false
	}
	l.logger.Debug("serving saved page", slog.String("page", ref.String()))
	return page, true
}

// fetchPriority downloads the whole priority set, emitting byte-level
// progress against the aggregate declared size. URLs already cached,
// or whose size probe failed, contribute nothing to that total but are
// still downloaded; their bytes can push the numerator past the total,
// so the percent is clamped. When nothing has a declared size the
// phase is skipped entirely.
func (l *Loader) fetchPriority(ctx context.Context, urls []string, events chan<- Event) {
	var total int64
	for _, uri := range urls {
		total += l.dl.Size(ctx, uri)
	}
	if total == 0 {
		return
	}

	// Downloads never touch the event stream themselves: they account
	// bytes and signal, and the single sender loop below emits. A
	// consumer that stops reading can then only ever park the sender,
	// never a download holding one of the shared permits.
	var (
		mu      sync.Mutex
		written int64
	)
	notify := make(chan struct{}, 1)
	done := make(chan struct{})

	progress := func(n int) {
		mu.Lock()
		written += int64(n)
		mu.Unlock()
		select {
		case notify <- struct{}{}:
		default:
		}
	}

	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for _, uri := range urls {
			wg.Add(1)
			go func(uri string) {
				defer wg.Done()
				l.dl.FetchProgress(ctx, uri, progress)
			}(uri)
		}
		wg.Wait()
	}()

	last := 0
	emit := func() {
		mu.Lock()
		n := written
		mu.Unlock()

		percent := int(n * 100 / total)
		if percent > 100 {
			percent = 100
		}
		if percent > last {
			last = percent
			events <- Event{Phase: PhaseAssets, Percent: percent}
		}
	}

	for {
		select {
		case <-notify:
			emit()
		case <-done:
			emit()
			return
		}
	}
}
