// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package fetch downloads page assets into an [assetcache.Store] under a
// shared concurrency budget. Per-asset failures are never returned to the
// caller: they are logged, reported as [OutcomeSkipped] and leave nothing
// in the cache, so a later consumer simply falls back to the network.
package fetch

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/gabriel-vasile/mimetype"

	"codeberg.org/wikiread/wikiread/pkg/assetcache"
)

// DefaultConcurrency is the size of the download permit pool. One pool is
// shared by every fetch issued through the same [Downloader], priority and
// background alike.
const DefaultConcurrency = 8

const progressChunkSize = 8 << 10

// Outcome is the result of a download attempt.
type Outcome int

const (
	// OutcomeStored means the asset was downloaded and written to the cache.
	OutcomeStored Outcome = iota + 1

	// OutcomeCached means the cache already had the asset and no
	// network call was made.
	OutcomeCached

	// OutcomeSkipped means the download failed and was dropped. The only
	// trace it leaves is a missing cache entry.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStored:
		return "stored"
	case OutcomeCached:
		return "cached"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// Recorder receives accounting for completed downloads.
type Recorder interface {
	RecordDownload(outcome Outcome, size int64)
}

// Downloader fetches asset URLs into a cache.
type Downloader struct {
	client   *http.Client
	cache    assetcache.Store
	sem      *semaphore.Weighted
	group    *singleflight.Group
	logger   *slog.Logger
	recorder Recorder
}

// Option is a function that can set a [Downloader] option.
type Option func(d *Downloader)

// WithConcurrency sets the number of downloads that can run at the
// same time.
func WithConcurrency(n int64) Option {
	return func(d *Downloader) {
		d.sem = semaphore.NewWeighted(n)
	}
}

// WithLogger sets the downloader's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// WithRecorder sets a [Recorder] that receives per-download accounting.
func WithRecorder(r Recorder) Option {
	return func(d *Downloader) {
		d.recorder = r
	}
}

// New returns a [Downloader] storing into the given cache.
func New(client *http.Client, cache assetcache.Store, options ...Option) *Downloader {
	d := &Downloader{
		client: client,
		cache:  cache,
		group:  &singleflight.Group{},
	}

	for _, fn := range options {
		fn(d)
	}

	if d.client == nil {
		d.client = http.DefaultClient
	}
	if d.sem == nil {
		d.sem = semaphore.NewWeighted(DefaultConcurrency)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	return d
}

// Cache returns the downloader's cache.
func (d *Downloader) Cache() assetcache.Store {
	return d.cache
}

// Fetch downloads a URL into the cache. When the cache already holds the
// URL it returns immediately without any network call. Concurrent calls
// for the same URL are collapsed into a single download.
func (d *Downloader) Fetch(ctx context.Context, uri string) Outcome {
	if _, ok := d.cache.Get(uri); ok {
		return d.record(OutcomeCached, 0)
	}

	res, _, _ := d.group.Do(uri, func() (interface{}, error) {
		return d.download(ctx, uri, nil), nil
	})
	d.group.Forget(uri)

	outcome, ok := res.(Outcome)
	if !ok {
		return OutcomeSkipped
	}
	return outcome
}

// FetchProgress is [Downloader.Fetch] with byte-level progress: the
// response body is read in fixed-size chunks and progress receives the
// size of each chunk before the final cache write.
// It does not collapse concurrent calls; the caller is expected to pass
// a deduplicated URL set.
func (d *Downloader) FetchProgress(ctx context.Context, uri string, progress func(n int)) Outcome {
	if _, ok := d.cache.Get(uri); ok {
		return d.record(OutcomeCached, 0)
	}

	return d.download(ctx, uri, progress)
}

// Size returns the size advertised by a HEAD request for a URL. A URL
// already present in the cache, a failed request and a response without
// a content length all yield 0.
func (d *Downloader) Size(ctx context.Context, uri string) int64 {
	if _, ok := d.cache.Get(uri); ok {
		return 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
	if err != nil {
		return 0
	}

	rsp, err := d.client.Do(req)
	if err != nil {
		d.logger.Debug("asset size probe failed",
			slog.String("url", uri),
			slog.Any("err", err),
		)
		return 0
	}
	defer rsp.Body.Close() //nolint:errcheck

	if rsp.StatusCode/100 != 2 || rsp.ContentLength < 0 {
		return 0
	}
	return rsp.ContentLength
}

func (d *Downloader) download(ctx context.Context, uri string, progress func(n int)) Outcome {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		d.logger.Warn("download not scheduled", slog.String("url", uri), slog.Any("err", err))
		return d.record(OutcomeSkipped, 0)
	}
	defer d.sem.Release(1)

	// The permit wait can outlive an earlier download of the same URL.
	if _, ok := d.cache.Get(uri); ok {
		return d.record(OutcomeCached, 0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		d.logger.Warn("invalid asset url", slog.String("url", uri), slog.Any("err", err))
		return d.record(OutcomeSkipped, 0)
	}
	req.Header.Set("Accept", "image/webp,image/svg+xml,image/*,*/*;q=0.8")

	rsp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("asset download failed", slog.String("url", uri), slog.Any("err", err))
		return d.record(OutcomeSkipped, 0)
	}
	defer rsp.Body.Close() //nolint:errcheck

	if rsp.StatusCode/100 != 2 {
		d.logger.Warn("asset download failed",
			slog.String("url", uri),
			slog.Int("status", rsp.StatusCode),
		)
		return d.record(OutcomeSkipped, 0)
	}

	data, err := d.readBody(rsp.Body, progress)
	if err != nil {
		d.logger.Warn("asset read failed", slog.String("url", uri), slog.Any("err", err))
		return d.record(OutcomeSkipped, 0)
	}

	d.cache.Set(uri, data)
	d.logger.Debug("asset stored",
		slog.String("url", uri),
		slog.Int("size", len(data)),
		slog.String("type", mimetype.Detect(data).String()),
	)
	return d.record(OutcomeStored, int64(len(data)))
}

// readBody reads a response body, in chunks when a progress callback
// is given.
func (d *Downloader) readBody(r io.Reader, progress func(n int)) ([]byte, error) {
	if progress == nil {
		return io.ReadAll(r)
	}

	buf := new(bytes.Buffer)
	chunk := make([]byte, progressChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			progress(n)
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (d *Downloader) record(outcome Outcome, size int64) Outcome {
	if d.recorder != nil {
		d.recorder.RecordDownload(outcome, size)
	}
	return outcome
}
