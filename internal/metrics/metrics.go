// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package metrics exposes the application's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeberg.org/wikiread/wikiread/pkg/fetch"
)

var (
	pageLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikiread_page_loads_total",
		Help: "Page loads, by final status.",
	}, []string{"status"})

	assetDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikiread_asset_downloads_total",
		Help: "Asset download attempts, by outcome.",
	}, []string{"outcome"})

	assetBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wikiread_asset_bytes_total",
		Help: "Bytes of asset data stored in the cache.",
	})

	assetServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikiread_assets_served_total",
		Help: "Assets served over HTTP, by cache state.",
	}, []string{"cache"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikiread_http_requests_total",
		Help: "HTTP requests, by method and status.",
	}, []string{"method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wikiread_http_request_duration_seconds",
		Help:    "HTTP request duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// PageLoad counts one finished page load.
func PageLoad(status string) {
	pageLoads.WithLabelValues(status).Inc()
}

// AssetServed counts one asset served over HTTP.
func AssetServed(hit bool) {
	state := "miss"
	if hit {
		state = "hit"
	}
	assetServed.WithLabelValues(state).Inc()
}

// Recorder feeds download outcomes into the collectors. It plugs into
// [fetch.WithRecorder].
type Recorder struct{}

// RecordDownload implements [fetch.Recorder].
func (Recorder) RecordDownload(outcome fetch.Outcome, size int64) {
	assetDownloads.WithLabelValues(outcome.String()).Inc()
	if size > 0 {
		assetBytes.Add(float64(size))
	}
}

// Middleware records request counts and durations.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r)

		httpRequests.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		httpDuration.WithLabelValues(r.Method).Observe(time.Since(started).Seconds())
	})
}

// Handler returns the metrics exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
