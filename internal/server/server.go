// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package server is the Wikiread HTTP server. It serves rendered
// pages, cached assets and a small JSON API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"codeberg.org/wikiread/wikiread/internal/metrics"
	"codeberg.org/wikiread/wikiread/internal/pipeline"
	"codeberg.org/wikiread/wikiread/internal/reader"
	"codeberg.org/wikiread/wikiread/internal/saved"
	"codeberg.org/wikiread/wikiread/internal/wiki"
	"codeberg.org/wikiread/wikiread/pkg/fetch"
)

// Server is a wrapper around chi router.
type Server struct {
	*chi.Mux

	wiki   *wiki.Client
	dl     *fetch.Downloader
	loader *pipeline.Loader
	store  *saved.Store
	theme  reader.Theme
}

// Option configures a Server.
type Option func(s *Server)

// WithStore installs a saved page store. Without one, the saved page
// and history routes respond with 404 and pages always come from the
// network.
func WithStore(store *saved.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithTheme sets the default document theme.
func WithTheme(theme reader.Theme) Option {
	return func(s *Server) {
		s.theme = theme
	}
}

// New creates the server and mounts all its routes.
func New(wc *wiki.Client, dl *fetch.Downloader, options ...Option) *Server {
	s := &Server{
		Mux:  chi.NewRouter(),
		wiki: wc,
		dl:   dl,
	}
	for _, fn := range options {
		fn(s)
	}

	loaderOptions := []pipeline.LoaderOption{}
	if s.store != nil {
		loaderOptions = append(loaderOptions, pipeline.WithSavedLookup(s.store.Lookup))
	}
	s.loader = pipeline.NewLoader(wc, dl, loaderOptions...)

	s.Use(
		middleware.RequestID,
		middleware.Recoverer,
		Logger(),
		metrics.Middleware,
	)

	s.Get("/read/{page}", s.readPage)
	s.Get("/assets", s.serveAsset)
	s.Get("/api/info", s.serviceInfo)
	s.Method("GET", "/metrics", metrics.Handler())

	if s.store != nil {
		s.Route("/api/saved", func(r chi.Router) {
			r.Get("/", s.listSaved)
			r.Post("/{page}", s.savePage)
			r.Delete("/{page}", s.deleteSaved)
		})
		s.Get("/api/history", s.listHistory)
	}

	return s
}

// ListenAndServe runs the HTTP server until the context is canceled,
// then shuts it down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, host string, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
