// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"codeberg.org/wikiread/wikiread/configs"
	"codeberg.org/wikiread/wikiread/internal/metrics"
	"codeberg.org/wikiread/wikiread/internal/reader"
	"codeberg.org/wikiread/wikiread/internal/saved"
	"codeberg.org/wikiread/wikiread/internal/wiki"
	"codeberg.org/wikiread/wikiread/pkg/fetch"
)

// htmlSurface delivers a rendered document as an HTTP response.
type htmlSurface struct {
	w http.ResponseWriter
}

func (s *htmlSurface) Render(document string) error {
	s.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.w.WriteHeader(http.StatusOK)
	_, err := s.w.Write([]byte(document))
	return err
}

func (s *Server) readPage(w http.ResponseWriter, r *http.Request) {
	ref := wiki.NewPageRef(chi.URLParam(r, "page"))

	theme := s.theme
	if name := r.URL.Query().Get("theme"); name != "" {
		theme = reader.ParseTheme(name)
	}

	options := []reader.Option{reader.WithTheme(theme)}
	if s.store != nil {
		options = append(options, reader.WithHistory(s.store))
	}

	rd := reader.New(s.loader, options...)
	if err := rd.Open(r.Context(), ref, &htmlSurface{w: w}, nil); err != nil {
		metrics.PageLoad("error")
		Err(w, err)
		return
	}
	metrics.PageLoad("ok")
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("url")
	if uri == "" {
		Render(w, http.StatusBadRequest, Message{
			Status:  http.StatusBadRequest,
			Message: "missing url parameter",
		})
		return
	}

	data, ok := s.dl.Cache().Get(uri)
	metrics.AssetServed(ok)
	if !ok {
		if s.dl.Fetch(r.Context(), uri) == fetch.OutcomeSkipped {
			Render(w, http.StatusNotFound, Message{
				Status:  http.StatusNotFound,
				Message: "asset not available",
			})
			return
		}
		data, _ = s.dl.Cache().Get(uri)
	}

	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Cache-Control", "max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

func (s *Server) serviceInfo(w http.ResponseWriter, _ *http.Request) {
	type serviceInfo struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Wiki    string `json:"wiki"`
	}

	Render(w, http.StatusOK, serviceInfo{
		Name:    "wikiread",
		Version: configs.Version(),
		Wiki:    s.wiki.Origin().String(),
	})
}

type savedInfo struct {
	PageID   int    `json:"page_id"`
	Title    string `json:"title"`
	Revision int64  `json:"revision"`
}

func (s *Server) listSaved(w http.ResponseWriter, _ *http.Request) {
	pages, err := s.store.List()
	if err != nil {
		Err(w, err)
		return
	}

	res := make([]savedInfo, len(pages))
	for i, p := range pages {
		res[i] = savedInfo{PageID: p.PageID, Title: p.Title, Revision: p.Revision}
	}
	Render(w, http.StatusOK, res)
}

func (s *Server) savePage(w http.ResponseWriter, r *http.Request) {
	ref := wiki.NewPageRef(chi.URLParam(r, "page"))

	page, err := s.wiki.ParsePage(r.Context(), ref, nil)
	if err != nil {
		Err(w, err)
		return
	}
	if err := s.store.SavePage(page); err != nil {
		Err(w, err)
		return
	}

	Render(w, http.StatusCreated, savedInfo{
		PageID:   page.PageID,
		Title:    page.Title,
		Revision: page.RevisionID,
	})
}

func (s *Server) deleteSaved(w http.ResponseWriter, r *http.Request) {
	ref := wiki.NewPageRef(chi.URLParam(r, "page"))

	if err := s.store.Remove(ref); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, saved.ErrNotFound) {
			status = http.StatusNotFound
		}
		Render(w, status, Message{Status: status, Message: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	limit := uint(50)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			limit = uint(n)
		}
	}

	visits, err := s.store.History(limit)
	if err != nil {
		Err(w, err)
		return
	}

	type visitInfo struct {
		PageID int    `json:"page_id"`
		Title  string `json:"title"`
		Seen   string `json:"seen"`
	}
	res := make([]visitInfo, len(visits))
	for i, v := range visits {
		res[i] = visitInfo{PageID: v.PageID, Title: v.Title, Seen: v.Seen.Format("2006-01-02T15:04:05Z07:00")}
	}
	Render(w, http.StatusOK, res)
}
