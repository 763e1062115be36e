// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/wikiread/wikiread/internal/wiki"
)

// Message is used by the server's JSON error responses.
type Message struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Render sends a JSON response.
func Render(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		slog.Error("response encoding", slog.Any("err", err))
	}
}

// Err sends an error response, with a status matching the error's
// category.
func Err(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, wiki.ErrNoNetwork),
		errors.Is(err, wiki.ErrConnectionRefused):
		status = http.StatusBadGateway
	case errors.Is(err, wiki.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, wiki.ErrUpstream),
		errors.Is(err, wiki.ErrMalformedResponse):
		status = http.StatusBadGateway
	}

	Render(w, status, Message{Status: status, Message: err.Error()})
}
