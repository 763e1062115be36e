// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package wiki

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Fatal page load error categories. The caller turns them into
// user-facing messages; anything not matching a specific category is
// wrapped in [ErrUpstream].
var (
	ErrNoNetwork         = errors.New("no network connection")
	ErrTimeout           = errors.New("request timed out")
	ErrConnectionRefused = errors.New("connection refused")
	ErrMalformedResponse = errors.New("malformed parse response")
	ErrUpstream          = errors.New("wiki request failed")
)

// Categorize maps a transport error to one of the page load error
// categories, keeping the original error in the chain.
func Categorize(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: %w", ErrConnectionRefused, err)
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return fmt.Errorf("%w: %w", ErrNoNetwork, err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %w", ErrNoNetwork, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %w", ErrUpstream, err)
}
