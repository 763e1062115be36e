// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package httpclient is Wikiread's own HTTP client.
// It provides an [http.RoundTripper] with sensible defaults that
// makes outgoing requests look like they come from a mobile browser.
package httpclient

import (
	"context"
	"crypto/tls"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"time"

	"golang.org/x/net/publicsuffix"
)

const uaString = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Mobile Safari/537.36"

// defaultDialer is our own default net.Dialer with shorter timeout and keepalive.
var defaultDialer = net.Dialer{
	Timeout:   15 * time.Second,
	KeepAlive: 30 * time.Second,
}

// defaultTransport is our http.RoundTripper with some custom settings.
var defaultTransport = &http.Transport{
	DialContext: defaultDialer.DialContext,
	Proxy:       http.ProxyFromEnvironment,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
	ForceAttemptHTTP2:     true,
	DisableCompression:    false,
	DisableKeepAlives:     false,
	MaxIdleConns:          50,
	MaxIdleConnsPerHost:   8,
	IdleConnTimeout:       30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

// defaultHeaders are the HTTP headers that are sent with every new request.
// They're attached to the transport and can be overridden and/or modified
// while using the associated client.
var defaultHeaders = http.Header{
	"User-Agent":       []string{uaString},
	"Accept":           []string{"text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/jpeg,image/png,*/*;q=0.8"},
	"Accept-Language":  []string{"en-US,en;q=0.8"},
	"Sec-CH-UA-mobile": []string{"?1"},
}

// Transport wraps an [http.RoundTripper].
type Transport struct {
	http.RoundTripper
	header http.Header
	logger *slog.Logger
}

// RoundTrip implements [http.RoundTripper].
// It adds default headers and logs (debug-10 level) every request.
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	// A RoundTripper should not modify the request. Since we only want to add
	// headers, we can work with a shallow copy.
	req := new(http.Request)
	*req = *r
	req.Header = req.Header.Clone()

	// Add the client's default headers that don't exist in the
	// current request.
	for k, values := range t.header {
		if _, ok := r.Header[textproto.CanonicalMIMEHeaderKey(k)]; !ok {
			req.Header[k] = values
		}
	}

	attrs := []slog.Attr{
		slog.Group("request",
			slog.String("url", req.URL.String()),
			slog.String("method", req.Method),
			slog.Any("headers", req.Header),
		),
	}

	now := time.Now()
	rsp, err := t.RoundTripper.RoundTrip(req)

	if err != nil {
		attrs = append(attrs, slog.Group("response",
			slog.Any("err", err),
		))
	} else {
		attrs = append(attrs, slog.Group("response",
			slog.Int("status", rsp.StatusCode),
			slog.Any("headers", rsp.Header),
		))
	}
	attrs = append(attrs, slog.Duration("time", time.Since(now)))
	t.Log().LogAttrs(context.Background(), slog.LevelDebug-10, "request", attrs...)

	return rsp, err
}

// Log returns the transport's logger.
func (t *Transport) Log() *slog.Logger {
	return t.logger
}

// SetLogger sets the transport's logger.
func (t *Transport) SetLogger(l *slog.Logger) {
	t.logger = l
}

// SetHeader receives a function that can manipulate the
// transport's default headers.
func (t *Transport) SetHeader(fn func(h http.Header)) {
	fn(t.header)
}

// New returns a new client with an empty cookie storage and a [Transport] instance.
func New() *http.Client {
	cookies, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	return &http.Client{
		Transport: &Transport{
			RoundTripper: defaultTransport.Clone(),
			header:       maps.Clone(defaultHeaders),
			logger:       slog.Default(),
		},
		Timeout: 10 * time.Second,
		Jar:     cookies,
	}
}
