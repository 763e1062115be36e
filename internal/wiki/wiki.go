// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package wiki consumes the upstream wiki parse API. Only the fields the
// reading pipeline needs are projected out of the response; everything
// else in the payload is ignored.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// PageRef identifies a page, by numeric id or by title.
type PageRef struct {
	ID    int
	Title string
}

// NewPageRef builds a [PageRef] from its string form: a numeric string
// is an id, anything else a title.
func NewPageRef(s string) PageRef {
	if id, err := strconv.Atoi(s); err == nil && id > 0 {
		return PageRef{ID: id}
	}
	return PageRef{Title: s}
}

// IsZero returns true when the reference points at nothing.
func (r PageRef) IsZero() bool {
	return r.ID == 0 && r.Title == ""
}

func (r PageRef) String() string {
	if r.ID > 0 {
		return "#" + strconv.Itoa(r.ID)
	}
	return r.Title
}

// ParseResult is the parse API response projected into the fields the
// pipeline consumes. It is immutable once fetched.
type ParseResult struct {
	PageID       int
	Title        string
	DisplayTitle string
	RevisionID   int64
	BodyHTML     string
}

// Client requests pages from a wiki's parse API.
type Client struct {
	origin *url.URL
	client *http.Client
	logger *slog.Logger
}

// ClientOption is a function that can set a [Client] option.
type ClientOption func(c *Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a [Client] for a wiki at the given origin
// (scheme and host, no path).
func NewClient(origin string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid wiki origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid wiki origin %q", origin)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{origin: u}
	for _, fn := range options {
		fn(c)
	}

	if c.client == nil {
		c.client = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// Origin returns the wiki's site origin. Relative asset references
// resolve against it.
func (c *Client) Origin() *url.URL {
	return c.origin
}

// parseEnvelope is the part of the parse API payload we read.
type parseEnvelope struct {
	Parse *struct {
		Title        string `json:"title"`
		PageID       int    `json:"pageid"`
		RevID        int64  `json:"revid"`
		DisplayTitle string `json:"displaytitle"`
		Text         struct {
			Content string `json:"*"`
		} `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// ParsePage fetches the parsed content of a page. When the response
// advertises its length, progress receives whole percents as the body
// streams in; otherwise no intermediate progress is reported.
// Any error it returns is fatal to the page load; use [Categorize] to
// map it to a user-facing category.
func (c *Client) ParsePage(ctx context.Context, ref PageRef, progress func(percent int)) (*ParseResult, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("%w: empty page reference", ErrMalformedResponse)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.parseURL(ref), nil)
	if err != nil {
		return nil, err
	}

	rsp, err := c.client.Do(req)
	if err != nil {
		return nil, Categorize(err)
	}
	defer rsp.Body.Close() //nolint:errcheck

	if rsp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: parse API status %d", ErrUpstream, rsp.StatusCode)
	}

	var body io.Reader = rsp.Body
	if progress != nil && rsp.ContentLength > 0 {
		body = &progressReader{
			r:        rsp.Body,
			total:    rsp.ContentLength,
			progress: progress,
		}
	}

	var envelope parseEnvelope
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if envelope.Error != nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrUpstream, envelope.Error.Info, envelope.Error.Code)
	}
	if envelope.Parse == nil || envelope.Parse.PageID == 0 || envelope.Parse.Text.Content == "" {
		return nil, fmt.Errorf("%w: missing parse fields", ErrMalformedResponse)
	}

	res := &ParseResult{
		PageID:       envelope.Parse.PageID,
		Title:        envelope.Parse.Title,
		DisplayTitle: envelope.Parse.DisplayTitle,
		RevisionID:   envelope.Parse.RevID,
		BodyHTML:     envelope.Parse.Text.Content,
	}
	if res.DisplayTitle == "" {
		res.DisplayTitle = res.Title
	}

	c.logger.Debug("page parsed",
		slog.String("page", ref.String()),
		slog.String("title", res.Title),
		slog.Int64("revision", res.RevisionID),
	)
	return res, nil
}

func (c *Client) parseURL(ref PageRef) string {
	q := url.Values{}
	q.Set("action", "parse")
	q.Set("format", "json")
	q.Set("prop", "text|revid|displaytitle")
	q.Set("redirects", "1")
	if ref.ID > 0 {
		q.Set("pageid", strconv.Itoa(ref.ID))
	} else {
		q.Set("page", ref.Title)
	}

	u := *c.origin
	u.Path += "/api.php"
	u.RawQuery = q.Encode()
	return u.String()
}

// progressReader reports whole-percent read progress against a known
// total. Percentages only move forward.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	progress func(percent int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.progress(pct)
		}
	}
	return n, err
}
