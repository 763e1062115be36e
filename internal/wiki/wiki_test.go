// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package wiki_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"codeberg.org/wikiread/wikiread/internal/wiki"
)

const parseBody = `{
	"parse": {
		"title": "Dragon dagger",
		"pageid": 42,
		"revid": 1234567,
		"displaytitle": "Dragon dagger",
		"text": {"*": "<p>A powerful dagger.</p>"}
	}
}`

func newClient(t *testing.T) (*wiki.Client, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	c, err := wiki.NewClient("https://wiki.example",
		wiki.WithHTTPClient(&http.Client{Transport: mt}),
	)
	require.NoError(t, err)
	return c, mt
}

func TestNewClient(t *testing.T) {
	assert := require.New(t)

	_, err := wiki.NewClient("not a url")
	assert.Error(err)

	_, err = wiki.NewClient("/relative/only")
	assert.Error(err)

	c, err := wiki.NewClient("https://wiki.example/")
	assert.NoError(err)
	assert.Equal("wiki.example", c.Origin().Host)
}

func TestParsePage(t *testing.T) {
	t.Run("by id", func(t *testing.T) {
		assert := require.New(t)
		c, mt := newClient(t)
		mt.RegisterResponder("GET", `=~^https://wiki\.example/api\.php`,
			func(req *http.Request) (*http.Response, error) {
				assert.Equal("42", req.URL.Query().Get("pageid"))
				assert.Equal("parse", req.URL.Query().Get("action"))
				return httpmock.NewStringResponse(200, parseBody), nil
			})

		res, err := c.ParsePage(context.Background(), wiki.PageRef{ID: 42}, nil)
		assert.NoError(err)
		assert.Equal(42, res.PageID)
		assert.Equal("Dragon dagger", res.Title)
		assert.Equal(int64(1234567), res.RevisionID)
		assert.Equal("<p>A powerful dagger.</p>", res.BodyHTML)
	})

	t.Run("by title", func(t *testing.T) {
		assert := require.New(t)
		c, mt := newClient(t)
		mt.RegisterResponder("GET", `=~^https://wiki\.example/api\.php`,
			func(req *http.Request) (*http.Response, error) {
				assert.Equal("Dragon dagger", req.URL.Query().Get("page"))
				return httpmock.NewStringResponse(200, parseBody), nil
			})

		res, err := c.ParsePage(context.Background(), wiki.NewPageRef("Dragon dagger"), nil)
		assert.NoError(err)
		assert.Equal("Dragon dagger", res.DisplayTitle)
	})

	t.Run("progress with known length", func(t *testing.T) {
		assert := require.New(t)
		c, mt := newClient(t)
		mt.RegisterResponder("GET", `=~^https://wiki\.example/api\.php`,
			func(*http.Request) (*http.Response, error) {
				rsp := httpmock.NewStringResponse(200, parseBody)
				rsp.ContentLength = int64(len(parseBody))
				return rsp, nil
			})

		var seen []int
		_, err := c.ParsePage(context.Background(), wiki.PageRef{ID: 42}, func(pct int) {
			seen = append(seen, pct)
		})
		assert.NoError(err)
		assert.NotEmpty(seen)
		for i := 1; i < len(seen); i++ {
			assert.Greater(seen[i], seen[i-1])
		}
		assert.Equal(100, seen[len(seen)-1])
	})

	t.Run("http failure", func(t *testing.T) {
		assert := require.New(t)
		c, mt := newClient(t)
		mt.RegisterResponder("GET", `=~^https://wiki\.example/api\.php`,
			httpmock.NewStringResponder(500, "boom"))

		_, err := c.ParsePage(context.Background(), wiki.PageRef{ID: 42}, nil)
		assert.ErrorIs(err, wiki.ErrUpstream)
	})

	t.Run("undecodable body", func(t *testing.T) {
		assert := require.New(t)
		c, mt := newClient(t)
		mt.RegisterResponder("GET", `=~^https://wiki\.example/api\.php`,
			httpmock.NewStringResponder(200, "<html>not json</html>"))

		_, err := c.ParsePage(context.Background(), wiki.PageRef{ID: 42}, nil)
		assert.ErrorIs(err, wiki.ErrMalformedResponse)
	})

	t.Run("missing fields", func(t *testing.T) {
		assert := require.New(t)
		c, mt := newClient(t)
		mt.RegisterResponder("GET", `=~^https://wiki\.example/api\.php`,
			httpmock.NewStringResponder(200, `{"parse": {"title": "x"}}`))

		_, err := c.ParsePage(context.Background(), wiki.PageRef{ID: 42}, nil)
		assert.ErrorIs(err, wiki.ErrMalformedResponse)
	})

	t.Run("api error payload", func(t *testing.T) {
		assert := require.New(t)
		c, mt := newClient(t)
		mt.RegisterResponder("GET", `=~^https://wiki\.example/api\.php`,
			httpmock.NewStringResponder(200, `{"error": {"code": "missingtitle", "info": "The page does not exist."}}`))

		_, err := c.ParsePage(context.Background(), wiki.PageRef{ID: 42}, nil)
		assert.ErrorIs(err, wiki.ErrUpstream)
		assert.Contains(err.Error(), "missingtitle")
	})

	t.Run("transport error category", func(t *testing.T) {
		assert := require.New(t)
		c, mt := newClient(t)
		mt.RegisterResponder("GET", `=~^https://wiki\.example/api\.php`,
			httpmock.NewErrorResponder(syscall.ECONNREFUSED))

		_, err := c.ParsePage(context.Background(), wiki.PageRef{ID: 42}, nil)
		assert.ErrorIs(err, wiki.ErrConnectionRefused)
	})
}

func TestCategorize(t *testing.T) {
	assert := require.New(t)

	assert.NoError(wiki.Categorize(nil))
	assert.ErrorIs(wiki.Categorize(context.DeadlineExceeded), wiki.ErrTimeout)
	assert.ErrorIs(wiki.Categorize(syscall.ECONNREFUSED), wiki.ErrConnectionRefused)
	assert.ErrorIs(wiki.Categorize(syscall.ENETUNREACH), wiki.ErrNoNetwork)
	assert.ErrorIs(
		wiki.Categorize(&net.DNSError{Err: "no such host", Name: "wiki.example"}),
		wiki.ErrNoNetwork,
	)
	assert.ErrorIs(
		wiki.Categorize(&url.Error{Op: "Get", URL: "https://wiki.example", Err: errors.New("weird")}),
		wiki.ErrUpstream,
	)
}
