// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package saved stores pages for offline reading, together with a
// visit history.
package saved

import (
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"codeberg.org/wikiread/wikiread/internal/wiki"

	// Dialect and driver, matched in Open.
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "modernc.org/sqlite"
)

const (
	pagesTable  = "saved_page"
	visitsTable = "visit"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS saved_page (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		uid      TEXT NOT NULL UNIQUE,
		page_id  INTEGER NOT NULL,
		title    TEXT NOT NULL,
		display_title TEXT NOT NULL,
		revision INTEGER NOT NULL,
		body     TEXT NOT NULL,
		created  TIMESTAMP NOT NULL,
		UNIQUE (page_id)
	)`,
	`CREATE TABLE IF NOT EXISTS visit (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		page_id INTEGER NOT NULL,
		title   TEXT NOT NULL,
		seen    TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS visit_seen_idx ON visit (seen)`,
}

// Page is a stored page record.
type Page struct {
	ID           int       `db:"id" goqu:"skipinsert,skipupdate"`
	UID          string    `db:"uid"`
	PageID       int       `db:"page_id"`
	Title        string    `db:"title"`
	DisplayTitle string    `db:"display_title"`
	Revision     int64     `db:"revision"`
	Body         string    `db:"body"`
	Created      time.Time `db:"created" goqu:"skipupdate"`
}

// Visit is one history entry.
type Visit struct {
	ID     int       `db:"id" goqu:"skipinsert,skipupdate"`
	PageID int       `db:"page_id"`
	Title  string    `db:"title"`
	Seen   time.Time `db:"seen"`
}

// Store gives access to saved pages and the visit history.
type Store struct {
	db *sql.DB
	q  *goqu.Database
}

// Open opens, and migrates when needed, the store's database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close() //nolint:errcheck
			return nil, err
		}
	}

	return &Store{db: db, q: goqu.New("sqlite3", db)}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePage stores a parse result for offline reading. Saving a page
// that is already stored replaces its content.
func (s *Store) SavePage(page *wiki.ParseResult) error {
	record := &Page{
		UID:          uuid.NewString(),
		PageID:       page.PageID,
		Title:        page.Title,
		DisplayTitle: page.DisplayTitle,
		Revision:     page.RevisionID,
		Body:         page.BodyHTML,
		Created:      time.Now().UTC(),
	}

	if _, err := s.Get(wiki.PageRef{ID: page.PageID}); err == nil {
		_, err = s.q.Update(pagesTable).Prepared(true).
			Set(record).
			Where(goqu.C("page_id").Eq(page.PageID)).
			Executor().Exec()
		return err
	}

	_, err := s.q.Insert(pagesTable).Prepared(true).
		Rows(record).
		Executor().Exec()
	return err
}

// Get returns a stored page.
func (s *Store) Get(ref wiki.PageRef) (*Page, error) {
	q := s.q.From(pagesTable).Prepared(true)
	if ref.ID > 0 {
		q = q.Where(goqu.C("page_id").Eq(ref.ID))
	} else {
		q = q.Where(goqu.C("title").Eq(ref.Title))
	}

	var p Page
	found, err := q.ScanStruct(&p)
	switch {
	case err != nil:
		return nil, err
	case !found:
		return nil, ErrNotFound
	}
	return &p, nil
}

// Lookup adapts Get to the loader's saved page hook.
func (s *Store) Lookup(ref wiki.PageRef) (*wiki.ParseResult, bool) {
	p, err := s.Get(ref)
	if err != nil {
		return nil, false
	}
	return &wiki.ParseResult{
		PageID:       p.PageID,
		Title:        p.Title,
		DisplayTitle: p.DisplayTitle,
		RevisionID:   p.Revision,
		BodyHTML:     p.Body,
	}, true
}

// List returns all stored pages, most recent first.
func (s *Store) List() ([]*Page, error) {
	var pages []*Page
	err := s.q.From(pagesTable).Prepared(true).
		Order(goqu.C("created").Desc()).
		ScanStructs(&pages)
	return pages, err
}

// Remove deletes a stored page.
func (s *Store) Remove(ref wiki.PageRef) error {
	p, err := s.Get(ref)
	if err != nil {
		return err
	}
	_, err = s.q.Delete(pagesTable).Prepared(true).
		Where(goqu.C("id").Eq(p.ID)).
		Executor().Exec()
	return err
}

// RecordVisit appends a history entry for a page.
func (s *Store) RecordVisit(page *wiki.ParseResult) error {
	_, err := s.q.Insert(visitsTable).Prepared(true).
		Rows(&Visit{
			PageID: page.PageID,
			Title:  page.Title,
			Seen:   time.Now().UTC(),
		}).
		Executor().Exec()
	return err
}

// History returns the latest history entries, most recent first.
func (s *Store) History(limit uint) ([]*Visit, error) {
	var visits []*Visit
	err := s.q.From(visitsTable).Prepared(true).
		Order(goqu.C("seen").Desc(), goqu.C("id").Desc()).
		Limit(limit).
		ScanStructs(&visits)
	return visits, err
}
