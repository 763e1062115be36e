// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package assetcache provides the shared byte cache that downloaded page
// assets are stored into, keyed by their absolute URL.
package assetcache

import (
	"sync"
)

// DefaultMaxSize is the default memory budget of a [MemStore].
const DefaultMaxSize = 64 << 20

// Store is a concurrent-safe asset cache. Set is last-writer-wins and
// Clear does not synchronize with in-flight downloads: a download that
// races with Clear can legitimately reinsert its entry.
type Store interface {
	Get(uri string) ([]byte, bool)
	Set(uri string, data []byte)
	Clear()
}

// MemStore is the in-memory [Store]. It holds entries for the process
// lifetime, within a byte budget; when the budget is exceeded, the
// oldest inserted entries are dropped first.
type MemStore struct {
	mu      sync.RWMutex
	maxSize int64
	size    int64
	entries map[string][]byte
	order   []string
}

// NewMemStore returns a [MemStore] with the given byte budget.
// A zero or negative budget falls back to [DefaultMaxSize].
func NewMemStore(maxSize int64) *MemStore {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &MemStore{
		maxSize: maxSize,
		entries: make(map[string][]byte),
	}
}

// Get returns the bytes stored for a URL.
func (s *MemStore) Get(uri string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.entries[uri]
	return data, ok
}

// Set stores the bytes for a URL, replacing any previous entry.
func (s *MemStore) Set(uri string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[uri]; ok {
		s.size -= int64(len(prev))
	} else {
		s.order = append(s.order, uri)
	}
	s.entries[uri] = data
	s.size += int64(len(data))

	for s.size > s.maxSize && len(s.order) > 1 {
		oldest := s.order[0]
		if oldest == uri {
			break
		}
		s.order = s.order[1:]
		s.size -= int64(len(s.entries[oldest]))
		delete(s.entries, oldest)
	}
}

// Clear removes every entry.
func (s *MemStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]byte)
	s.order = nil
	s.size = 0
}

// Len returns the number of stored entries.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Size returns the total byte size of the stored entries.
func (s *MemStore) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}
