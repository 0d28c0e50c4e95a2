// Licensed to Apache Software Foundation (ASF) under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Apache Software Foundation (ASF) licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package kv

import (
	"bytes"
	"regexp"
	"sort"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/pkg/errors"
)

// OptRegex is the option key of the row-regex prefilter stage. The
// in-memory engine executes this stage natively; every other stage is
// recorded as configuration only.
const OptRegex = "regex"

var errScannerClosed = errors.New("scanner closed")

type cell struct {
	family []byte
	value  []byte
}

// MemStore is a sorted in-memory multi-table store. Rows sort in byte
// order, matching the on-disk engine. It backs the kv and executor
// tests.
type MemStore struct {
	tables map[string]*treemap.Map
	mu     sync.RWMutex
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{tables: make(map[string]*treemap.Map)}
}

// Put writes one cell. Tables spring into being on first write.
func (m *MemStore) Put(table string, key, family, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		t = treemap.NewWithStringComparator()
		m.tables[table] = t
	}
	rowKey := string(key)
	var cells []cell
	if v, found := t.Get(rowKey); found {
		cells = v.([]cell)
	}
	for i := range cells {
		if bytes.Equal(cells[i].family, family) {
			cells[i].value = append([]byte(nil), value...)
			t.Put(rowKey, cells)
			return nil
		}
	}
	cells = append(cells, cell{
		family: append([]byte(nil), family...),
		value:  append([]byte(nil), value...),
	})
	sort.Slice(cells, func(i, j int) bool {
		return bytes.Compare(cells[i].family, cells[j].family) < 0
	})
	t.Put(rowKey, cells)
	return nil
}

// CreateBatchScanner opens a scan handle over the named table.
func (m *MemStore) CreateBatchScanner(table string) (BatchScanner, error) {
	m.mu.RLock()
	t, ok := m.tables[table]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.WithMessagef(ErrUnknownTable, "table %q", table)
	}
	return &memScanner{store: m, table: t}, nil
}

type memScanner struct {
	store     *MemStore
	table     *treemap.Map
	ranges    []ByteRange
	families  [][]byte
	iterators []IteratorConfig
	closed    bool
	mu        sync.Mutex
}

func (s *memScanner) SetRanges(ranges []ByteRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges = ranges
}

func (s *memScanner) FetchColumnFamily(family []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.families = append(s.families, append([]byte(nil), family...))
}

func (s *memScanner) AddScanIterator(cfg IteratorConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.iterators = append(s.iterators, cfg)
}

// Iterator snapshots the matching entries. Only the row-regex band is
// executed here; higher bands belong to the real engine.
func (s *memScanner) Iterator() EntryIterator {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &sliceIterator{err: errScannerClosed}
	}
	rowRegex, err := s.compileRowRegex()
	if err != nil {
		return &sliceIterator{err: err}
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	var entries []Entry
	it := s.table.Iterator()
	for it.Next() {
		row := []byte(it.Key().(string))
		if !s.rowInRanges(row) {
			continue
		}
		if rowRegex != nil && !rowRegex.Match(row) {
			continue
		}
		for _, c := range it.Value().([]cell) {
			if !s.familyFetched(c.family) {
				continue
			}
			entries = append(entries, Entry{
				Key:    append([]byte(nil), row...),
				Family: append([]byte(nil), c.family...),
				Value:  append([]byte(nil), c.value...),
			})
		}
	}
	return &sliceIterator{entries: entries, scanner: s}
}

func (s *memScanner) compileRowRegex() (*regexp.Regexp, error) {
	sorted := append([]IteratorConfig(nil), s.iterators...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })
	for _, cfg := range sorted {
		if expr, ok := cfg.Options[OptRegex]; ok {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, errors.Wrapf(err, "iterator %s", cfg.Name)
			}
			return re, nil
		}
	}
	return nil, nil
}

func (s *memScanner) rowInRanges(row []byte) bool {
	if len(s.ranges) == 0 {
		return true
	}
	for _, r := range s.ranges {
		if bytes.Compare(row, r.Start) >= 0 && (r.End == nil || bytes.Compare(row, r.End) < 0) {
			return true
		}
	}
	return false
}

func (s *memScanner) familyFetched(family []byte) bool {
	if len(s.families) == 0 {
		return true
	}
	for _, f := range s.families {
		if bytes.Equal(f, family) {
			return true
		}
	}
	return false
}

func (s *memScanner) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type sliceIterator struct {
	scanner *memScanner
	err     error
	entries []Entry
	pos     int
	current Entry
	closed  bool
}

func (it *sliceIterator) Next() bool {
	if it.err != nil || it.closed || it.pos >= len(it.entries) {
		return false
	}
	it.current = it.entries[it.pos]
	it.pos++
	return true
}

func (it *sliceIterator) Entry() Entry {
	return it.current
}

func (it *sliceIterator) Err() error {
	return it.err
}

func (it *sliceIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	if it.scanner != nil {
		return it.scanner.Close()
	}
	return nil
}
