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

// Package kv defines the client surface of the sorted key-value engine
// the planner compiles against: tables of (row, column family, value)
// entries scanned through range-restricted batch scanners carrying a
// stack of server-side iterators.
package kv

import (
	"github.com/pkg/errors"
)

// ErrUnknownTable indicates a scanner request against a table the store
// does not have.
var ErrUnknownTable = errors.New("unknown table")

// Entry is a single scanned cell.
type Entry struct {
	Key    []byte
	Family []byte
	Value  []byte
}

// ByteRange is a half-open row-key range [Start, End). A nil End means
// the range is unbounded above.
type ByteRange struct {
	Start []byte
	End   []byte
}

// IteratorConfig names and configures one server-side iterator stage.
// Lower priorities run earlier in the stack.
type IteratorConfig struct {
	Options   map[string]string
	Name      string
	ClassName string
	Priority  uint16
}

// EntryIterator is a single-consumer lazy sequence of entries. Closing
// is idempotent and releases the underlying scanner resources even when
// the sequence was never drained.
type EntryIterator interface {
	Next() bool
	Entry() Entry
	Err() error
	Close() error
}

// BatchScanner is a live scan handle. Ranges, column families and
// iterators must be configured before Iterator is called once.
type BatchScanner interface {
	SetRanges(ranges []ByteRange)
	FetchColumnFamily(family []byte)
	AddScanIterator(cfg IteratorConfig)
	Iterator() EntryIterator
	Close() error
}

// Store creates batch scanners over named tables.
type Store interface {
	CreateBatchScanner(table string) (BatchScanner, error)
}

// Writer ingests cells; the in-memory engine implements it for tests
// and demos.
type Writer interface {
	Put(table string, key, family, value []byte) error
}
