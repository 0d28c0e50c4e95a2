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

// Package executor binds a compiled plan onto a batch scanner of the
// store and exposes the results as a single-consumer lazy sequence.
// Two-phase strategies materialize the first phase into an id list
// before the second phase streams.
package executor

import (
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/openspatial/geotable/geotable/kv"
	"github.com/openspatial/geotable/pkg/convert"
	"github.com/openspatial/geotable/pkg/logger"
	"github.com/openspatial/geotable/pkg/query/planner"
)

// Bind configures a scanner handle per the plan and returns the lazy
// entry sequence. Closing the sequence releases the scanner; the close
// is idempotent and safe after errors.
func Bind(store kv.Store, plan planner.QueryPlan, log *logger.Logger) (kv.EntryIterator, error) {
	if log == nil {
		log = logger.GetLogger("executor")
	}
	scanID := uuid.NewString()
	if plan.IsEmpty() {
		log.Debug().Str("scan", scanID).Stringer("strategy", plan.Strategy).Msg("empty plan, nothing to scan")
		return emptyIterator{}, nil
	}

	keys := plan.Keys
	if plan.IndexScan != nil {
		ids, err := collectIDs(store, plan.IndexScan)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("scan", scanID).Int("ids", len(ids)).Msg("attribute index phase done")
		if len(ids) == 0 {
			return emptyIterator{}, nil
		}
		keys = ids
	}

	scanner, err := store.CreateBatchScanner(plan.Table)
	if err != nil {
		return nil, errors.Wrapf(err, "bind plan to table %q", plan.Table)
	}
	switch {
	case len(keys) > 0:
		scanner.SetRanges(keyRanges(keys))
	case plan.AcceptAll:
	default:
		scanner.SetRanges(toKVRanges(plan.Ranges))
	}
	for _, family := range plan.ColumnFamilies {
		scanner.FetchColumnFamily(family)
	}
	for _, stage := range sortedStages(plan.Iterators) {
		scanner.AddScanIterator(kv.IteratorConfig{
			Priority:  stage.Priority,
			Name:      stage.Name,
			ClassName: stage.ClassName,
			Options:   stage.Options,
		})
	}
	log.Debug().Str("scan", scanID).Stringer("strategy", plan.Strategy).
		Str("table", plan.Table).Int("iterators", len(plan.Iterators)).Msg("plan bound")
	return &boundIterator{inner: scanner.Iterator(), scanner: scanner}, nil
}

// collectIDs runs the first phase of a two-phase strategy: the column
// family of every returned index entry is a record id. Order is kept,
// duplicates are dropped.
func collectIDs(store kv.Store, scan *planner.IndexScan) ([][]byte, error) {
	scanner, err := store.CreateBatchScanner(scan.Table)
	if err != nil {
		return nil, errors.Wrapf(err, "bind index scan to table %q", scan.Table)
	}
	scanner.SetRanges(toKVRanges(scan.Ranges))
	it := scanner.Iterator()

	seen := make(map[string]struct{})
	var ids [][]byte
	for it.Next() {
		id := it.Entry().Family
		if _, dup := seen[string(id)]; dup {
			continue
		}
		seen[string(id)] = struct{}{}
		ids = append(ids, append([]byte(nil), id...))
	}
	err = it.Err()
	err = multierr.Append(err, it.Close())
	err = multierr.Append(err, scanner.Close())
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func toKVRanges(ranges []planner.ByteRange) []kv.ByteRange {
	out := make([]kv.ByteRange, len(ranges))
	for i, r := range ranges {
		out[i] = kv.ByteRange{Start: r.Start, End: r.End}
	}
	return out
}

func keyRanges(keys [][]byte) []kv.ByteRange {
	out := make([]kv.ByteRange, len(keys))
	for i, k := range keys {
		out[i] = kv.ByteRange{Start: k, End: convert.Successor(k)}
	}
	return out
}

func sortedStages(stages []planner.IteratorStage) []planner.IteratorStage {
	out := append([]planner.IteratorStage(nil), stages...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

type boundIterator struct {
	inner   kv.EntryIterator
	scanner kv.BatchScanner
	closed  bool
}

func (b *boundIterator) Next() bool {
	if b.closed {
		return false
	}
	return b.inner.Next()
}

func (b *boundIterator) Entry() kv.Entry {
	return b.inner.Entry()
}

func (b *boundIterator) Err() error {
	return b.inner.Err()
}

func (b *boundIterator) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return multierr.Append(b.inner.Close(), b.scanner.Close())
}

type emptyIterator struct{}

func (emptyIterator) Next() bool      { return false }
func (emptyIterator) Entry() kv.Entry { return kv.Entry{} }
func (emptyIterator) Err() error      { return nil }
func (emptyIterator) Close() error    { return nil }
