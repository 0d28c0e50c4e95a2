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

package planner

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/twpayne/go-geom"

	"github.com/openspatial/geotable/pkg/convert"
	"github.com/openspatial/geotable/pkg/geo"
	"github.com/openspatial/geotable/pkg/timestamp"
)

// PlanningFilter is the space-time predicate the key planner expands.
// Both members are optional; an interval whose start equals its end is
// an instant.
type PlanningFilter struct {
	Polygon  *geom.Polygon
	Interval *timestamp.TimeRange
}

// AcceptsEverything reports whether the filter constrains nothing.
func (f PlanningFilter) AcceptsEverything() bool {
	return f.Polygon == nil && f.Interval == nil
}

// KeyPlan is the row-key side of a compiled scan: explicit ranges, an
// explicit key list, or the whole table, each with an optional regex
// prefilter. The regex is a sound over-approximation: it never rejects
// a row the predicate accepts.
type KeyPlan interface {
	Regex() (string, bool)
}

// KeyRanges scans a list of row ranges.
type KeyRanges struct {
	regex  string
	Ranges []ByteRange
}

// Regex returns the row-regex prefilter, when one tightens the ranges.
func (k KeyRanges) Regex() (string, bool) {
	return k.regex, k.regex != ""
}

// KeyList fetches an explicit set of rows.
type KeyList struct {
	Keys [][]byte
}

// Regex of a key list is always empty: the keys are exact.
func (KeyList) Regex() (string, bool) {
	return "", false
}

// KeyAcceptAll scans the whole table, optionally tightened by a regex.
type KeyAcceptAll struct {
	regex string
}

// Regex returns the row-regex prefilter, when the date axis constrains
// an otherwise unbounded scan.
func (k KeyAcceptAll) Regex() (string, bool) {
	return k.regex, k.regex != ""
}

// ColumnFamilyPlan is the column-family side of a compiled scan.
type ColumnFamilyPlan interface {
	familyPlan()
}

// CFList fetches a finite family list.
type CFList struct {
	Families [][]byte
}

// CFAll fetches every family.
type CFAll struct{}

func (CFList) familyPlan() {}
func (CFAll) familyPlan()  {}

// STKeySchema describes the row layout of the spatio-temporal index:
//
//	shard(1 byte) | geohash(Precision chars) | bucket(BucketLayout) | 0x00 | record id
//
// with the remaining geohash characters encoded in the column family.
type STKeySchema struct {
	BucketLayout    string
	Shards          int
	Precision       int
	FamilyPrecision int
	MaxRanges       int
	MaxFamilies     int
	MaxBuckets      int
}

// DefaultSTKeySchema matches the ingest-side defaults.
func DefaultSTKeySchema() *STKeySchema {
	return &STKeySchema{
		BucketLayout:    "2006010215",
		Shards:          4,
		Precision:       3,
		FamilyPrecision: 2,
		MaxRanges:       32,
		MaxFamilies:     64,
		MaxBuckets:      256,
	}
}

// Spec renders the layout as the schema string the coarse intersect
// stage is configured with.
func (s *STKeySchema) Spec() string {
	return fmt.Sprintf("%%1#s%%%d#gh%%#id::%%#cf::%s", s.Precision, s.BucketLayout)
}

// WriteKey derives the row and column family of a record, the exact
// inverse of what GetKeyPlan enumerates. The shard spreads records via
// a hash of the id.
func (s *STKeySchema) WriteKey(id string, lon, lat float64, t time.Time) (row, family []byte) {
	shard := byte(xxhash.Sum64String(id) % uint64(s.Shards))
	cell := geo.GeohashEncode(lon, lat, s.Precision+s.FamilyPrecision)
	row = make([]byte, 0, 1+s.Precision+len(s.BucketLayout)+1+len(id))
	row = append(row, shard)
	row = append(row, cell[:s.Precision]...)
	row = append(row, t.UTC().Format(s.BucketLayout)...)
	row = append(row, 0x00)
	row = append(row, id...)
	return row, []byte(cell[s.Precision:])
}

// GetKeyPlan expands a space-time predicate into row ranges over the
// shard × geohash × bucket key space, plus a regex prefilter covering
// whatever the ranges over-approximate.
func (s *STKeySchema) GetKeyPlan(f PlanningFilter) KeyPlan {
	if f.AcceptsEverything() {
		return KeyAcceptAll{}
	}
	buckets := s.buckets(f.Interval)
	if f.Polygon == nil {
		// The date axis is not the leading key component, so a pure
		// temporal predicate cannot bound a range; it becomes a regex over
		// the full table.
		return KeyAcceptAll{regex: s.rowRegex(nil, buckets)}
	}

	cells, precision := geo.GeohashCoverWithin(f.Polygon, s.Precision, s.MaxRanges)
	exactCells := precision == s.Precision
	bucketed := exactCells && len(buckets) > 0 && len(cells)*len(buckets) <= s.MaxRanges

	var ranges []ByteRange
	for shard := 0; shard < s.Shards; shard++ {
		for _, cell := range cells {
			if bucketed {
				for _, bucket := range buckets {
					ranges = append(ranges, prefixRange(shard, cell+bucket))
				}
				continue
			}
			ranges = append(ranges, prefixRange(shard, cell))
		}
	}
	var regexCells []string
	if exactCells {
		regexCells = cells
	}
	return KeyRanges{Ranges: ranges, regex: s.rowRegex(regexCells, buckets)}
}

func prefixRange(shard int, tail string) ByteRange {
	start := append([]byte{byte(shard)}, tail...)
	end, ok := convert.PrefixUpperBound(start)
	if !ok {
		end = nil
	}
	return ByteRange{Start: start, End: end}
}

// GetColumnFamiliesToFetch returns the finite family list when the
// polygon pins down the family-resolution cells, and CFAll otherwise.
func (s *STKeySchema) GetColumnFamiliesToFetch(f PlanningFilter) ColumnFamilyPlan {
	if f.Polygon == nil {
		return CFAll{}
	}
	want := s.Precision + s.FamilyPrecision
	fine, precision := geo.GeohashCoverWithin(f.Polygon, want, s.MaxFamilies)
	if precision != want {
		return CFAll{}
	}
	seen := make(map[string]struct{}, len(fine))
	families := make([][]byte, 0, len(fine))
	for _, cell := range fine {
		suffix := cell[s.Precision:]
		if _, dup := seen[suffix]; dup {
			continue
		}
		seen[suffix] = struct{}{}
		families = append(families, []byte(suffix))
	}
	sort.Slice(families, func(i, j int) bool { return string(families[i]) < string(families[j]) })
	return CFList{Families: families}
}

// buckets renders the time buckets the interval touches, oldest first.
// An empty result means the interval is absent or too wide to
// enumerate.
func (s *STKeySchema) buckets(interval *timestamp.TimeRange) []string {
	if interval == nil {
		return nil
	}
	step := bucketStep(s.BucketLayout)
	start := interval.Start.UTC().Truncate(step)
	var out []string
	for t := start; !t.After(interval.End); t = t.Add(step) {
		if len(out) >= s.MaxBuckets {
			return nil
		}
		out = append(out, t.Format(s.BucketLayout))
	}
	return out
}

func bucketStep(layout string) time.Duration {
	switch len(layout) {
	case len("2006010215"):
		return time.Hour
	case len("20060102"):
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// rowRegex builds the prefilter over shard|geohash|bucket rows. Either
// alternation may be empty; a row tail (the record id) is always
// accepted.
func (s *STKeySchema) rowRegex(cells, buckets []string) string {
	if len(cells) == 0 && len(buckets) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("^.")
	if len(cells) > 0 {
		b.WriteString("(" + strings.Join(quoteAll(cells), "|") + ")")
	} else {
		b.WriteString(fmt.Sprintf(".{%d}", s.Precision))
	}
	if len(buckets) > 0 {
		b.WriteString("(" + strings.Join(quoteAll(buckets), "|") + ")")
	}
	b.WriteString(".*")
	return b.String()
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = regexp.QuoteMeta(s)
	}
	return out
}
