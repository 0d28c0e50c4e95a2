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

// Package timestamp provides the interval algebra used by temporal
// predicates and the time axis of the spatio-temporal index.
package timestamp

import (
	"time"
)

// TimeRange is a range of periods into which data can be written or retrieved.
type TimeRange struct {
	Start        time.Time
	End          time.Time
	IncludeStart bool
	IncludeEnd   bool
}

// Instant reports whether the range collapses to a single point in time.
func (t TimeRange) Instant() bool {
	return t.Start.Equal(t.End)
}

// Contains returns whether the instant is in the TimeRange.
func (t TimeRange) Contains(tp time.Time) bool {
	if t.Start.Equal(tp) {
		return t.IncludeStart
	}
	if t.End.Equal(tp) {
		return t.IncludeEnd
	}
	return !tp.Before(t.Start) && !tp.After(t.End)
}

// Overlapping returns whether TimeRanges intersect each other.
func (t TimeRange) Overlapping(other TimeRange) bool {
	if t.Start.Equal(other.End) {
		return t.IncludeStart && other.IncludeEnd
	}
	if other.Start.Equal(t.End) {
		return t.IncludeEnd && other.IncludeStart
	}
	return !t.Start.After(other.End) && !other.Start.After(t.End)
}

// Overlap returns the intersection of two TimeRanges. The second result
// is false when they do not intersect.
func (t TimeRange) Overlap(other TimeRange) (TimeRange, bool) {
	if !t.Overlapping(other) {
		return TimeRange{}, false
	}
	out := t
	if other.Start.After(t.Start) {
		out.Start = other.Start
		out.IncludeStart = other.IncludeStart
	} else if other.Start.Equal(t.Start) {
		out.IncludeStart = t.IncludeStart && other.IncludeStart
	}
	if other.End.Before(t.End) {
		out.End = other.End
		out.IncludeEnd = other.IncludeEnd
	} else if other.End.Equal(t.End) {
		out.IncludeEnd = t.IncludeEnd && other.IncludeEnd
	}
	return out, true
}

// Duration converts TimeRange to time.Duration.
func (t TimeRange) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// String shows the string representation.
func (t TimeRange) String() string {
	var buf []byte
	if t.IncludeStart {
		buf = []byte("[")
	} else {
		buf = []byte("(")
	}
	buf = append(buf, t.Start.Format(time.RFC3339)...)
	buf = append(buf, ", "...)
	buf = append(buf, t.End.Format(time.RFC3339)...)
	if t.IncludeEnd {
		buf = append(buf, "]"...)
	} else {
		buf = append(buf, ")"...)
	}
	return string(buf)
}

// NewInclusiveTimeRange returns TimeRange includes start and end time.
func NewInclusiveTimeRange(start, end time.Time) TimeRange {
	return NewTimeRange(start, end, true, true)
}

// NewSectionTimeRange returns TimeRange includes the start time only.
func NewSectionTimeRange(start, end time.Time) TimeRange {
	return NewTimeRange(start, end, true, false)
}

// NewTimeRange returns TimeRange.
func NewTimeRange(start, end time.Time, includeStart, includeEnd bool) TimeRange {
	return TimeRange{
		Start:        start,
		End:          end,
		IncludeStart: includeStart,
		IncludeEnd:   includeEnd,
	}
}

// Everywhen is the representable domain of the time axis. Intervals are
// clamped to it before key planning.
var Everywhen = NewSectionTimeRange(
	time.Unix(0, 0).UTC(),
	time.Unix(1<<31-1, 0).UTC(),
)
