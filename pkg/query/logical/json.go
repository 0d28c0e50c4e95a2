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

package logical

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/openspatial/geotable/pkg/geo"
	"github.com/openspatial/geotable/pkg/timestamp"
)

// DecodeJSON builds a filter tree from its JSON debug encoding. This is
// a tooling surface: production filters arrive as already-parsed trees.
func DecodeJSON(data []byte) (Filter, error) {
	var raw jsonFilter
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode filter json")
	}
	return raw.toFilter()
}

type jsonFilter struct {
	And      []jsonFilter   `json:"and,omitempty"`
	Or       []jsonFilter   `json:"or,omitempty"`
	Not      *jsonFilter    `json:"not,omitempty"`
	Eq       *jsonPredicate `json:"eq,omitempty"`
	Compare  *jsonPredicate `json:"compare,omitempty"`
	Between  *jsonPredicate `json:"between,omitempty"`
	Like     *jsonPredicate `json:"like,omitempty"`
	In       []string       `json:"in,omitempty"`
	BBox     *jsonBBox      `json:"bbox,omitempty"`
	Spatial  *jsonSpatial   `json:"spatial,omitempty"`
	Temporal *jsonTemporal  `json:"temporal,omitempty"`
	Include  bool           `json:"include,omitempty"`
	Exclude  bool           `json:"exclude,omitempty"`
}

type jsonPredicate struct {
	Value           interface{} `json:"value,omitempty"`
	Lo              interface{} `json:"lo,omitempty"`
	Hi              interface{} `json:"hi,omitempty"`
	Name            string      `json:"name"`
	Op              string      `json:"op,omitempty"`
	Pattern         string      `json:"pattern,omitempty"`
	CaseInsensitive bool        `json:"caseInsensitive,omitempty"`
}

type jsonBBox struct {
	Name string  `json:"name"`
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

type jsonSpatial struct {
	Op   string `json:"op"`
	Name string `json:"name"`
	WKT  string `json:"wkt"`
}

type jsonTemporal struct {
	Op    string `json:"op"`
	Name  string `json:"name"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

func (j jsonFilter) toFilter() (Filter, error) {
	switch {
	case len(j.And) > 0:
		children, err := toFilters(j.And)
		if err != nil {
			return nil, err
		}
		return And{Children: children}, nil
	case len(j.Or) > 0:
		children, err := toFilters(j.Or)
		if err != nil {
			return nil, err
		}
		return Or{Children: children}, nil
	case j.Not != nil:
		child, err := j.Not.toFilter()
		if err != nil {
			return nil, err
		}
		return Not{Child: child}, nil
	case j.Eq != nil:
		return PropertyEq{Name: j.Eq.Name, Literal: j.Eq.Value}, nil
	case j.Compare != nil:
		op, err := parseCompareOp(j.Compare.Op)
		if err != nil {
			return nil, err
		}
		return PropertyCompare{Name: j.Compare.Name, Op: op, Literal: j.Compare.Value}, nil
	case j.Between != nil:
		return PropertyBetween{Name: j.Between.Name, Lo: j.Between.Lo, Hi: j.Between.Hi}, nil
	case j.Like != nil:
		return PropertyLike{Name: j.Like.Name, Pattern: j.Like.Pattern, CaseInsensitive: j.Like.CaseInsensitive}, nil
	case len(j.In) > 0:
		return IdIn{IDs: j.In}, nil
	case j.BBox != nil:
		return Spatial{
			Op:       SpatialBBox,
			Name:     j.BBox.Name,
			Geometry: geo.FromBounds(j.BBox.MinX, j.BBox.MinY, j.BBox.MaxX, j.BBox.MaxY),
		}, nil
	case j.Spatial != nil:
		g, err := wkt.Unmarshal(j.Spatial.WKT)
		if err != nil {
			return nil, errors.Wrap(err, "decode filter geometry")
		}
		op, err := parseSpatialOp(j.Spatial.Op)
		if err != nil {
			return nil, err
		}
		return Spatial{Op: op, Name: j.Spatial.Name, Geometry: g}, nil
	case j.Temporal != nil:
		return j.Temporal.toFilter()
	case j.Include:
		return IncludeAll{}, nil
	case j.Exclude:
		return ExcludeAll{}, nil
	default:
		return nil, errors.WithMessage(ErrUnsupportedExpression, "empty filter object")
	}
}

func toFilters(in []jsonFilter) ([]Filter, error) {
	out := make([]Filter, len(in))
	for i, j := range in {
		f, err := j.toFilter()
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func parseCompareOp(s string) (CompareOp, error) {
	switch s {
	case "=":
		return OpEq, nil
	case "<":
		return OpLt, nil
	case "<=":
		return OpLe, nil
	case ">":
		return OpGt, nil
	case ">=":
		return OpGe, nil
	}
	return 0, errors.WithMessagef(ErrUnsupportedExpression, "comparison operator %q", s)
}

func parseSpatialOp(s string) (SpatialOpKind, error) {
	switch s {
	case "intersects", "":
		return SpatialIntersects, nil
	case "within":
		return SpatialWithin, nil
	case "contains":
		return SpatialContains, nil
	case "bbox":
		return SpatialBBox, nil
	}
	return 0, errors.WithMessagef(ErrUnsupportedExpression, "spatial operator %q", s)
}

func (j *jsonTemporal) toFilter() (Filter, error) {
	parse := func(s string) (time.Time, error) {
		if s == "" {
			return time.Time{}, errors.WithMessage(ErrUnsupportedExpression, "missing instant")
		}
		return time.Parse(time.RFC3339, s)
	}
	switch j.Op {
	case "during", "":
		start, err := parse(j.Start)
		if err != nil {
			return nil, err
		}
		end, err := parse(j.End)
		if err != nil {
			return nil, err
		}
		return Temporal{Name: j.Name, Op: TemporalDuring, Range: timestamp.NewInclusiveTimeRange(start, end)}, nil
	case "before":
		at, err := parse(j.Start)
		if err != nil {
			return nil, err
		}
		return Temporal{Name: j.Name, Op: TemporalBefore, Range: timestamp.TimeRange{Start: at, End: at}}, nil
	case "after":
		at, err := parse(j.End)
		if err != nil {
			at, err = parse(j.Start)
			if err != nil {
				return nil, err
			}
		}
		return Temporal{Name: j.Name, Op: TemporalAfter, Range: timestamp.TimeRange{Start: at, End: at}}, nil
	case "equals":
		at, err := parse(j.Start)
		if err != nil {
			return nil, err
		}
		return Temporal{Name: j.Name, Op: TemporalEquals, Range: timestamp.TimeRange{Start: at, End: at}}, nil
	}
	return nil, errors.WithMessagef(ErrUnsupportedExpression, "temporal operator %q", j.Op)
}
