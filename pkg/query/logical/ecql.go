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
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/twpayne/go-geom"

	"github.com/openspatial/geotable/pkg/geo"
)

// Render serializes a filter as ECQL text. The output is what the
// fine-filter iterator stage receives as its ECQL_FILTER option.
func Render(f Filter) string {
	switch v := f.(type) {
	case And:
		return renderJoin(v.Children, " AND ")
	case Or:
		return renderJoin(v.Children, " OR ")
	case Not:
		return "NOT (" + Render(v.Child) + ")"
	case Compare:
		return renderExpr(v.Left) + " " + v.Op.String() + " " + renderExpr(v.Right)
	case PropertyEq:
		return v.Name + " = " + renderLiteral(v.Literal)
	case PropertyCompare:
		return v.Name + " " + v.Op.String() + " " + renderLiteral(v.Literal)
	case PropertyBetween:
		return v.Name + " BETWEEN " + renderLiteral(v.Lo) + " AND " + renderLiteral(v.Hi)
	case PropertyLike:
		op := "LIKE"
		if v.CaseInsensitive {
			op = "ILIKE"
		}
		return v.Name + " " + op + " " + renderLiteral(v.Pattern)
	case IdIn:
		ids := append([]string(nil), v.IDs...)
		sort.Strings(ids)
		quoted := make([]string, len(ids))
		for i, id := range ids {
			quoted[i] = renderLiteral(id)
		}
		return "IN (" + strings.Join(quoted, ", ") + ")"
	case Spatial:
		return renderSpatial(v)
	case Temporal:
		return renderTemporal(v)
	case IncludeAll:
		return "INCLUDE"
	case ExcludeAll:
		return "EXCLUDE"
	default:
		return fmt.Sprintf("<%T>", f)
	}
}

func renderJoin(children []Filter, sep string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		switch c.(type) {
		case And, Or:
			parts[i] = "(" + Render(c) + ")"
		default:
			parts[i] = Render(c)
		}
	}
	return strings.Join(parts, sep)
}

func renderSpatial(v Spatial) string {
	if v.Op == SpatialBBox {
		b := v.Geometry.Bounds()
		return fmt.Sprintf("BBOX(%s, %v, %v, %v, %v)", v.Name, b.Min(0), b.Min(1), b.Max(0), b.Max(1))
	}
	wktText, err := geo.MarshalWKT(v.Geometry)
	if err != nil {
		wktText = fmt.Sprintf("<%T>", v.Geometry)
	}
	var op string
	switch v.Op {
	case SpatialWithin:
		op = "WITHIN"
	case SpatialContains:
		op = "CONTAINS"
	default:
		op = "INTERSECTS"
	}
	return fmt.Sprintf("%s(%s, %s)", op, v.Name, wktText)
}

func renderTemporal(v Temporal) string {
	switch v.Op {
	case TemporalBefore:
		return v.Name + " BEFORE " + renderInstant(v.Range.Start)
	case TemporalAfter:
		return v.Name + " AFTER " + renderInstant(v.Range.End)
	case TemporalEquals:
		return v.Name + " TEQUALS " + renderInstant(v.Range.Start)
	default:
		return v.Name + " DURING " + renderInstant(v.Range.Start) + "/" + renderInstant(v.Range.End)
	}
}

func renderInstant(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func renderExpr(e Expr) string {
	switch v := e.(type) {
	case Property:
		return v.Name
	case Literal:
		return renderLiteral(v.Value)
	case Function:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = renderExpr(a)
		}
		return v.Name + "(" + strings.Join(args, ", ") + ")"
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

func renderLiteral(v interface{}) string {
	switch l := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(l, "'", "''") + "'"
	case time.Time:
		return renderInstant(l)
	case geom.T:
		wktText, err := geo.MarshalWKT(l)
		if err != nil {
			return fmt.Sprintf("<%T>", l)
		}
		return wktText
	default:
		return fmt.Sprintf("%v", v)
	}
}
