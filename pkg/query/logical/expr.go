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

// Package logical models parsed filters as a tagged tree, canonicalizes
// them, and extracts the space-time predicate the key planner consumes.
// Filter text is never parsed here; the tree arrives from an external
// parser and only ever travels outward, rendered as ECQL, toward the
// fine-filter stage of a plan.
package logical

import (
	"github.com/pkg/errors"
	"github.com/twpayne/go-geom"

	"github.com/openspatial/geotable/pkg/timestamp"
)

// ErrUnsupportedExpression indicates a filter construct the planner
// cannot classify, e.g. a function call inside a comparison.
var ErrUnsupportedExpression = errors.New("unsupported expression")

// Filter is a node of the logical filter tree.
type Filter interface {
	filterNode()
	String() string
}

// Expr is an operand of a raw comparison: a property reference, a
// literal, or an opaque function call.
type Expr interface {
	exprNode()
}

// Property references a schema attribute by name.
type Property struct {
	Name string
}

// Literal wraps a constant operand.
type Literal struct {
	Value interface{}
}

// Function is an opaque call the planner cannot evaluate.
type Function struct {
	Name string
	Args []Expr
}

func (Property) exprNode() {}
func (Literal) exprNode()  {}
func (Function) exprNode() {}

// CompareOp is a binary comparison operator.
type CompareOp int

// Comparison operators.
const (
	OpEq CompareOp = iota
	OpLt
	OpLe
	OpGt
	OpGe
)

// Reflect mirrors the operator across the equals sign, for comparisons
// whose literal appeared on the left of the operator.
func (op CompareOp) Reflect() CompareOp {
	switch op {
	case OpLt:
		return OpGt
	case OpLe:
		return OpGe
	case OpGt:
		return OpLt
	case OpGe:
		return OpLe
	default:
		return op
	}
}

func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	default:
		return ">="
	}
}

// SpatialOpKind is the spatial relation of a spatial predicate.
type SpatialOpKind int

// Spatial relations.
const (
	SpatialIntersects SpatialOpKind = iota
	SpatialWithin
	SpatialContains
	SpatialBBox
)

// TemporalOpKind is the temporal relation of a temporal predicate.
type TemporalOpKind int

// Temporal relations.
const (
	TemporalBefore TemporalOpKind = iota
	TemporalAfter
	TemporalDuring
	TemporalEquals
)

// And is the conjunction of its children.
type And struct {
	Children []Filter
}

// Or is the disjunction of its children.
type Or struct {
	Children []Filter
}

// Not negates its child.
type Not struct {
	Child Filter
}

// Compare is a raw comparison between two expressions, the shape the
// external parser hands over. Normalize rewrites it into PropertyEq or
// PropertyCompare when one side is a property and the other a literal;
// property-on-property and literal-on-literal comparisons stay raw and
// travel as residual.
type Compare struct {
	Left  Expr
	Right Expr
	Op    CompareOp
}

// PropertyEq is attribute equality against a literal.
type PropertyEq struct {
	Literal interface{}
	Name    string
}

// PropertyCompare is an ordered comparison of an attribute against a
// literal. Flipped records that the literal appeared on the left of the
// source operator; Op has already been reflected accordingly.
type PropertyCompare struct {
	Literal interface{}
	Name    string
	Op      CompareOp
	Flipped bool
}

// PropertyBetween is a closed-range predicate on an attribute.
type PropertyBetween struct {
	Lo   interface{}
	Hi   interface{}
	Name string
}

// PropertyLike is a pattern predicate on a string attribute.
type PropertyLike struct {
	Name            string
	Pattern         string
	CaseInsensitive bool
}

// IdIn selects records by identifier.
type IdIn struct {
	IDs []string
}

// Spatial is a spatial relation between an attribute and a geometry.
type Spatial struct {
	Geometry geom.T
	Name     string
	Op       SpatialOpKind
}

// Temporal is a temporal relation between an attribute and an instant
// or interval. An instant is a range whose start equals its end.
type Temporal struct {
	Name  string
	Range timestamp.TimeRange
	Op    TemporalOpKind
}

// IncludeAll accepts every record.
type IncludeAll struct{}

// ExcludeAll rejects every record.
type ExcludeAll struct{}

func (And) filterNode()             {}
func (Or) filterNode()              {}
func (Not) filterNode()             {}
func (Compare) filterNode()         {}
func (PropertyEq) filterNode()      {}
func (PropertyCompare) filterNode() {}
func (PropertyBetween) filterNode() {}
func (PropertyLike) filterNode()    {}
func (IdIn) filterNode()            {}
func (Spatial) filterNode()         {}
func (Temporal) filterNode()        {}
func (IncludeAll) filterNode()      {}
func (ExcludeAll) filterNode()      {}

func (f And) String() string             { return Render(f) }
func (f Or) String() string              { return Render(f) }
func (f Not) String() string             { return Render(f) }
func (f Compare) String() string         { return Render(f) }
func (f PropertyEq) String() string      { return Render(f) }
func (f PropertyCompare) String() string { return Render(f) }
func (f PropertyBetween) String() string { return Render(f) }
func (f PropertyLike) String() string    { return Render(f) }
func (f IdIn) String() string            { return Render(f) }
func (f Spatial) String() string         { return Render(f) }
func (f Temporal) String() string        { return Render(f) }
func (f IncludeAll) String() string      { return Render(f) }
func (f ExcludeAll) String() string      { return Render(f) }
