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
	"github.com/openspatial/geotable/pkg/sft"
)

// Class is the planning role of a single conjunct.
type Class int

// Conjunct classes, ordered the way canonicalization sorts them.
const (
	ClassID Class = iota
	ClassAttribute
	ClassSpatial
	ClassTemporal
	ClassOther
)

func (c Class) String() string {
	switch c {
	case ClassID:
		return "id"
	case ClassAttribute:
		return "attribute"
	case ClassSpatial:
		return "spatial"
	case ClassTemporal:
		return "temporal"
	default:
		return "other"
	}
}

// Classify assigns a conjunct its planning role against the schema.
// Spatial and temporal roles are reserved for predicates on the default
// geometry and default date; a temporal operator on any other attribute
// is an attribute predicate (it can still ride the attribute index).
func Classify(f Filter, schema *sft.Schema) Class {
	defaultGeom, hasGeom := schema.DefaultGeometry()
	defaultDate, hasDate := schema.DefaultDate()
	switch v := f.(type) {
	case IdIn:
		return ClassID
	case Spatial:
		if hasGeom && (v.Name == "" || v.Name == defaultGeom.Name) {
			return ClassSpatial
		}
		return ClassOther
	case Temporal:
		if hasDate && (v.Name == "" || v.Name == defaultDate.Name) {
			return ClassTemporal
		}
		if _, ok := schema.Attribute(v.Name); ok {
			return ClassAttribute
		}
		return ClassOther
	case PropertyEq:
		return classifyAttribute(v.Name, schema)
	case PropertyCompare:
		return classifyAttribute(v.Name, schema)
	case PropertyBetween:
		return classifyAttribute(v.Name, schema)
	case PropertyLike:
		return classifyAttribute(v.Name, schema)
	default:
		return ClassOther
	}
}

func classifyAttribute(name string, schema *sft.Schema) Class {
	if _, ok := schema.Attribute(name); ok {
		return ClassAttribute
	}
	return ClassOther
}

// AttributeName returns the attribute a conjunct constrains, when it
// constrains exactly one.
func AttributeName(f Filter) (string, bool) {
	switch v := f.(type) {
	case PropertyEq:
		return v.Name, true
	case PropertyCompare:
		return v.Name, true
	case PropertyBetween:
		return v.Name, true
	case PropertyLike:
		return v.Name, true
	case Temporal:
		return v.Name, true
	case Spatial:
		return v.Name, true
	default:
		return "", false
	}
}
