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

// Package sft holds the typed feature schema: attribute descriptors,
// the schema string grammar, and the per-attribute value codecs the key
// planners rely on.
package sft

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidSchema indicates a malformed schema string or conflicting
// attribute options.
var ErrInvalidSchema = errors.New("invalid schema")

// Kind is the semantic type of an attribute.
type Kind int

// All attribute kinds.
const (
	KindInt Kind = iota
	KindLong
	KindFloat
	KindDouble
	KindBool
	KindString
	KindUUID
	KindDate
	KindPoint
	KindLineString
	KindPolygon
	KindGeometry
)

var kindNames = map[Kind]string{
	KindInt:        "Int",
	KindLong:       "Long",
	KindFloat:      "Float",
	KindDouble:     "Double",
	KindBool:       "Bool",
	KindString:     "String",
	KindUUID:       "Uuid",
	KindDate:       "Date",
	KindPoint:      "Point",
	KindLineString: "LineString",
	KindPolygon:    "Polygon",
	KindGeometry:   "Geometry",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Geometric reports whether values of this kind carry coordinates.
func (k Kind) Geometric() bool {
	return k >= KindPoint
}

func parseKind(s string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, s) {
			return k, nil
		}
	}
	return 0, errors.WithMessagef(ErrInvalidSchema, "unknown type %q", s)
}

// Cardinality is the user-declared selectivity class of an attribute.
type Cardinality int

// Cardinality classes. Unknown is the default.
const (
	CardinalityUnknown Cardinality = iota
	CardinalityHigh
	CardinalityLow
)

func (c Cardinality) String() string {
	switch c {
	case CardinalityHigh:
		return "high"
	case CardinalityLow:
		return "low"
	default:
		return "unknown"
	}
}

func parseCardinality(s string) (Cardinality, error) {
	switch strings.ToLower(s) {
	case "high":
		return CardinalityHigh, nil
	case "low":
		return CardinalityLow, nil
	case "unknown":
		return CardinalityUnknown, nil
	}
	return 0, errors.WithMessagef(ErrInvalidSchema, "unknown cardinality %q", s)
}

// Attribute describes a single schema attribute.
type Attribute struct {
	Name        string
	Kind        Kind
	SRID        int
	Cardinality Cardinality
	Indexed     bool
	Default     bool
}

// Schema is an ordered list of attributes plus a type name. It is
// immutable once parsed.
type Schema struct {
	byName   map[string]int
	TypeName string
	spec     string
	Attrs    []Attribute
}

// Attribute returns the descriptor of the named attribute.
func (s *Schema) Attribute(name string) (Attribute, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Attribute{}, false
	}
	return s.Attrs[i], true
}

// IndexDefined reports whether the named attribute exists and is indexed.
func (s *Schema) IndexDefined(name string) (bool, Attribute) {
	a, ok := s.Attribute(name)
	if !ok || !a.Indexed {
		return false, Attribute{}
	}
	return true, a
}

// DefaultGeometry returns the attribute marked as the default geometry,
// or the first geometric attribute when none is marked.
func (s *Schema) DefaultGeometry() (Attribute, bool) {
	return s.defaultOf(func(a Attribute) bool { return a.Kind.Geometric() })
}

// DefaultDate returns the attribute marked as the default date, or the
// first date attribute when none is marked.
func (s *Schema) DefaultDate() (Attribute, bool) {
	return s.defaultOf(func(a Attribute) bool { return a.Kind == KindDate })
}

func (s *Schema) defaultOf(match func(Attribute) bool) (Attribute, bool) {
	var fallback *Attribute
	for i := range s.Attrs {
		a := s.Attrs[i]
		if !match(a) {
			continue
		}
		if a.Default {
			return a, true
		}
		if fallback == nil {
			fallback = &s.Attrs[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Attribute{}, false
}

// CardinalityOf returns the declared cardinality hint of the named
// attribute, defaulting to unknown.
func (s *Schema) CardinalityOf(name string) Cardinality {
	a, ok := s.Attribute(name)
	if !ok {
		return CardinalityUnknown
	}
	return a.Cardinality
}

// Spec renders the schema back to its grammar form.
func (s *Schema) Spec() string {
	return s.spec
}

func (s *Schema) String() string {
	return s.TypeName + "=" + s.spec
}

// Parse builds a Schema from the grammar
// name:type[:opt=val...](,name:type...)+ with per-attribute options
// index, cardinality, srid and default.
func Parse(typeName, spec string) (*Schema, error) {
	if typeName == "" {
		return nil, errors.WithMessage(ErrInvalidSchema, "empty type name")
	}
	if strings.TrimSpace(spec) == "" {
		return nil, errors.WithMessage(ErrInvalidSchema, "empty schema spec")
	}
	out := &Schema{
		TypeName: typeName,
		spec:     spec,
		byName:   make(map[string]int),
	}
	var defaultGeoms, defaultDates int
	for _, segment := range strings.Split(spec, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return nil, errors.WithMessage(ErrInvalidSchema, "empty attribute segment")
		}
		if !strings.Contains(segment, ":") {
			// Option continuation of the previous attribute, the comma form
			// of the option list.
			if len(out.Attrs) == 0 {
				return nil, errors.WithMessagef(ErrInvalidSchema, "option %q before any attribute", segment)
			}
			if err := applyOption(&out.Attrs[len(out.Attrs)-1], segment); err != nil {
				return nil, err
			}
			continue
		}
		fields := strings.Split(segment, ":")
		if len(fields) < 2 || fields[0] == "" {
			return nil, errors.WithMessagef(ErrInvalidSchema, "malformed attribute %q", segment)
		}
		kind, err := parseKind(fields[1])
		if err != nil {
			return nil, err
		}
		attr := Attribute{Name: fields[0], Kind: kind}
		for _, opt := range fields[2:] {
			if err := applyOption(&attr, opt); err != nil {
				return nil, err
			}
		}
		if _, dup := out.byName[attr.Name]; dup {
			return nil, errors.WithMessagef(ErrInvalidSchema, "duplicate attribute %q", attr.Name)
		}
		out.byName[attr.Name] = len(out.Attrs)
		out.Attrs = append(out.Attrs, attr)
	}
	for _, a := range out.Attrs {
		if !a.Default {
			continue
		}
		switch {
		case a.Kind.Geometric():
			defaultGeoms++
		case a.Kind == KindDate:
			defaultDates++
		default:
			return nil, errors.WithMessagef(ErrInvalidSchema, "attribute %q cannot be a default", a.Name)
		}
	}
	if defaultGeoms > 1 {
		return nil, errors.WithMessage(ErrInvalidSchema, "multiple default geometries")
	}
	if defaultDates > 1 {
		return nil, errors.WithMessage(ErrInvalidSchema, "multiple default dates")
	}
	return out, nil
}

func applyOption(attr *Attribute, opt string) error {
	kv := strings.SplitN(opt, "=", 2)
	if len(kv) != 2 {
		return errors.WithMessagef(ErrInvalidSchema, "malformed option %q for attribute %q", opt, attr.Name)
	}
	key, val := strings.ToLower(strings.TrimSpace(kv[0])), strings.TrimSpace(kv[1])
	switch key {
	case "index":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return errors.WithMessagef(ErrInvalidSchema, "option index=%q of attribute %q", val, attr.Name)
		}
		attr.Indexed = b
	case "cardinality":
		c, err := parseCardinality(val)
		if err != nil {
			return err
		}
		attr.Cardinality = c
	case "srid":
		if !attr.Kind.Geometric() {
			return errors.WithMessagef(ErrInvalidSchema, "srid on non-geometry attribute %q", attr.Name)
		}
		srid, err := strconv.Atoi(val)
		if err != nil {
			return errors.WithMessagef(ErrInvalidSchema, "option srid=%q of attribute %q", val, attr.Name)
		}
		attr.SRID = srid
	case "default":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return errors.WithMessagef(ErrInvalidSchema, "option default=%q of attribute %q", val, attr.Name)
		}
		attr.Default = b
	default:
		return errors.WithMessagef(ErrInvalidSchema, "unknown option %q for attribute %q", key, attr.Name)
	}
	return nil
}
