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

package sft

import (
	lru "github.com/hashicorp/golang-lru"
)

const cacheSize = 128

// Cache memoizes parsed schemas by (type name, spec). Parsing is pure,
// so a hit is always equivalent to a fresh parse.
type Cache struct {
	inner *lru.Cache
}

// NewCache creates a schema cache.
func NewCache() *Cache {
	inner, err := lru.New(cacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &Cache{inner: inner}
}

// Parse returns the schema for the given grammar, parsing at most once
// per (typeName, spec) while the entry stays resident.
func (c *Cache) Parse(typeName, spec string) (*Schema, error) {
	key := typeName + "\x00" + spec
	if v, ok := c.inner.Get(key); ok {
		return v.(*Schema), nil
	}
	s, err := Parse(typeName, spec)
	if err != nil {
		return nil, err
	}
	c.inner.Add(key, s)
	return s, nil
}
