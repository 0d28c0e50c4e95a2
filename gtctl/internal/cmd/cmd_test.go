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

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	root := NewRoot()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSchemaCheck(t *testing.T) {
	assert := require.New(t)
	out, err := runCommand(t, "schema", "check",
		"attr2:String:index=true:cardinality=high,dtg:Date:default=true,geom:Point:srid=4326:default=true")
	assert.NoError(err)
	assert.Contains(out, "attr2: String indexed(cardinality=high)")
	assert.Contains(out, "default geometry: geom")
	assert.Contains(out, "default date: dtg")
}

func TestSchemaCheckRejectsConflictingDefaults(t *testing.T) {
	assert := require.New(t)
	_, err := runCommand(t, "schema", "check", "g1:Point:default=true,g2:Point:default=true")
	assert.Error(err)
}

func TestExplainAttributeEquality(t *testing.T) {
	assert := require.New(t)
	out, err := runCommand(t, "explain",
		"--schema", "attr2:String:index=true,dtg:Date:default=true,geom:Point:srid=4326:default=true",
		"--filter", `{"eq": {"name": "attr2", "value": "val56"}}`)
	assert.NoError(err)
	assert.Contains(out, "strategy: attr-eq")
	assert.Contains(out, "index range:")
}

func TestExplainDensityRequiresRaster(t *testing.T) {
	assert := require.New(t)
	_, err := runCommand(t, "explain",
		"--schema", "geom:Point:srid=4326:default=true",
		"--filter", `{"bbox": {"name": "geom", "minX": -10, "minY": -10, "maxX": 10, "maxY": 10}}`,
		"--density")
	assert.Error(err)
}
