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

package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestInitModuleLevels(t *testing.T) {
	assert := require.New(t)
	assert.NoError(Init(Logging{
		Env:     "prod",
		Level:   "warn",
		Modules: []string{"planner", "planner.key"},
		Levels:  []string{"debug", "info"},
	}))
	l := GetLogger("planner")
	assert.Equal(zerolog.DebugLevel, l.GetLevel())
	assert.Equal("PLANNER", l.Module())

	sub := l.Named("key")
	assert.Equal(zerolog.InfoLevel, sub.GetLevel())
	assert.Equal("PLANNER.KEY", sub.Module())

	other := GetLogger("executor")
	assert.Equal(zerolog.WarnLevel, other.GetLevel())
}

func TestInitRejectsUnevenModuleLevels(t *testing.T) {
	assert := require.New(t)
	assert.Error(Init(Logging{
		Env:     "prod",
		Level:   "info",
		Modules: []string{"planner"},
	}))
}
