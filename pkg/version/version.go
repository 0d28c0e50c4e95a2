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

// Package version embeds versioning details from git tags into the
// binary importing this package.
package version

import (
	"strings"
)

// build is to be populated at build time using -ldflags -X.
var build string

// Build shows the binary's raw build information.
func Build() string {
	return build
}

// Parse returns the human-readable version derived from the raw git label.
func Parse() string {
	// build syntax: <release tag>-<commits since tag>-g<commit hash>-<branch>
	v := strings.SplitN(build, "-", 4)
	if len(v[0]) > 1 && strings.ToLower(v[0])[0] != 'v' {
		v[0] = "v" + v[0]
	}
	switch {
	case len(v) != 4:
		return "v0.0.0-unofficial"
	case v[1] != "0":
		return v[0] + "-" + v[3] + " (" + v[2][1:] + ", +" + v[1] + ")"
	case v[3] != "main":
		return v[0] + "-" + v[3]
	default:
		return v[0]
	}
}
