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
	"encoding/hex"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/openspatial/geotable/pkg/logger"
	"github.com/openspatial/geotable/pkg/query/logical"
	"github.com/openspatial/geotable/pkg/query/planner"
)

func newExplainCmd(root *rootOptions) *cobra.Command {
	var (
		schemaSpec string
		typeName   string
		filterJSON string
		version    int
		hints      planner.QueryHints
	)
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Choose a strategy for a filter and print the compiled plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if schemaSpec == "" {
				return errors.New("--schema is required")
			}
			schema, err := root.schemas.Parse(typeName, schemaSpec)
			if err != nil {
				return err
			}
			data := []byte(filterJSON)
			if strings.HasPrefix(filterJSON, "@") {
				if data, err = os.ReadFile(filterJSON[1:]); err != nil {
					return err
				}
			}
			filter, err := logical.DecodeJSON(data)
			if err != nil {
				return err
			}
			ctx := planner.Context{
				Schema:          schema,
				Tables:          root.tables(),
				FeatureEncoding: root.featureEncoding,
				Version:         version,
				Log:             logger.GetLogger("gtctl"),
			}
			plan, err := planner.Plan(ctx, filter, hints)
			if err != nil {
				return err
			}
			cmd.Printf("strategy: %s\n", plan.Strategy)
			cmd.Printf("plan: %s\n", plan)
			if plan.IndexScan != nil {
				for _, r := range plan.IndexScan.Ranges {
					cmd.Printf("index range: [%s, %s)\n", hex.EncodeToString(r.Start), hex.EncodeToString(r.End))
				}
			}
			for _, stage := range plan.Iterators {
				cmd.Printf("iterator %d %s (%s)\n", stage.Priority, stage.Name, stage.ClassName)
				for k, v := range stage.Options {
					cmd.Printf("  %s=%s\n", k, v)
				}
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&schemaSpec, "schema", "", "feature schema spec")
	fs.StringVar(&typeName, "name", "feature", "feature type name")
	fs.StringVar(&filterJSON, "filter", "{\"include\": true}", "filter as json, or @file")
	fs.IntVar(&version, "index-version", 1, "index layout generation")
	fs.BoolVar(&hints.Density, "density", false, "plan a density aggregation")
	fs.IntVar(&hints.Width, "width", 0, "density raster width")
	fs.IntVar(&hints.Height, "height", 0, "density raster height")
	fs.BoolVar(&hints.TemporalDensity, "temporal-density", false, "plan a temporal density aggregation")
	fs.IntVar(&hints.Buckets, "buckets", 0, "temporal density buckets")
	fs.StringSliceVar(&hints.Transforms, "transform", nil, "projection or transform expressions")
	return cmd
}
