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
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemaCmd(root *rootOptions) *cobra.Command {
	typeName := ""
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Work with feature schemas",
	}
	check := &cobra.Command{
		Use:   "check <spec>",
		Short: "Validate a schema spec and print its attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := root.schemas.Parse(typeName, args[0])
			if err != nil {
				return err
			}
			for _, a := range schema.Attrs {
				line := fmt.Sprintf("%s: %s", a.Name, a.Kind)
				if a.Indexed {
					line += fmt.Sprintf(" indexed(cardinality=%s)", a.Cardinality)
				}
				if a.Default {
					line += " default"
				}
				cmd.Println(line)
			}
			if geom, ok := schema.DefaultGeometry(); ok {
				cmd.Printf("default geometry: %s\n", geom.Name)
			}
			if date, ok := schema.DefaultDate(); ok {
				cmd.Printf("default date: %s\n", date.Name)
			}
			return nil
		},
	}
	check.Flags().StringVar(&typeName, "name", "feature", "feature type name")
	cmd.AddCommand(check)
	return cmd
}
