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

// Package cmd implements the gtctl commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/openspatial/geotable/pkg/config"
	"github.com/openspatial/geotable/pkg/logger"
	"github.com/openspatial/geotable/pkg/query/planner"
	"github.com/openspatial/geotable/pkg/sft"
	"github.com/openspatial/geotable/pkg/version"
)

type rootOptions struct {
	schemas         *sft.Cache
	attributeTable  string
	recordTable     string
	stTable         string
	featureEncoding string
	logLevel        string
}

func (o rootOptions) tables() planner.TableConfig {
	return planner.TableConfig{
		AttributeIndex: o.attributeTable,
		Record:         o.recordTable,
		SpatioTemporal: o.stTable,
	}
}

// NewRoot returns the root command.
func NewRoot() *cobra.Command {
	opts := &rootOptions{schemas: sft.NewCache()}
	cmd := &cobra.Command{
		Use:               "gtctl",
		Short:             "gtctl is the command line tool of GeoTable",
		Version:           version.Parse(),
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Load("gtctl", cmd.Flags()); err != nil {
				return err
			}
			if err := config.Load("gtctl", cmd.InheritedFlags()); err != nil {
				return err
			}
			return logger.Init(logger.Logging{Env: "dev", Level: opts.logLevel})
		},
	}
	fs := cmd.PersistentFlags()
	fs.StringVar(&opts.attributeTable, "attribute-table", "geotable_attr_idx", "attribute index table name")
	fs.StringVar(&opts.recordTable, "record-table", "geotable_records", "record table name")
	fs.StringVar(&opts.stTable, "st-table", "geotable_st_idx", "spatio-temporal index table name")
	fs.StringVar(&opts.featureEncoding, "feature-encoding", "avro", "feature value encoding")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level")
	cmd.AddCommand(newSchemaCmd(opts), newExplainCmd(opts))
	return cmd
}
