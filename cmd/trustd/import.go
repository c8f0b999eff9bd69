// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/trustify/trustify/common/config"
	"github.com/trustify/trustify/ingestor/graph"
	"github.com/trustify/trustify/ingestor/loader"
	"github.com/trustify/trustify/ingestor/parser/report"
	"github.com/trustify/trustify/store"
)

var importKind string

var importCmd = &cobra.Command{
	Use:   "import [--kind spdx|cyclonedx|cve|osv|csaf] <file>",
	Short: "ingest a single local document outside of any importer schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importKind, "kind", "k", "spdx", "document kind: spdx, cyclonedx, cve, osv or csaf")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := cmd.Context()
	st, err := store.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	g := graph.New(st.Pool)
	builder := report.NewBuilder(time.Now())
	if err := loader.Ingest(ctx, g, loader.Kind(importKind), raw, map[string]string{"source": "cli"}, builder); err != nil {
		return fmt.Errorf("ingest %s: %w", args[0], err)
	}

	rpt := builder.Build(time.Now())
	fmt.Printf("ingested %s: %d item(s), %d warning(s), %d error(s)\n",
		args[0], rpt.NumberOfItems, len(rpt.Messages["warning"]), len(rpt.Messages["error"]))
	return nil
}
