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
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trustify/trustify/common/config"
	"github.com/trustify/trustify/importer/model"
	"github.com/trustify/trustify/importer/service"
	"github.com/trustify/trustify/store"
)

var importerCmd = &cobra.Command{
	Use:   "importer",
	Short: "manage scheduled importers",
}

var (
	importerSource   string
	importerKind     string
	importerPeriod   time.Duration
	importerDisabled bool
)

var importerCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "register a new scheduled importer",
	Args:  cobra.ExactArgs(1),
	RunE:  runImporterCreate,
}

var importerListCmd = &cobra.Command{
	Use:   "list",
	Short: "list every registered importer",
	Args:  cobra.NoArgs,
	RunE:  runImporterList,
}

var importerDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "remove a registered importer",
	Args:  cobra.ExactArgs(1),
	RunE:  runImporterDelete,
}

func init() {
	importerCreateCmd.Flags().StringVar(&importerSource, "source", "", "document source: an http(s) URL or filesystem path")
	importerCreateCmd.Flags().StringVar(&importerKind, "kind", "sbom", "importer kind: sbom, csaf, cve or osv")
	importerCreateCmd.Flags().DurationVar(&importerPeriod, "period", time.Hour, "how often to poll the source")
	importerCreateCmd.Flags().BoolVar(&importerDisabled, "disabled", false, "register the importer in a disabled state")
	_ = importerCreateCmd.MarkFlagRequired("source")

	importerCmd.AddCommand(importerCreateCmd)
	importerCmd.AddCommand(importerListCmd)
	importerCmd.AddCommand(importerDeleteCmd)
}

func newImporterService(ctx context.Context) (*service.Service, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	st, err := store.New(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return service.New(st.Pool), st, nil
}

func runImporterCreate(cmd *cobra.Command, args []string) error {
	svc, st, err := newImporterService(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	sbomCfg := &model.SbomImporter{
		CommonImporter: model.CommonImporter{Disabled: importerDisabled, Period: importerPeriod},
		Source:         importerSource,
	}
	configuration := model.Configuration{Kind: model.Kind(importerKind)}
	switch configuration.Kind {
	case model.KindSbom:
		configuration.Sbom = sbomCfg
	case model.KindCSAF:
		configuration.CSAF = sbomCfg
	case model.KindCVE:
		configuration.CVE = sbomCfg
	case model.KindOSV:
		configuration.OSV = sbomCfg
	default:
		return fmt.Errorf("unknown importer kind %q", importerKind)
	}

	if err := svc.Create(cmd.Context(), args[0], configuration); err != nil {
		return fmt.Errorf("create importer %s: %w", args[0], err)
	}
	fmt.Printf("created importer %s\n", args[0])
	return nil
}

func runImporterList(cmd *cobra.Command, args []string) error {
	svc, st, err := newImporterService(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	importers, err := svc.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list importers: %w", err)
	}
	for _, imp := range importers {
		fmt.Printf("%s\t%s\t%s\n", imp.Name, imp.Configuration.Kind, imp.State)
	}
	return nil
}

func runImporterDelete(cmd *cobra.Command, args []string) error {
	svc, st, err := newImporterService(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	deleted, err := svc.Delete(cmd.Context(), args[0], nil)
	if err != nil {
		return fmt.Errorf("delete importer %s: %w", args[0], err)
	}
	if !deleted {
		return fmt.Errorf("importer %s not found", args[0])
	}
	fmt.Printf("deleted importer %s\n", args[0])
	return nil
}
