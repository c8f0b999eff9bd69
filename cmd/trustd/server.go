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
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/trustify/trustify/common/config"
	"github.com/trustify/trustify/common/log"
	"github.com/trustify/trustify/ingestor/graph"
	"github.com/trustify/trustify/importer/runner"
	"github.com/trustify/trustify/importer/service"
	"github.com/trustify/trustify/store"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run migrations and the importer control loop",
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLogger(log.NewLogrusLogger(level))
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := store.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	g := graph.New(st.Pool)
	svc := service.New(st.Pool)
	r := runner.New(svc, g, cfg.Runner.TickPeriod, cfg.Runner.RunTimeout)

	log.Infof("trustd server starting, polling every %s", cfg.Runner.TickPeriod)
	if err := r.Run(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("importer runner: %w", err)
	}
	log.Info("trustd server shutting down")
	return nil
}
