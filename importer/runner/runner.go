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

// Package runner implements the importer control loop: a ticker that scans
// for due importers, claims each one with a revision-gated transition to
// Running, dispatches it to the matching ingestor/loader, and records the
// outcome as an ImporterReport.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trustify/trustify/common/log"
	"github.com/trustify/trustify/ingestor/graph"
	"github.com/trustify/trustify/ingestor/loader"
	"github.com/trustify/trustify/ingestor/parser/report"
	"github.com/trustify/trustify/importer/model"
	"github.com/trustify/trustify/importer/service"
)

// maxConcurrentRuns bounds how many importers this runner dispatches at
// once, so one tick can't open unbounded connections against the source
// registries or the database pool.
const maxConcurrentRuns = 4

// Runner periodically scans the importer table and executes whichever
// importers are due.
type Runner struct {
	svc        *service.Service
	graph      *graph.Graph
	httpClient *http.Client
	tickPeriod time.Duration
	runTimeout time.Duration
}

// New builds a Runner polling every tickPeriod and bounding each importer
// run to runTimeout.
func New(svc *service.Service, g *graph.Graph, tickPeriod, runTimeout time.Duration) *Runner {
	return &Runner{
		svc:        svc,
		graph:      g,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		tickPeriod: tickPeriod,
		runTimeout: runTimeout,
	}
}

// Run blocks, ticking until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.tick(ctx); err != nil {
				log.Errorf("importer tick: %v", err)
			}
		}
	}
}

// tick runs every due importer concurrently, bounded by maxConcurrentRuns.
// An individual importer's failure never aborts the others' runs.
func (r *Runner) tick(ctx context.Context) error {
	importers, err := r.svc.List(ctx)
	if err != nil {
		return fmt.Errorf("list importers: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRuns)
	for _, imp := range importers {
		imp := imp
		if !due(imp) {
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			r.runOne(ctx, imp.Name)
			return nil
		})
	}
	return g.Wait()
}

// due reports whether imp's configured period has elapsed since its last
// state change, and it isn't disabled or already running.
func due(imp model.Importer) bool {
	common := imp.Configuration.Common()
	if common.Disabled || imp.State == model.StateRunning {
		return false
	}
	if common.Period <= 0 {
		return false
	}
	return time.Since(imp.LastChange) >= common.Period
}

// runOne claims, executes and finalizes a single importer run. It never
// returns an error: a failure of the fetch or ingest step, including a
// panic inside the loader, is folded into the run's last_error and
// persisted; a failure to read, claim or finish the importer row is only
// logged.
func (r *Runner) runOne(ctx context.Context, name string) {
	logger := log.WithField("importer", name)

	current, err := r.svc.Read(ctx, name)
	if err != nil {
		logger.Errorf("read before run: %v", err)
		return
	}
	if current == nil {
		return
	}

	if err := r.svc.UpdateStart(ctx, name, &current.Revision); err != nil {
		if errors.Is(err, service.ErrMidAirCollision) || errors.Is(err, service.ErrNotFound) {
			return
		}
		logger.Errorf("claim run: %v", err)
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, r.runTimeout)
	defer cancel()

	start := time.Now()
	builder := report.NewBuilder(start)
	runErr := r.execute(runCtx, logger, current.Value, builder)
	end := time.Now()

	var lastErr *string
	if runErr != nil {
		msg := runErr.Error()
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			msg = "cancelled"
		}
		lastErr = &msg
		logger.Errorf("run failed: %v", runErr)
	}

	rpt := builder.Build(end)
	reportJSON, err := marshalReport(rpt)
	if err != nil {
		logger.Errorf("marshal report: %v", err)
	}

	// UpdateFinish rotates the revision again, so it is gated on whatever
	// revision UpdateStart left behind, not the one we read at the top.
	afterStart, err := r.svc.Read(ctx, name)
	if err != nil || afterStart == nil {
		logger.Errorf("read after run: %v", err)
		return
	}
	if err := r.svc.UpdateFinish(ctx, name, &afterStart.Revision, end, lastErr, reportJSON); err != nil {
		logger.Errorf("finish run: %v", err)
	}
}

// execute fetches the importer's source document and dispatches it to the
// matching loader, recovering any panic into an error so one misbehaving
// document never crashes the runner.
func (r *Runner) execute(ctx context.Context, logger log.Logger, imp model.Importer, builder *report.Builder) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	sbomCfg := sourceConfig(imp.Configuration)
	if sbomCfg == nil {
		return fmt.Errorf("importer %s: no source configured for kind %s", imp.Name, imp.Configuration.Kind)
	}

	raw, err := r.fetch(ctx, sbomCfg.Source)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", sbomCfg.Source, err)
	}
	builder.IncrementItems(1)

	kind := documentKind(imp.Configuration.Kind, sbomCfg.Source)
	labels := map[string]string{"importer": imp.Name}
	if err := loader.Ingest(ctx, r.graph, kind, raw, labels, builder); err != nil {
		builder.Errorf(sbomCfg.Source, "%v", err)
		return err
	}
	logger.Infof("ingested %s (%d bytes)", sbomCfg.Source, len(raw))
	return nil
}

// sourceConfig returns the kind-specific importer configuration, regardless
// of which union branch it's stored under: every variant shares the same
// common+source+keys shape.
func sourceConfig(cfg model.Configuration) *model.SbomImporter {
	switch cfg.Kind {
	case model.KindSbom:
		return cfg.Sbom
	case model.KindCSAF:
		return cfg.CSAF
	case model.KindCVE:
		return cfg.CVE
	case model.KindOSV:
		return cfg.OSV
	default:
		return nil
	}
}

// documentKind maps an importer Kind to the loader.Kind that parses its
// documents. SBOM importers may carry either SPDX or CycloneDX documents;
// a source whose location contains "cyclonedx" (case-insensitive) is
// treated as CycloneDX and any other as SPDX, since both are JSON and the
// document body alone isn't a reliable enough discriminant without parsing
// it twice.
func documentKind(kind model.Kind, source string) loader.Kind {
	switch kind {
	case model.KindCSAF:
		return loader.KindCSAF
	case model.KindCVE:
		return loader.KindCVE
	case model.KindOSV:
		return loader.KindOSV
	case model.KindSbom:
		if strings.Contains(strings.ToLower(source), "cyclonedx") {
			return loader.KindCycloneDX
		}
		return loader.KindSPDX
	default:
		return loader.KindSPDX
	}
}

// fetch retrieves the raw document bytes from an http(s) URL or a local
// filesystem path.
func (r *Runner) fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := r.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(source)
}

func marshalReport(rpt report.Report) ([]byte, error) {
	return json.Marshal(rpt)
}
