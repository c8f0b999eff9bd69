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

package loader

import (
	"bytes"
	"context"
	"fmt"

	"github.com/trustify/trustify/common/digest"
	"github.com/trustify/trustify/ingestor/graph"
	"github.com/trustify/trustify/ingestor/parser/cve"
)

// IngestCVE parses a MITRE CVE Record JSON v5 document and ingests it as
// an advisory linked to the vulnerability it describes. Rejected records
// set withdrawn to the rejection date and use rejectedReasons as
// descriptions; published records take title from the CNA container and
// the first cwe_id found.
func IngestCVE(ctx context.Context, g *graph.Graph, raw []byte, sourceLabels map[string]string) error {
	rec, err := cve.Parse(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse cve: %w", err)
	}

	tx, err := g.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	descriptions := map[string]string{}
	for _, d := range rec.Descriptions {
		descriptions[d.Language] = d.Value
	}

	var cwe *string
	if rec.CWE != "" {
		c := rec.CWE
		cwe = &c
	}

	advisory, err := g.IngestAdvisory(ctx, tx, rec.ID, sourceLabels, digest.Of(raw), graph.AdvisoryInfo{
		Published: rec.Published,
		Modified:  rec.Modified,
		Withdrawn: rec.Withdrawn,
	})
	if err != nil {
		return fmt.Errorf("ingest advisory %s: %w", rec.ID, err)
	}

	info := graph.VulnerabilityInfo{
		Published:    rec.Published,
		Modified:     rec.Modified,
		Withdrawn:    rec.Withdrawn,
		Descriptions: descriptions,
	}
	if rec.Title != "" {
		title := rec.Title
		info.Title = &title
	}
	if cwe != nil {
		info.CWE = cwe
	}

	if err := g.IngestVulnerability(ctx, tx, rec.ID, info); err != nil {
		return fmt.Errorf("ingest vulnerability %s: %w", rec.ID, err)
	}

	edgeInfo := graph.AdvisoryVulnerabilityInfo{CWE: cwe}
	if rec.Title != "" {
		title := rec.Title
		edgeInfo.Summary = &title
	}
	if desc := rec.EnglishDescription(); desc != "" {
		edgeInfo.Description = &desc
	}
	if err := advisory.LinkToVulnerability(ctx, tx, rec.ID, edgeInfo); err != nil {
		return fmt.Errorf("link advisory to vulnerability %s: %w", rec.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
