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
	"time"

	"github.com/trustify/trustify/common/digest"
	"github.com/trustify/trustify/ingestor/graph"
	"github.com/trustify/trustify/ingestor/parser/csaf"
)

// IngestCSAF parses a CSAF 2.0 JSON advisory and ingests it linked to
// every CVE its vulnerabilities[] section names.
func IngestCSAF(ctx context.Context, g *graph.Graph, raw []byte, sourceLabels map[string]string) error {
	doc, err := csaf.Parse(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse csaf: %w", err)
	}

	tx, err := g.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	issuer := doc.Publisher
	info := graph.AdvisoryInfo{}
	if issuer != "" {
		info.Issuer = &issuer
	}
	if t, err := time.Parse(time.RFC3339, doc.InitialRelease); err == nil {
		info.Published = &t
	}
	if t, err := time.Parse(time.RFC3339, doc.CurrentRelease); err == nil {
		info.Modified = &t
	}

	advisory, err := g.IngestAdvisory(ctx, tx, doc.ID, sourceLabels, digest.Of(raw), info)
	if err != nil {
		return fmt.Errorf("ingest advisory %s: %w", doc.ID, err)
	}

	for _, v := range doc.Vulnerabilities {
		if v.CVE == "" {
			continue
		}
		vulnInfo := graph.VulnerabilityInfo{}
		if v.Title != "" {
			title := v.Title
			vulnInfo.Title = &title
		}
		if v.Note != "" {
			vulnInfo.Descriptions = map[string]string{"en": v.Note}
		}
		if err := g.IngestVulnerability(ctx, tx, v.CVE, vulnInfo); err != nil {
			return fmt.Errorf("ingest vulnerability %s: %w", v.CVE, err)
		}

		edgeInfo := graph.AdvisoryVulnerabilityInfo{}
		if v.Title != "" {
			summary := v.Title
			edgeInfo.Summary = &summary
		}
		if v.Note != "" {
			note := v.Note
			edgeInfo.Description = &note
		}
		if err := advisory.LinkToVulnerability(ctx, tx, v.CVE, edgeInfo); err != nil {
			return fmt.Errorf("link advisory to vulnerability %s: %w", v.CVE, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
