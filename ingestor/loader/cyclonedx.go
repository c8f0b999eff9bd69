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

	"bitbucket.org/creachadair/stringset"

	"github.com/trustify/trustify/common/cpe"
	"github.com/trustify/trustify/common/digest"
	"github.com/trustify/trustify/common/purl"
	"github.com/trustify/trustify/ingestor/graph"
	"github.com/trustify/trustify/ingestor/graph/creator"
	"github.com/trustify/trustify/ingestor/parser/cyclonedx"
	"github.com/trustify/trustify/ingestor/parser/report"
)

// IngestCycloneDX parses a CycloneDX JSON document and ingests it as an
// SBOM under one transaction. Nested components are related to their
// parent via ContainedBy; the metadata.component root, if present, is
// registered as a product and described by the document.
func IngestCycloneDX(ctx context.Context, g *graph.Graph, raw []byte, sourceLabels map[string]string, sink report.Sink) error {
	doc, err := cyclonedx.Parse(bytes.NewReader(raw), sink)
	if err != nil {
		return fmt.Errorf("parse cyclonedx: %w", err)
	}

	tx, err := g.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	documentID := doc.SerialNumber
	sbomCtx, err := g.IngestSBOM(ctx, tx, graph.SbomInformation{
		DocumentID: documentID,
		Name:       doc.RootRef,
	}, digest.Of(raw), sourceLabels)
	if err != nil {
		return fmt.Errorf("ingest sbom: %w", err)
	}

	purls := creator.NewPurlCreator()
	cpes := creator.NewCpeCreator()
	packages := creator.NewPackageCreator(sbomCtx.SbomID)
	files := creator.NewFileCreator(sbomCtx.SbomID)
	relationships := creator.NewRelationshipCreator(sbomCtx.SbomID)

	for _, c := range doc.Components {
		var refs []creator.PackageReference
		if c.PURL != "" {
			parsed, err := purl.Parse(c.PURL)
			if err != nil {
				sink.Warnf(c.Name, "failed to parse purl %q: %v", c.PURL, err)
			} else {
				purls.Add(parsed)
				_, _, qualified := parsed.UUIDs()
				refs = append(refs, creator.PurlReference(qualified))
			}
		}
		if c.CPE != "" {
			parsed, err := cpe.Parse(c.CPE)
			if err != nil {
				sink.Warnf(c.Name, "failed to parse cpe %q: %v", c.CPE, err)
			} else {
				cpes.Add(parsed)
				refs = append(refs, creator.CpeReference(parsed.UUID()))
			}
		}
		packages.Add(c.BOMRef, c.Name, c.Version, refs...)

		if c.Parent != "" {
			relationships.Add(c.BOMRef, creator.ContainedBy, c.Parent)
		}
	}

	if doc.RootRef != "" {
		relationships.Add(doc.RootRef, creator.DescribedBy, documentID)
		if root := findComponent(doc, doc.RootRef); root != nil {
			product, err := g.IngestProduct(ctx, tx, root.Name, graph.ProductInformation{})
			if err != nil {
				return fmt.Errorf("ingest product %s: %w", root.Name, err)
			}
			if root.Version != "" {
				if err := product.IngestProductVersion(ctx, tx, root.Version, &sbomCtx.SbomID); err != nil {
					return fmt.Errorf("ingest product version %s %s: %w", root.Name, root.Version, err)
				}
			}
		}
	}

	sources := []stringset.Set{
		stringset.New(documentID),
		packages.NodeIDs(),
		files.NodeIDs(),
	}
	if err := relationships.Validate(sources...); err != nil {
		return fmt.Errorf("validate relationships: %w", err)
	}

	if err := purls.Flush(ctx, tx); err != nil {
		return fmt.Errorf("flush purls: %w", err)
	}
	if err := cpes.Flush(ctx, tx); err != nil {
		return fmt.Errorf("flush cpes: %w", err)
	}
	if err := packages.Flush(ctx, tx); err != nil {
		return fmt.Errorf("flush packages: %w", err)
	}
	if err := files.Flush(ctx, tx); err != nil {
		return fmt.Errorf("flush files: %w", err)
	}
	if err := relationships.Flush(ctx, tx); err != nil {
		return fmt.Errorf("flush relationships: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func findComponent(doc *cyclonedx.Document, ref string) *cyclonedx.Component {
	for i := range doc.Components {
		if doc.Components[i].BOMRef == ref {
			return &doc.Components[i]
		}
	}
	return nil
}
