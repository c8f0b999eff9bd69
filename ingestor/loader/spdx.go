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

// Package loader wires together the document parsers (C2), the batch
// creators (C3) and the graph service (C4) into one ingestion run per
// document kind.
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
	"github.com/trustify/trustify/ingestor/parser/report"
	"github.com/trustify/trustify/ingestor/parser/spdx"
)

// spdxRelationshipMap rewrites an SPDX relation into its internal
// (left, kind, right) form so that every internal edge points from a
// dependent/child to its parent, regardless of which SPDX direction was
// used on the wire. Kinds absent from this table are dropped.
var spdxRelationshipMap = map[string]func(left, right string) (string, creator.Kind, string){
	"CONTAINS":                func(l, r string) (string, creator.Kind, string) { return r, creator.ContainedBy, l },
	"CONTAINED_BY":            func(l, r string) (string, creator.Kind, string) { return l, creator.ContainedBy, r },
	"DESCRIBES":               func(l, r string) (string, creator.Kind, string) { return r, creator.DescribedBy, l },
	"DESCRIBED_BY":            func(l, r string) (string, creator.Kind, string) { return l, creator.DescribedBy, r },
	"DEPENDS_ON":              func(l, r string) (string, creator.Kind, string) { return r, creator.DependencyOf, l },
	"DEPENDENCY_OF":           func(l, r string) (string, creator.Kind, string) { return l, creator.DependencyOf, r },
	"DEV_DEPENDENCY_OF":       func(l, r string) (string, creator.Kind, string) { return l, creator.DevDependencyOf, r },
	"OPTIONAL_DEPENDENCY_OF":  func(l, r string) (string, creator.Kind, string) { return l, creator.OptionalDependencyOf, r },
	"PROVIDED_DEPENDENCY_OF":  func(l, r string) (string, creator.Kind, string) { return l, creator.ProvidedDependencyOf, r },
	"TEST_DEPENDENCY_OF":      func(l, r string) (string, creator.Kind, string) { return l, creator.TestDependencyOf, r },
	"RUNTIME_DEPENDENCY_OF":   func(l, r string) (string, creator.Kind, string) { return l, creator.RuntimeDependencyOf, r },
	"EXAMPLE_OF":              func(l, r string) (string, creator.Kind, string) { return l, creator.ExampleOf, r },
	"GENERATES":               func(l, r string) (string, creator.Kind, string) { return r, creator.GeneratedFrom, l },
	"GENERATED_FROM":          func(l, r string) (string, creator.Kind, string) { return l, creator.GeneratedFrom, r },
	"ANCESTOR_OF":             func(l, r string) (string, creator.Kind, string) { return l, creator.AncestorOf, r },
	"DESCENDANT_OF":           func(l, r string) (string, creator.Kind, string) { return r, creator.AncestorOf, l },
	"VARIANT_OF":              func(l, r string) (string, creator.Kind, string) { return l, creator.VariantOf, r },
	"BUILD_TOOL_OF":           func(l, r string) (string, creator.Kind, string) { return l, creator.BuildToolOf, r },
	"DEV_TOOL_OF":             func(l, r string) (string, creator.Kind, string) { return l, creator.DevToolOf, r },
}

// IngestSPDX parses an SPDX JSON document and ingests it as an SBOM under
// one transaction. sourceLabels identify where the document was fetched
// from (e.g. importer name).
func IngestSPDX(ctx context.Context, g *graph.Graph, raw []byte, sourceLabels map[string]string, sink report.Sink) error {
	doc, err := spdx.Parse(bytes.NewReader(raw), sink)
	if err != nil {
		return fmt.Errorf("parse spdx: %w", err)
	}

	tx, err := g.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sbomCtx, err := g.IngestSBOM(ctx, tx, graph.SbomInformation{
		DocumentID: doc.Namespace,
		Name:       doc.Name,
	}, digest.Of(raw), sourceLabels)
	if err != nil {
		return fmt.Errorf("ingest sbom: %w", err)
	}

	purls := creator.NewPurlCreator()
	cpes := creator.NewCpeCreator()
	packages := creator.NewPackageCreator(sbomCtx.SbomID)
	files := creator.NewFileCreator(sbomCtx.SbomID)
	relationships := creator.NewRelationshipCreator(sbomCtx.SbomID)

	describedBy := stringset.New()
	for _, rel := range doc.Relations {
		if fn, ok := spdxRelationshipMap[string(rel.Type)]; ok {
			left, kind, right := fn(rel.Left, rel.Right)
			relationships.Add(left, kind, right)
			if kind == creator.DescribedBy {
				describedBy.Add(left)
			}
		}
	}

	products := map[string]struct{}{}
	for id := range describedBy {
		products[id] = struct{}{}
	}

	for _, p := range doc.Packages {
		var refs []creator.PackageReference
		for _, rawPurl := range p.PURLs {
			parsed, err := purl.Parse(rawPurl)
			if err != nil {
				sink.Warnf(doc.Name, "failed to parse purl %q: %v", rawPurl, err)
				continue
			}
			purls.Add(parsed)
			_, _, qualified := parsed.UUIDs()
			refs = append(refs, creator.PurlReference(qualified))
		}
		for _, rawCpe := range p.CPEs {
			parsed, err := cpe.Parse(rawCpe)
			if err != nil {
				sink.Warnf(doc.Name, "failed to parse cpe %q: %v", rawCpe, err)
				continue
			}
			cpes.Add(parsed)
			refs = append(refs, creator.CpeReference(parsed.UUID()))
		}
		packages.Add(p.ElementID, p.Name, p.Version, refs...)

		if _, isProduct := products[p.ElementID]; isProduct {
			product, err := g.IngestProduct(ctx, tx, p.Name, graph.ProductInformation{})
			if err != nil {
				return fmt.Errorf("ingest product %s: %w", p.Name, err)
			}
			if p.Version != "" {
				if err := product.IngestProductVersion(ctx, tx, p.Version, &sbomCtx.SbomID); err != nil {
					return fmt.Errorf("ingest product version %s %s: %w", p.Name, p.Version, err)
				}
			}
		}
	}

	for _, f := range doc.Files {
		files.Add(f.ElementID, f.Name, f.Checksums["SHA256"])
	}

	sources := []stringset.Set{
		stringset.New(doc.DocumentID),
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
