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
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/trustify/trustify/common/digest"
	"github.com/trustify/trustify/common/purl"
	"github.com/trustify/trustify/ingestor/graph"
	"github.com/trustify/trustify/ingestor/parser/osv"
)

// osvEcosystemPurlTypes maps an OSV ecosystem name to the purl type used to
// derive package identity when an affected entry carries no purl of its
// own. Ecosystems absent here fall back to purl.TypeGeneric, matching the
// ecosystem list osvecosystem.Parsed validates against.
var osvEcosystemPurlTypes = map[string]string{
	"npm":         purl.TypeNPM,
	"PyPI":        purl.TypePyPi,
	"Go":          purl.TypeGolang,
	"Maven":       purl.TypeMaven,
	"NuGet":       purl.TypeNuget,
	"RubyGems":    purl.TypeGem,
	"Packagist":   purl.TypeComposer,
	"crates.io":   purl.TypeCargo,
	"Hex":         purl.TypeHex,
	"Pub":         purl.TypePub,
	"Debian":      purl.TypeDebian,
	"Alpine":      purl.TypeApk,
	"SwiftURL":    purl.TypeSwift,
	"Hackage":     purl.TypeHackage,
	"CRAN":        purl.TypeCran,
	"ConanCenter": purl.TypeConan,
}

// affectedPackageURL derives a.PURL when present, falling back to an
// ecosystem-derived purl built from the package name otherwise. The
// ecosystem suffix ("Debian:11") is stripped before lookup; it identifies a
// distro release, not a purl type.
func affectedPackageURL(a osv.Affected) (purl.PackageURL, error) {
	if a.PURL != "" {
		return purl.Parse(a.PURL)
	}
	ecosystem, _, _ := strings.Cut(a.PackageEcosystem, ":")
	typ, ok := osvEcosystemPurlTypes[ecosystem]
	if !ok {
		typ = purl.TypeGeneric
	}
	return purl.PackageURL{Type: typ, Name: a.PackageName}, nil
}

// IngestOSV parses an OSV JSON document and ingests it as an advisory
// linked to the vulnerabilities it names (its own id, plus every
// alias).
func IngestOSV(ctx context.Context, g *graph.Graph, raw []byte, sourceLabels map[string]string) error {
	rec, err := osv.Parse(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse osv: %w", err)
	}

	tx, err := g.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	advisory, err := g.IngestAdvisory(ctx, tx, rec.ID, sourceLabels, digest.Of(raw), graph.AdvisoryInfo{
		Published: rec.Published,
		Modified:  rec.Modified,
		Withdrawn: rec.Withdrawn,
	})
	if err != nil {
		return fmt.Errorf("ingest advisory %s: %w", rec.ID, err)
	}

	var cwe *string
	if len(rec.CWEs) > 0 {
		cwe = &rec.CWEs[0]
	}

	vulnIDs := append([]string{rec.ID}, rec.Aliases...)
	for _, id := range vulnIDs {
		info := graph.VulnerabilityInfo{CWE: cwe}
		if rec.Summary != "" {
			summary := rec.Summary
			info.Title = &summary
		}
		if rec.Details != "" {
			info.Descriptions = map[string]string{"en": rec.Details}
		}
		if err := g.IngestVulnerability(ctx, tx, id, info); err != nil {
			return fmt.Errorf("ingest vulnerability %s: %w", id, err)
		}

		edgeInfo := graph.AdvisoryVulnerabilityInfo{CWE: cwe}
		if rec.Summary != "" {
			summary := rec.Summary
			edgeInfo.Summary = &summary
		}
		if rec.Details != "" {
			details := rec.Details
			edgeInfo.Description = &details
		}
		if err := advisory.LinkToVulnerability(ctx, tx, id, edgeInfo); err != nil {
			return fmt.Errorf("link advisory to vulnerability %s: %w", id, err)
		}

		if err := ingestAffected(ctx, tx, advisory, id, rec.Affected); err != nil {
			return fmt.Errorf("ingest affected packages for %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ingestAffected records every range, fixed version and exact affected
// version an OSV document reports against vulnerabilityID, as seen by
// advisory.
func ingestAffected(ctx context.Context, tx pgx.Tx, advisory *graph.Advisory, vulnerabilityID string, affected []osv.Affected) error {
	for _, a := range affected {
		pkg, err := affectedPackageURL(a)
		if err != nil {
			continue
		}

		for _, rg := range a.Ranges {
			var introduced, fixedExcluded string
			for _, ev := range rg.Events {
				if ev.Introduced != "" {
					introduced = ev.Introduced
				}
				if ev.Fixed != "" {
					fixedExcluded = ev.Fixed
					fixedPkg := pkg
					fixedPkg.Version = ev.Fixed
					if err := advisory.IngestFixedPackageVersion(ctx, tx, vulnerabilityID, fixedPkg); err != nil {
						return fmt.Errorf("ingest fixed version of %s: %w", pkg.Name, err)
					}
				}
				if ev.LastAffected != "" {
					fixedExcluded = ev.LastAffected
				}
			}
			rng := graph.AffectedPackageRange{
				RangeType:     rg.Type,
				Introduced:    introduced,
				FixedExcluded: fixedExcluded,
			}
			if err := advisory.IngestAffectedPackageRange(ctx, tx, vulnerabilityID, pkg, rng); err != nil {
				return fmt.Errorf("ingest affected range of %s: %w", pkg.Name, err)
			}
		}

		// An affected entry without ranges may instead list discrete
		// affected versions; record each as a single-point range.
		for _, v := range a.Versions {
			exactPkg := pkg
			exactPkg.Version = v
			rng := graph.AffectedPackageRange{RangeType: "EXACT", Introduced: v}
			if err := advisory.IngestAffectedPackageRange(ctx, tx, vulnerabilityID, exactPkg, rng); err != nil {
				return fmt.Errorf("ingest affected version of %s: %w", pkg.Name, err)
			}
		}
	}
	return nil
}
