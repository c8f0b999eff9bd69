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

// Package graph implements the idempotent upsert operations trustify's
// ingestion loaders drive: vulnerabilities, advisories, products and
// SBOMs. Every operation takes an explicit transactional context so a
// whole document's ingestion commits or rolls back as one unit.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trustify/trustify/common/digest"
	"github.com/trustify/trustify/common/purl"
)

// Graph owns the connection pool backing every ingestion operation. It is
// safe for concurrent use; callers supply their own transaction per run.
type Graph struct {
	pool *pgxpool.Pool
}

// New returns a Graph bound to pool.
func New(pool *pgxpool.Pool) *Graph {
	return &Graph{pool: pool}
}

// Begin starts a transaction for one ingestion run.
func (g *Graph) Begin(ctx context.Context) (pgx.Tx, error) {
	return g.pool.Begin(ctx)
}

// VulnerabilityInfo carries the fields an ingest_vulnerability call may
// update. A nil field leaves the stored column untouched.
type VulnerabilityInfo struct {
	Title        *string
	Published    *time.Time
	Modified     *time.Time
	Withdrawn    *time.Time
	CWE          *string
	Descriptions map[string]string
}

// IngestVulnerability upserts a vulnerability by identifier. Fields from
// info overwrite nulls but never clobber a non-null column with null.
func (g *Graph) IngestVulnerability(ctx context.Context, tx pgx.Tx, identifier string, info VulnerabilityInfo) error {
	descriptions := info.Descriptions
	if descriptions == nil {
		descriptions = map[string]string{}
	}
	descriptionsJSON, err := json.Marshal(descriptions)
	if err != nil {
		return fmt.Errorf("marshal descriptions: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO vulnerability (identifier, title, published, modified, withdrawn, cwe, descriptions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (identifier) DO UPDATE SET
			title        = COALESCE(vulnerability.title, EXCLUDED.title),
			published    = COALESCE(vulnerability.published, EXCLUDED.published),
			modified     = COALESCE(EXCLUDED.modified, vulnerability.modified),
			withdrawn    = COALESCE(EXCLUDED.withdrawn, vulnerability.withdrawn),
			cwe          = COALESCE(vulnerability.cwe, EXCLUDED.cwe),
			descriptions = vulnerability.descriptions || EXCLUDED.descriptions
	`, identifier, info.Title, info.Published, info.Modified, info.Withdrawn, info.CWE, descriptionsJSON)
	return err
}

// AdvisoryInfo carries the mutable fields of an advisory row.
type AdvisoryInfo struct {
	Issuer    *string
	Published *time.Time
	Modified  *time.Time
	Withdrawn *time.Time
}

// Advisory is a handle to a freshly ingested or existing advisory row. It
// holds no transaction: each of its methods takes the caller's tx.
type Advisory struct {
	graph *Graph
	UUID  uuid.UUID
}

// IngestAdvisory upserts an advisory by sha256 digest. If a different
// digest arrives for the same (identifier, issuer), the newer advisory is
// inserted as a distinct row: multiple revisions coexist by design.
func (g *Graph) IngestAdvisory(ctx context.Context, tx pgx.Tx, identifier string, labels map[string]string, digests digest.Digests, info AdvisoryInfo) (*Advisory, error) {
	if labels == nil {
		labels = map[string]string{}
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return nil, fmt.Errorf("marshal labels: %w", err)
	}
	var advisoryUUID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO advisory (advisory_uuid, identifier, issuer, published, modified, withdrawn, sha256, sha384, sha512, labels)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (sha256) DO UPDATE SET sha256 = EXCLUDED.sha256
		RETURNING advisory_uuid
	`, uuid.New(), identifier, info.Issuer, info.Published, info.Modified, info.Withdrawn,
		digests.SHA256, digests.SHA384, digests.SHA512, labelsJSON).Scan(&advisoryUUID)
	if err != nil {
		return nil, err
	}
	return &Advisory{graph: g, UUID: advisoryUUID}, nil
}

// AdvisoryVulnerabilityInfo carries the per-edge annotations attached when
// linking an advisory to a vulnerability.
type AdvisoryVulnerabilityInfo struct {
	Summary       *string
	Description   *string
	DiscoveryDate *time.Time
	ReleaseDate   *time.Time
	CWE           *string
}

// LinkToVulnerability links an advisory to a vulnerability. Idempotent on
// the edge; per-edge fields replace prior values (last writer wins within
// one ingestion).
func (a *Advisory) LinkToVulnerability(ctx context.Context, tx pgx.Tx, vulnerabilityID string, info AdvisoryVulnerabilityInfo) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO advisory_vulnerability (advisory_uuid, vulnerability_id, summary, description, discovery_date, release_date, cwe)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (advisory_uuid, vulnerability_id) DO UPDATE SET
			summary        = EXCLUDED.summary,
			description    = EXCLUDED.description,
			discovery_date = EXCLUDED.discovery_date,
			release_date   = EXCLUDED.release_date,
			cwe            = EXCLUDED.cwe
	`, a.UUID, vulnerabilityID, info.Summary, info.Description, info.DiscoveryDate, info.ReleaseDate, info.CWE)
	return err
}

// ensurePackage inserts pkg's package row if it isn't already known, so a
// range/fixed/not-affected row can reference it without requiring the
// package to have first been seen through an SBOM.
func ensurePackage(ctx context.Context, tx pgx.Tx, pkg purl.PackageURL) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO package (package_uuid, type, namespace, name)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		ON CONFLICT (package_uuid) DO NOTHING
	`, pkg.PackageUUID(), pkg.Type, pkg.Namespace, pkg.Name)
	return err
}

// ensurePackageVersion inserts pkg's package and package_version rows if
// they aren't already known.
func ensurePackageVersion(ctx context.Context, tx pgx.Tx, pkg purl.PackageURL) error {
	if err := ensurePackage(ctx, tx, pkg); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO package_version (version_uuid, package_uuid, version)
		VALUES ($1, $2, $3)
		ON CONFLICT (version_uuid) DO NOTHING
	`, pkg.VersionUUID(), pkg.PackageUUID(), pkg.Version)
	return err
}

// AffectedPackageRange is one version range of pkg a vulnerability affects,
// in the (introduced, fixed-excluded) shape OSV and CSAF ranges share.
type AffectedPackageRange struct {
	RangeType     string
	Introduced    string
	FixedExcluded string
}

// IngestAffectedPackageRange records that vulnerabilityID affects pkg over
// rng, as reported by this advisory.
func (a *Advisory) IngestAffectedPackageRange(ctx context.Context, tx pgx.Tx, vulnerabilityID string, pkg purl.PackageURL, rng AffectedPackageRange) error {
	if err := ensurePackage(ctx, tx, pkg); err != nil {
		return fmt.Errorf("ensure package %s: %w", pkg.String(), err)
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO affected_package_version_range
			(advisory_uuid, vulnerability_id, package_uuid, range_type, introduced, fixed_excluded)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (advisory_uuid, vulnerability_id, package_uuid, range_type, introduced) DO UPDATE SET
			fixed_excluded = EXCLUDED.fixed_excluded
	`, a.UUID, vulnerabilityID, pkg.PackageUUID(), rng.RangeType, rng.Introduced, rng.FixedExcluded)
	return err
}

// IngestFixedPackageVersion records that vulnerabilityID is fixed as of
// pkg's exact version, as reported by this advisory.
func (a *Advisory) IngestFixedPackageVersion(ctx context.Context, tx pgx.Tx, vulnerabilityID string, pkg purl.PackageURL) error {
	if err := ensurePackageVersion(ctx, tx, pkg); err != nil {
		return fmt.Errorf("ensure package_version %s: %w", pkg.String(), err)
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO fixed_package_version (advisory_uuid, vulnerability_id, version_uuid)
		VALUES ($1, $2, $3)
		ON CONFLICT (advisory_uuid, vulnerability_id, version_uuid) DO NOTHING
	`, a.UUID, vulnerabilityID, pkg.VersionUUID())
	return err
}

// IngestNotAffectedPackageVersion records that vulnerabilityID does not
// affect pkg's exact version, as reported by this advisory.
func (a *Advisory) IngestNotAffectedPackageVersion(ctx context.Context, tx pgx.Tx, vulnerabilityID string, pkg purl.PackageURL) error {
	if err := ensurePackageVersion(ctx, tx, pkg); err != nil {
		return fmt.Errorf("ensure package_version %s: %w", pkg.String(), err)
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO not_affected_package_version (advisory_uuid, vulnerability_id, version_uuid)
		VALUES ($1, $2, $3)
		ON CONFLICT (advisory_uuid, vulnerability_id, version_uuid) DO NOTHING
	`, a.UUID, vulnerabilityID, pkg.VersionUUID())
	return err
}

// ProductInformation carries the mutable fields of a product row.
type ProductInformation struct {
	Vendor *string
}

// Product is a handle to a product registry row.
type Product struct {
	graph *Graph
	ID    uuid.UUID
}

// IngestProduct upserts a product by (vendor, name).
func (g *Graph) IngestProduct(ctx context.Context, tx pgx.Tx, name string, info ProductInformation) (*Product, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `
		INSERT INTO product (product_id, vendor, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (vendor, name) DO UPDATE SET vendor = COALESCE(product.vendor, EXCLUDED.vendor)
		RETURNING product_id
	`, uuid.New(), info.Vendor, name).Scan(&id)
	if err != nil {
		return nil, err
	}
	return &Product{graph: g, ID: id}, nil
}

// IngestProductVersion upserts a product version, optionally tying it to
// the SBOM it was discovered in.
func (p *Product) IngestProductVersion(ctx context.Context, tx pgx.Tx, version string, sbomID *uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO product_version (id, product_id, version, sbom_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, version) DO UPDATE SET sbom_id = COALESCE(product_version.sbom_id, EXCLUDED.sbom_id)
	`, uuid.New(), p.ID, version, sbomID)
	return err
}

// SbomInformation carries the descriptive fields of an SBOM row.
type SbomInformation struct {
	DocumentID string
	Name       string
	Published  *time.Time
	Authors    []string
}

// SbomContext is a handle bound to one SBOM's sbom_id, used by a loader to
// populate C3 creators against. It does not hold the transaction; the
// loader keeps the tx it passed to IngestSBOM.
type SbomContext struct {
	graph  *Graph
	SbomID uuid.UUID
}

// IngestSBOM creates the SBOM row and returns a context bound to its
// sbom_id. SBOMs are never upserted by digest: a re-ingested document
// always produces a new SBOM row, since SBOM-local nodes carry a sbom_id
// scoped to one run.
func (g *Graph) IngestSBOM(ctx context.Context, tx pgx.Tx, info SbomInformation, digests digest.Digests, sourceLabels map[string]string) (*SbomContext, error) {
	if sourceLabels == nil {
		sourceLabels = map[string]string{}
	}
	labelsJSON, err := json.Marshal(sourceLabels)
	if err != nil {
		return nil, fmt.Errorf("marshal source labels: %w", err)
	}
	sbomID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO sbom (sbom_id, document_id, name, published, authors, source_labels, sha256, sha384, sha512)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, sbomID, info.DocumentID, info.Name, info.Published, info.Authors, labelsJSON, digests.SHA256, digests.SHA384, digests.SHA512)
	if err != nil {
		return nil, err
	}
	return &SbomContext{graph: g, SbomID: sbomID}, nil
}
