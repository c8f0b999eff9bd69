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

// Package creator holds the batch accumulators that buffer an ingestion
// run's rows in memory and flush them in one transaction, deduplicated by
// their content-addressed identifiers.
package creator

import (
	"context"
	"encoding/json"
	"fmt"

	"bitbucket.org/creachadair/stringset"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trustify/trustify/common/purl"
)

// PurlCreator buffers Package, PackageVersion and QualifiedPackage rows
// discovered while walking one document, deduped by qualified_uuid so a
// purl seen twice in one SBOM contributes a single row triple.
type PurlCreator struct {
	seen  stringset.Set
	purls []purl.PackageURL
}

// NewPurlCreator returns an empty PurlCreator.
func NewPurlCreator() *PurlCreator {
	return &PurlCreator{seen: stringset.New()}
}

// Add buffers p if its qualified_uuid hasn't been seen yet.
func (c *PurlCreator) Add(p purl.PackageURL) {
	_, _, qualified := p.UUIDs()
	key := qualified.String()
	if c.seen.Contains(key) {
		return
	}
	c.seen.Add(key)
	c.purls = append(c.purls, p)
}

// Len reports how many distinct purls are buffered.
func (c *PurlCreator) Len() int { return len(c.purls) }

// Flush inserts Package, then PackageVersion, then QualifiedPackage rows
// for every buffered purl, each insert ignoring conflicts on its identity
// key so re-ingesting an already-known purl is a no-op.
func (c *PurlCreator) Flush(ctx context.Context, tx pgx.Tx) error {
	for _, p := range c.purls {
		pkgUUID, versionUUID, qualifiedUUID := p.UUIDs()

		if _, err := tx.Exec(ctx, `
			INSERT INTO package (package_uuid, type, namespace, name)
			VALUES ($1, $2, NULLIF($3, ''), $4)
			ON CONFLICT (package_uuid) DO NOTHING
		`, pkgUUID, p.Type, p.Namespace, p.Name); err != nil {
			return fmt.Errorf("insert package %s: %w", p.String(), err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO package_version (version_uuid, package_uuid, version)
			VALUES ($1, $2, $3)
			ON CONFLICT (version_uuid) DO NOTHING
		`, versionUUID, pkgUUID, p.Version); err != nil {
			return fmt.Errorf("insert package_version %s: %w", p.String(), err)
		}

		qualifiers, err := json.Marshal(p.Qualifiers.Sorted().Map())
		if err != nil {
			return fmt.Errorf("marshal qualifiers for %s: %w", p.String(), err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO qualified_package (qualified_uuid, version_uuid, qualifiers)
			VALUES ($1, $2, $3)
			ON CONFLICT (qualified_uuid) DO NOTHING
		`, qualifiedUUID, versionUUID, qualifiers); err != nil {
			return fmt.Errorf("insert qualified_package %s: %w", p.String(), err)
		}
	}
	return nil
}

// QualifiedUUIDs returns the qualified_uuid of every buffered purl, for
// callers that need to attach PackageReferences after flush.
func (c *PurlCreator) QualifiedUUIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(c.purls))
	for _, p := range c.purls {
		_, _, qualified := p.UUIDs()
		out = append(out, qualified)
	}
	return out
}
