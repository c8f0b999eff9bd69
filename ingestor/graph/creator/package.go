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

package creator

import (
	"context"
	"fmt"

	"bitbucket.org/creachadair/stringset"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type sbomPackage struct {
	nodeID     string
	name       string
	version    string
	references []PackageReference
}

// PackageCreator buffers SbomPackage nodes for one SBOM, deduped by
// (sbom_id, node_id) since the sbom_id is fixed for the creator's lifetime.
type PackageCreator struct {
	sbomID   uuid.UUID
	seen     stringset.Set
	packages []sbomPackage
}

// NewPackageCreator returns an empty PackageCreator bound to sbomID.
func NewPackageCreator(sbomID uuid.UUID) *PackageCreator {
	return &PackageCreator{sbomID: sbomID, seen: stringset.New()}
}

// Add buffers a node, attaching zero or more PackageReferences to the
// global package graph. A duplicate node-id is ignored.
func (c *PackageCreator) Add(nodeID, name, version string, refs ...PackageReference) {
	if c.seen.Contains(nodeID) {
		return
	}
	c.seen.Add(nodeID)
	c.packages = append(c.packages, sbomPackage{nodeID: nodeID, name: name, version: version, references: refs})
}

// Len reports how many distinct nodes are buffered.
func (c *PackageCreator) Len() int { return len(c.packages) }

// NodeIDs returns every buffered node-id, used as a relationship source set.
func (c *PackageCreator) NodeIDs() stringset.Set {
	out := stringset.New()
	for _, p := range c.packages {
		out.Add(p.nodeID)
	}
	return out
}

// Flush inserts one sbom_package row per buffered node. A node with
// multiple references keeps the first purl reference and the first CPE
// reference it carries.
func (c *PackageCreator) Flush(ctx context.Context, tx pgx.Tx) error {
	for _, p := range c.packages {
		var qualifiedUUID, cpeUUID *uuid.UUID
		for _, ref := range p.references {
			switch ref.Kind {
			case ReferencePurl:
				if qualifiedUUID == nil {
					u := ref.UUID
					qualifiedUUID = &u
				}
			case ReferenceCpe:
				if cpeUUID == nil {
					u := ref.UUID
					cpeUUID = &u
				}
			}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO sbom_package (sbom_id, node_id, name, version, qualified_uuid, cpe_uuid)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (sbom_id, node_id) DO NOTHING
		`, c.sbomID, p.nodeID, p.name, p.version, qualifiedUUID, cpeUUID); err != nil {
			return fmt.Errorf("insert sbom_package %s: %w", p.nodeID, err)
		}
	}
	return nil
}
