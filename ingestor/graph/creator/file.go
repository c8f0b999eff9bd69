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

type sbomFile struct {
	nodeID string
	name   string
	sha256 string
}

// FileCreator buffers SbomFile nodes for one SBOM, deduped by node-id.
type FileCreator struct {
	sbomID uuid.UUID
	seen   stringset.Set
	files  []sbomFile
}

// NewFileCreator returns an empty FileCreator bound to sbomID.
func NewFileCreator(sbomID uuid.UUID) *FileCreator {
	return &FileCreator{sbomID: sbomID, seen: stringset.New()}
}

// Add buffers a file node. A duplicate node-id is ignored.
func (c *FileCreator) Add(nodeID, name, sha256 string) {
	if c.seen.Contains(nodeID) {
		return
	}
	c.seen.Add(nodeID)
	c.files = append(c.files, sbomFile{nodeID: nodeID, name: name, sha256: sha256})
}

// Len reports how many distinct file nodes are buffered.
func (c *FileCreator) Len() int { return len(c.files) }

// NodeIDs returns every buffered node-id, used as a relationship source set.
func (c *FileCreator) NodeIDs() stringset.Set {
	out := stringset.New()
	for _, f := range c.files {
		out.Add(f.nodeID)
	}
	return out
}

// Flush inserts one sbom_file row per buffered node.
func (c *FileCreator) Flush(ctx context.Context, tx pgx.Tx) error {
	for _, f := range c.files {
		var sha256 *string
		if f.sha256 != "" {
			sha256 = &f.sha256
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO sbom_file (sbom_id, node_id, name, sha256)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (sbom_id, node_id) DO NOTHING
		`, c.sbomID, f.nodeID, f.name, sha256); err != nil {
			return fmt.Errorf("insert sbom_file %s: %w", f.nodeID, err)
		}
	}
	return nil
}
