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
	"errors"
	"fmt"

	"bitbucket.org/creachadair/stringset"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Kind is one of the closed set of internal relationship kinds. Every
// internal edge points from a dependent/child to its parent regardless of
// which source-format direction it was expressed in.
type Kind string

const (
	DescribedBy          Kind = "DescribedBy"
	ContainedBy          Kind = "ContainedBy"
	DependencyOf         Kind = "DependencyOf"
	DevDependencyOf      Kind = "DevDependencyOf"
	OptionalDependencyOf Kind = "OptionalDependencyOf"
	ProvidedDependencyOf Kind = "ProvidedDependencyOf"
	TestDependencyOf     Kind = "TestDependencyOf"
	RuntimeDependencyOf  Kind = "RuntimeDependencyOf"
	ExampleOf            Kind = "ExampleOf"
	GeneratedFrom        Kind = "GeneratedFrom"
	AncestorOf           Kind = "AncestorOf"
	VariantOf            Kind = "VariantOf"
	BuildToolOf          Kind = "BuildToolOf"
	DevToolOf            Kind = "DevToolOf"
)

// ErrInvalidReference is returned by Validate when a buffered relationship
// references a node-id absent from every supplied source.
var ErrInvalidReference = errors.New("relationship references unknown node")

type relationship struct {
	left  string
	kind  Kind
	right string
}

// RelationshipCreator accumulates (left, kind, right) edges for one SBOM.
type RelationshipCreator struct {
	sbomID        uuid.UUID
	relationships []relationship
}

// NewRelationshipCreator returns an empty RelationshipCreator bound to sbomID.
func NewRelationshipCreator(sbomID uuid.UUID) *RelationshipCreator {
	return &RelationshipCreator{sbomID: sbomID}
}

// Add buffers an already-normalized edge.
func (c *RelationshipCreator) Add(left string, kind Kind, right string) {
	c.relationships = append(c.relationships, relationship{left: left, kind: kind, right: right})
}

// Len reports how many edges are buffered.
func (c *RelationshipCreator) Len() int { return len(c.relationships) }

// Validate requires every node-id referenced on either side of every
// buffered edge to appear in at least one of sources (typically the
// document root id plus the PackageCreator and FileCreator node-id sets).
func (c *RelationshipCreator) Validate(sources ...stringset.Set) error {
	known := stringset.New()
	for _, s := range sources {
		known = known.Union(s)
	}
	for _, r := range c.relationships {
		if !known.Contains(r.left) {
			return fmt.Errorf("%w: %s", ErrInvalidReference, r.left)
		}
		if !known.Contains(r.right) {
			return fmt.Errorf("%w: %s", ErrInvalidReference, r.right)
		}
	}
	return nil
}

// Flush inserts one sbom_relationship row per buffered edge.
func (c *RelationshipCreator) Flush(ctx context.Context, tx pgx.Tx) error {
	for _, r := range c.relationships {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sbom_relationship (sbom_id, left_node_id, kind, right_node_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (sbom_id, left_node_id, kind, right_node_id) DO NOTHING
		`, c.sbomID, r.left, string(r.kind), r.right); err != nil {
			return fmt.Errorf("insert sbom_relationship %s %s %s: %w", r.left, r.kind, r.right, err)
		}
	}
	return nil
}
