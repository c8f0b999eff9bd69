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

	"github.com/trustify/trustify/common/cpe"
)

// CpeCreator buffers Cpe rows, deduped by cpe_uuid.
type CpeCreator struct {
	seen stringset.Set
	cpes []cpe.Cpe
}

// NewCpeCreator returns an empty CpeCreator.
func NewCpeCreator() *CpeCreator {
	return &CpeCreator{seen: stringset.New()}
}

// Add buffers c if its derived UUID hasn't been seen yet.
func (a *CpeCreator) Add(c cpe.Cpe) {
	key := c.UUID().String()
	if a.seen.Contains(key) {
		return
	}
	a.seen.Add(key)
	a.cpes = append(a.cpes, c)
}

// Len reports how many distinct CPEs are buffered.
func (a *CpeCreator) Len() int { return len(a.cpes) }

// Flush inserts one row per buffered CPE, ignoring conflicts on cpe_uuid.
func (a *CpeCreator) Flush(ctx context.Context, tx pgx.Tx) error {
	for _, c := range a.cpes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO cpe (cpe_uuid, part, vendor, product, version, update_, edition, language, sw_edition, target_sw, target_hw, other)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (cpe_uuid) DO NOTHING
		`, c.UUID(), c.Part, c.Vendor, c.Product, c.Version, c.Update, c.Edition, c.Language, c.SWEdition, c.TargetSW, c.TargetHW, c.Other); err != nil {
			return fmt.Errorf("insert cpe %s: %w", c.String(), err)
		}
	}
	return nil
}

// UUIDs returns the derived UUID of every buffered CPE.
func (a *CpeCreator) UUIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(a.cpes))
	for _, c := range a.cpes {
		out = append(out, c.UUID())
	}
	return out
}
