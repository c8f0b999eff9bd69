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

package creator_test

import (
	"errors"
	"testing"

	"bitbucket.org/creachadair/stringset"
	"github.com/google/uuid"

	"github.com/trustify/trustify/ingestor/graph/creator"
)

func TestRelationshipCreatorValidate(t *testing.T) {
	c := creator.NewRelationshipCreator(uuid.New())
	c.Add("SPDXRef-DOCUMENT", creator.DescribedBy, "SPDXRef-root")
	c.Add("SPDXRef-leaf", creator.ContainedBy, "SPDXRef-root")

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	sources := stringset.New("SPDXRef-DOCUMENT", "SPDXRef-root", "SPDXRef-leaf")
	if err := c.Validate(sources); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestRelationshipCreatorValidateRejectsUnknownNode(t *testing.T) {
	c := creator.NewRelationshipCreator(uuid.New())
	c.Add("SPDXRef-leaf", creator.ContainedBy, "SPDXRef-missing")

	sources := stringset.New("SPDXRef-leaf")
	err := c.Validate(sources)
	if !errors.Is(err, creator.ErrInvalidReference) {
		t.Fatalf("Validate() = %v, want ErrInvalidReference", err)
	}
}
