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
	"testing"

	"github.com/google/uuid"

	"github.com/trustify/trustify/ingestor/graph/creator"
)

func TestPackageCreatorDedupesByNodeID(t *testing.T) {
	c := creator.NewPackageCreator(uuid.New())

	c.Add("SPDXRef-leftpad", "leftpad", "1.3.1", creator.PurlReference(uuid.New()))
	c.Add("SPDXRef-leftpad", "leftpad", "1.3.1", creator.CpeReference(uuid.New()))
	c.Add("SPDXRef-other", "other", "2.0.0")

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	ids := c.NodeIDs()
	if !ids.Contains("SPDXRef-leftpad") || !ids.Contains("SPDXRef-other") {
		t.Fatalf("NodeIDs() = %v, want both SPDXRef-leftpad and SPDXRef-other", ids)
	}
}

func TestFileCreatorDedupesByNodeID(t *testing.T) {
	c := creator.NewFileCreator(uuid.New())

	c.Add("SPDXRef-file-a", "a.txt", "deadbeef")
	c.Add("SPDXRef-file-a", "a.txt", "deadbeef")
	c.Add("SPDXRef-file-b", "b.txt", "cafef00d")

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	ids := c.NodeIDs()
	if !ids.Contains("SPDXRef-file-a") || !ids.Contains("SPDXRef-file-b") {
		t.Fatalf("NodeIDs() = %v, want both file node-ids", ids)
	}
}
