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

	"github.com/trustify/trustify/common/purl"
	"github.com/trustify/trustify/ingestor/graph/creator"
)

func TestPurlCreatorDedupes(t *testing.T) {
	c := creator.NewPurlCreator()

	p1, err := purl.Parse("pkg:npm/leftpad@1.3.1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p2, err := purl.Parse("pkg:npm/leftpad@1.3.1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p3, err := purl.Parse("pkg:npm/leftpad@1.3.2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	c.Add(p1)
	c.Add(p2)
	c.Add(p3)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if len(c.QualifiedUUIDs()) != 2 {
		t.Fatalf("QualifiedUUIDs() len = %d, want 2", len(c.QualifiedUUIDs()))
	}
}
