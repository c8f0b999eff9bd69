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

package csaf_test

import (
	"strings"
	"testing"

	"github.com/trustify/trustify/ingestor/parser/csaf"
)

const sampleDoc = `{
  "document": {
    "category": "csaf_vex",
    "title": "Example VEX Advisory",
    "publisher": {"category": "vendor", "name": "Example Vendor", "namespace": "https://example.com"},
    "tracking": {
      "id": "EXAMPLE-2024-0001",
      "status": "final",
      "version": "1",
      "initial_release_date": "2024-01-01T00:00:00Z",
      "current_release_date": "2024-01-02T00:00:00Z"
    },
    "csaf_version": "2.0"
  },
  "vulnerabilities": [
    {
      "cve": "CVE-2024-00001",
      "title": "Example component vulnerability",
      "notes": [
        {"category": "description", "text": "An example vulnerability description."}
      ]
    }
  ]
}`

func TestParse(t *testing.T) {
	doc, err := csaf.Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.ID != "EXAMPLE-2024-0001" {
		t.Fatalf("ID = %q", doc.ID)
	}
	if doc.Publisher != "Example Vendor" {
		t.Fatalf("Publisher = %q", doc.Publisher)
	}
	if len(doc.Vulnerabilities) != 1 || doc.Vulnerabilities[0].CVE != "CVE-2024-00001" {
		t.Fatalf("Vulnerabilities = %+v", doc.Vulnerabilities)
	}
	if doc.Vulnerabilities[0].Note != "An example vulnerability description." {
		t.Fatalf("Note = %q", doc.Vulnerabilities[0].Note)
	}
}

func TestParseMissingID(t *testing.T) {
	if _, err := csaf.Parse(strings.NewReader(`{"document":{"tracking":{}}}`)); err == nil {
		t.Fatalf("Parse: expected error for missing tracking id")
	}
}
