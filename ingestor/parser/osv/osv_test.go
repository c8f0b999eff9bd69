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

package osv_test

import (
	"strings"
	"testing"

	"github.com/trustify/trustify/ingestor/parser/osv"
)

const sampleDoc = `{
  "id": "GHSA-xxxx-yyyy-zzzz",
  "summary": "Example vulnerability",
  "details": "A detailed description.",
  "published": "2024-01-01T00:00:00Z",
  "aliases": ["CVE-2024-00000"],
  "affected": [
    {
      "package": {"name": "leftpad", "ecosystem": "npm", "purl": "pkg:npm/leftpad"},
      "ranges": [
        {"type": "SEMVER", "events": [{"introduced": "0"}, {"fixed": "1.3.1"}]}
      ]
    }
  ],
  "references": [
    {"type": "ADVISORY", "url": "https://example.com/advisory"}
  ],
  "database_specific": {"cwe_ids": ["CWE-79"]}
}`

func TestParse(t *testing.T) {
	rec, err := osv.Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.ID != "GHSA-xxxx-yyyy-zzzz" {
		t.Fatalf("ID = %q", rec.ID)
	}
	if len(rec.Aliases) != 1 || rec.Aliases[0] != "CVE-2024-00000" {
		t.Fatalf("Aliases = %v", rec.Aliases)
	}
	if len(rec.Affected) != 1 {
		t.Fatalf("Affected = %+v", rec.Affected)
	}
	a := rec.Affected[0]
	if a.PURL != "pkg:npm/leftpad" || len(a.Ranges) != 1 || len(a.Ranges[0].Events) != 2 {
		t.Fatalf("Affected[0] = %+v", a)
	}
	if a.Ranges[0].Events[1].Fixed != "1.3.1" {
		t.Fatalf("fixed event = %+v", a.Ranges[0].Events[1])
	}
}

func TestParseMissingID(t *testing.T) {
	if _, err := osv.Parse(strings.NewReader(`{}`)); err == nil {
		t.Fatalf("Parse: expected error for missing id")
	}
}
