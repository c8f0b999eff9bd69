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

package cve_test

import (
	"strings"
	"testing"

	"github.com/trustify/trustify/ingestor/parser/cve"
)

const publishedRecord = `{
  "cveMetadata": {
    "cveId": "CVE-2024-28111",
    "state": "PUBLISHED",
    "datePublished": "2024-03-08T00:00:00Z",
    "dateUpdated": "2024-03-08T00:00:00Z"
  },
  "containers": {
    "cna": {
      "title": "Canarytokens XSS",
      "dateAssigned": "2024-03-01T00:00:00Z",
      "descriptions": [
        {"lang": "en", "value": "Canarytokens helps track activity and actions on a network by alerting on usage of decoy resources within the system. A vulnerability has been found."}
      ],
      "problemTypes": [
        {"descriptions": [{"cweId": "CWE-79"}]}
      ]
    }
  }
}`

const rejectedRecord = `{
  "cveMetadata": {
    "cveId": "CVE-2024-99999",
    "state": "REJECTED",
    "dateRejected": "2024-04-01T00:00:00Z"
  },
  "containers": {
    "cna": {
      "rejectedReasons": [
        {"lang": "en", "value": "This record was withdrawn by its CNA."}
      ]
    }
  }
}`

func TestParsePublished(t *testing.T) {
	rec, err := cve.Parse(strings.NewReader(publishedRecord))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.ID != "CVE-2024-28111" {
		t.Fatalf("ID = %q", rec.ID)
	}
	if rec.Rejected {
		t.Fatalf("Rejected = true, want false")
	}
	if rec.CWE != "CWE-79" {
		t.Fatalf("CWE = %q, want CWE-79", rec.CWE)
	}
	desc := rec.EnglishDescription()
	if !strings.HasPrefix(desc, "Canarytokens helps track activity and actions on a network") {
		t.Fatalf("EnglishDescription = %q", desc)
	}
}

func TestParseRejected(t *testing.T) {
	rec, err := cve.Parse(strings.NewReader(rejectedRecord))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !rec.Rejected {
		t.Fatalf("Rejected = false, want true")
	}
	if rec.Withdrawn == nil {
		t.Fatalf("Withdrawn = nil, want set")
	}
	if len(rec.Descriptions) != 1 {
		t.Fatalf("Descriptions = %+v", rec.Descriptions)
	}
}

func TestParseMissingID(t *testing.T) {
	if _, err := cve.Parse(strings.NewReader(`{"cveMetadata":{}}`)); err == nil {
		t.Fatalf("Parse: expected error for missing cveId")
	}
}
