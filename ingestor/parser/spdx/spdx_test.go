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

package spdx_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/trustify/trustify/ingestor/parser/spdx"
)

const sampleDoc = `{
  "spdxVersion": "SPDX-2.3",
  "dataLicense": "CC0-1.0",
  "SPDXID": "SPDXRef-DOCUMENT",
  "name": "sample-sbom",
  "documentNamespace": "https://example.com/sample-sbom-1234",
  "creationInfo": {
    "created": "2026-01-01T00:00:00Z",
    "creators": ["Tool: trustify-test"]
  },
  "packages": [
    {
      "SPDXID": "SPDXRef-Package-curl",
      "name": "curl",
      "versionInfo": "7.50.3-1",
      "downloadLocation": "NOASSERTION",
      "licenseDeclared": "GPL-2.0+ WITH broken",
      "externalRefs": [
        {
          "referenceCategory": "PACKAGE-MANAGER",
          "referenceType": "purl",
          "referenceLocator": "pkg:deb/debian/curl@7.50.3-1?arch=i386&distro=jessie"
        }
      ]
    }
  ],
  "relationships": [
    {
      "spdxElementId": "SPDXRef-DOCUMENT",
      "relatedSpdxElement": "SPDXRef-Package-curl",
      "relationshipType": "DESCRIBES"
    }
  ]
}`

type sink struct {
	warnings []string
}

func (s *sink) Warnf(file, format string, args ...any) {
	s.warnings = append(s.warnings, file+": "+fmt.Sprintf(format, args...))
}
func (s *sink) Errorf(file, format string, args ...any) {}

func TestParseRepairsInvalidLicense(t *testing.T) {
	s := &sink{}
	doc, err := spdx.Parse(strings.NewReader(sampleDoc), s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Packages) != 1 {
		t.Fatalf("got %d packages, want 1", len(doc.Packages))
	}
	pkg := doc.Packages[0]
	if pkg.License != spdx.NoAssertion {
		t.Fatalf("License = %q, want %q", pkg.License, spdx.NoAssertion)
	}
	if !pkg.Changed {
		t.Fatalf("Changed = false, want true")
	}
	if len(s.warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(s.warnings), s.warnings)
	}
	if len(pkg.PURLs) != 1 || pkg.PURLs[0] != "pkg:deb/debian/curl@7.50.3-1?arch=i386&distro=jessie" {
		t.Fatalf("PURLs = %v", pkg.PURLs)
	}
	if len(doc.Relations) != 1 || doc.Relations[0].Type != "DESCRIBES" {
		t.Fatalf("Relations = %+v", doc.Relations)
	}
}

func TestParseMissingNamespace(t *testing.T) {
	if _, err := spdx.Parse(strings.NewReader(`{"SPDXID":"SPDXRef-DOCUMENT"}`), nil); err == nil {
		t.Fatalf("Parse: expected error for missing namespace")
	}
}
