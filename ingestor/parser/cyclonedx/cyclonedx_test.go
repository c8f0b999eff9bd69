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

package cyclonedx_test

import (
	"strings"
	"testing"

	"github.com/trustify/trustify/ingestor/parser/cyclonedx"
)

const sampleDoc = `{
  "bomFormat": "CycloneDX",
  "specVersion": "1.5",
  "serialNumber": "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79",
  "version": 1,
  "metadata": {
    "component": {
      "type": "application",
      "bom-ref": "root-app",
      "name": "demo-app",
      "version": "1.0.0"
    }
  },
  "components": [
    {
      "type": "library",
      "name": "leftpad",
      "version": "1.3.0",
      "purl": "pkg:npm/leftpad@1.3.0"
    },
    {
      "type": "library",
      "name": "no-ref-component",
      "version": "2.0.0"
    }
  ]
}`

type sink struct{ warnings int }

func (s *sink) Warnf(file, format string, args ...any) { s.warnings++ }
func (s *sink) Errorf(file, format string, args ...any) {}

func TestParse(t *testing.T) {
	s := &sink{}
	doc, err := cyclonedx.Parse(strings.NewReader(sampleDoc), s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.RootRef != "root-app" {
		t.Fatalf("RootRef = %q, want %q", doc.RootRef, "root-app")
	}
	if len(doc.Components) != 3 { // root + 2
		t.Fatalf("got %d components, want 3: %+v", len(doc.Components), doc.Components)
	}

	var withPurl, synthetic *cyclonedx.Component
	for i := range doc.Components {
		c := &doc.Components[i]
		switch c.Name {
		case "leftpad":
			withPurl = c
		case "no-ref-component":
			synthetic = c
		}
	}
	if withPurl == nil || withPurl.PURL != "pkg:npm/leftpad@1.3.0" {
		t.Fatalf("leftpad component missing or wrong purl: %+v", withPurl)
	}
	if synthetic == nil || synthetic.BOMRef == "" {
		t.Fatalf("no-ref-component missing synthetic BOMRef: %+v", synthetic)
	}
	if s.warnings != 2 { // leftpad and no-ref-component both lack a bom-ref
		t.Fatalf("warnings = %d, want 2", s.warnings)
	}
}
