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

package model

import (
	"testing"
	"time"
)

func TestConfigurationCommon(t *testing.T) {
	common := CommonImporter{Disabled: true, Period: 5 * time.Minute}

	tests := []struct {
		name string
		cfg  Configuration
		want CommonImporter
	}{
		{"sbom", Configuration{Kind: KindSbom, Sbom: &SbomImporter{CommonImporter: common, Source: "https://example.com/sbom"}}, common},
		{"csaf", Configuration{Kind: KindCSAF, CSAF: &SbomImporter{CommonImporter: common, Source: "https://example.com/csaf"}}, common},
		{"cve", Configuration{Kind: KindCVE, CVE: &SbomImporter{CommonImporter: common, Source: "https://example.com/cve"}}, common},
		{"osv", Configuration{Kind: KindOSV, OSV: &SbomImporter{CommonImporter: common, Source: "https://example.com/osv"}}, common},
		{"zero value", Configuration{}, CommonImporter{}},
		{"kind set, variant nil", Configuration{Kind: KindSbom}, CommonImporter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Common(); got != tt.want {
				t.Errorf("Common() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRevisionedValue(t *testing.T) {
	r := Revisioned[Importer]{Value: Importer{Name: "central-sbom"}}
	if r.Value.Name != "central-sbom" {
		t.Errorf("Value.Name = %q, want %q", r.Value.Name, "central-sbom")
	}
}
