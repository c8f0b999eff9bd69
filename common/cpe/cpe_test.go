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

package cpe_test

import (
	"testing"

	"github.com/trustify/trustify/common/cpe"
)

func TestParseFormattedString(t *testing.T) {
	got, err := cpe.Parse("cpe:2.3:a:redhat:openssl:1.1.1:*:*:*:*:*:*:*")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := cpe.Cpe{Part: "a", Vendor: "redhat", Product: "openssl", Version: "1.1.1"}
	if got != want {
		t.Fatalf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseURI(t *testing.T) {
	got, err := cpe.Parse("cpe:/a:redhat:openssl:1.1.1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := cpe.Cpe{Part: "a", Vendor: "redhat", Product: "openssl", Version: "1.1.1"}
	if got != want {
		t.Fatalf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []string{
		"not-a-cpe",
		"cpe:2.3:a:redhat:openssl", // too few fields
	}
	for _, s := range tests {
		if _, err := cpe.Parse(s); err == nil {
			t.Fatalf("Parse(%q): expected error, got nil", s)
		}
	}
}

// TestURIAndFormattedStringAgree covers a cross-form identity invariant:
// the same logical CPE spelled in 2.2 URI form and 2.3 formatted-string
// form must derive the same UUID.
func TestURIAndFormattedStringAgree(t *testing.T) {
	uri, err := cpe.Parse("cpe:/a:redhat:openssl:1.1.1")
	if err != nil {
		t.Fatal(err)
	}
	formatted, err := cpe.Parse("cpe:2.3:a:redhat:openssl:1.1.1:*:*:*:*:*:*:*")
	if err != nil {
		t.Fatal(err)
	}
	if uri.UUID() != formatted.UUID() {
		t.Fatalf("UUID mismatch between URI and formatted-string forms: %v != %v", uri.UUID(), formatted.UUID())
	}
}

func TestUUIDDeterminism(t *testing.T) {
	c, err := cpe.Parse("cpe:2.3:a:redhat:openssl:1.1.1:*:*:*:*:*:*:*")
	if err != nil {
		t.Fatal(err)
	}
	if c.UUID() != c.UUID() {
		t.Fatalf("UUID() is not deterministic across calls")
	}

	other, err := cpe.Parse("cpe:2.3:a:redhat:openssl:1.1.2:*:*:*:*:*:*:*")
	if err != nil {
		t.Fatal(err)
	}
	if c.UUID() == other.UUID() {
		t.Fatalf("distinct versions must derive distinct UUIDs")
	}
}

func TestStringRoundTrip(t *testing.T) {
	s := "cpe:2.3:a:redhat:openssl:1.1.1:*:*:*:*:*:*:*"
	c, err := cpe.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.String(); got != s {
		t.Fatalf("round trip mismatch: got %q, want %q", got, s)
	}
}
