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

package report_test

import (
	"testing"
	"time"

	"github.com/trustify/trustify/ingestor/parser/report"
)

func TestBuilderAccumulates(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := report.NewBuilder(start)

	b.Warnf("doc.spdx.json", "invalid license expression %q, replaced with NOASSERTION", "GPL-2.0+ WITH broken")
	b.Errorf("doc2.spdx.json", "missing document identifier")
	b.IncrementItems(2)

	if !b.HasErrors() {
		t.Fatalf("HasErrors() = false, want true")
	}

	end := start.Add(time.Minute)
	got := b.Build(end)

	if got.StartDate != start || got.EndDate != end {
		t.Fatalf("Build() dates = (%v, %v), want (%v, %v)", got.StartDate, got.EndDate, start, end)
	}
	if got.NumberOfItems != 2 {
		t.Fatalf("NumberOfItems = %d, want 2", got.NumberOfItems)
	}
	if len(got.Messages["warning"]) != 1 || len(got.Messages["error"]) != 1 {
		t.Fatalf("Messages = %+v, want one warning and one error", got.Messages)
	}
	if got.Messages["warning"][0].File != "doc.spdx.json" {
		t.Fatalf("warning file = %q", got.Messages["warning"][0].File)
	}
}

func TestBuilderNoErrors(t *testing.T) {
	b := report.NewBuilder(time.Now())
	b.Warnf("doc.json", "cosmetic repair")
	if b.HasErrors() {
		t.Fatalf("HasErrors() = true, want false")
	}
}
