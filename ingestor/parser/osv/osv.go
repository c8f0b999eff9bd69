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

// Package osv decodes OSV JSON vulnerability documents using the
// ossf/osv-schema Go bindings, the same library the teacher uses to load
// OSV records in enricher/vulnmatch/osvlocal.
package osv

import (
	"fmt"
	"io"
	"time"

	"github.com/ossf/osv-schema/bindings/go/osvschema"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// AffectedRange is one range entry of one affected package.
type AffectedRange struct {
	Type   string // "SEMVER", "ECOSYSTEM", "GIT"
	Events []RangeEvent
}

// RangeEvent is one introduced/fixed/last_affected/limit event.
type RangeEvent struct {
	Introduced   string
	Fixed        string
	LastAffected string
	Limit        string
}

// Affected is one affected-package entry.
type Affected struct {
	PackageName      string
	PackageEcosystem string
	PURL             string
	Ranges           []AffectedRange
	Versions         []string
}

// Reference is one reference entry.
type Reference struct {
	Type string
	URL  string
}

// Record is the fields trustify's OSV loader needs from an OSV document.
type Record struct {
	ID         string
	Summary    string
	Details    string
	Published  *time.Time
	Modified   *time.Time
	Withdrawn  *time.Time
	Aliases    []string
	Affected   []Affected
	CWEs       []string
	Severity   string // CVSS vector string, if any "CVSS_V3" or "CVSS_V4" severity entry is present
	References []Reference
}

// ParseError is returned for a structurally broken OSV document.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string { return fmt.Sprintf("osv: %s", e.Detail) }

// Parse decodes an OSV JSON document from r via the osvschema protojson
// binding.
func Parse(r io.Reader) (*Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Detail: fmt.Sprintf("read: %v", err)}
	}

	var vuln osvschema.Vulnerability
	if err := protojson.Unmarshal(raw, &vuln); err != nil {
		return nil, &ParseError{Detail: fmt.Sprintf("decode: %v", err)}
	}
	if vuln.ID == "" {
		return nil, &ParseError{Detail: "missing id"}
	}

	rec := &Record{
		ID:        vuln.ID,
		Summary:   vuln.Summary,
		Details:   vuln.Details,
		Published: timestampToTime(vuln.Published),
		Modified:  timestampToTime(vuln.Modified),
		Withdrawn: timestampToTime(vuln.Withdrawn),
		Aliases:   vuln.Aliases,
	}

	for _, sev := range vuln.Severity {
		if sev.Type == osvschema.Severity_CVSS_V3 || sev.Type == osvschema.Severity_CVSS_V4 {
			rec.Severity = sev.Score
			break
		}
	}

	for _, a := range vuln.Affected {
		affected := Affected{
			PackageName:      a.Package.Name,
			PackageEcosystem: a.Package.Ecosystem,
			PURL:             a.Package.Purl,
			Versions:         a.Versions,
		}
		for _, rg := range a.Ranges {
			var events []RangeEvent
			for _, e := range rg.Events {
				events = append(events, RangeEvent{
					Introduced:   e.Introduced,
					Fixed:        e.Fixed,
					LastAffected: e.LastAffected,
					Limit:        e.Limit,
				})
			}
			affected.Ranges = append(affected.Ranges, AffectedRange{Type: string(rg.Type), Events: events})
		}
		rec.Affected = append(rec.Affected, affected)
	}

	for _, ref := range vuln.References {
		rec.References = append(rec.References, Reference{Type: string(ref.Type), URL: ref.Url})
	}

	return rec, nil
}

// timestampToTime converts an osvschema timestamppb.Timestamp field into a
// *time.Time, nil when unset.
func timestampToTime(ts *timestamppb.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.AsTime()
	return &t
}
