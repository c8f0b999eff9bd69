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

// Package cve decodes MITRE CVE Record JSON v5 documents (both the
// published and rejected container shapes) into the fields trustify's CVE
// loader needs. There is no maintained Go binding for the CVE 5 schema in
// the example corpus, so this package is built directly on encoding/json.
package cve

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Description is one language-tagged description string.
type Description struct {
	Language string
	Value    string
}

// ProblemType is one CWE classification entry.
type ProblemType struct {
	CWEID string
}

// Record is the fields trustify needs out of a CVE Record JSON v5 document,
// regardless of whether it is a published or rejected record.
type Record struct {
	ID string

	// Rejected is true for a REJECTED-state record; Withdrawn is then
	// set from cveMetadata.dateRejected.
	Rejected  bool
	Withdrawn *time.Time

	Title        string
	Published    *time.Time
	Modified     *time.Time
	Assigned     *time.Time
	Descriptions []Description
	CWE          string // first cwe_id found across problemTypes, "" if none
}

// ParseError is returned for a structurally broken CVE record: invalid
// JSON, or a record missing its CVE id.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string { return fmt.Sprintf("cve: %s", e.Detail) }

// cveRecordJSON mirrors the top-level shape of a CVE Record JSON v5
// document closely enough to extract trustify's fields without depending
// on the full schema.
type cveRecordJSON struct {
	CVEMetadata struct {
		CVEID          string     `json:"cveId"`
		State          string     `json:"state"`
		DatePublished  *time.Time `json:"datePublished"`
		DateUpdated    *time.Time `json:"dateUpdated"`
		DateReserved   *time.Time `json:"dateReserved"`
		DateRejected   *time.Time `json:"dateRejected"`
	} `json:"cveMetadata"`
	Containers struct {
		CNA struct {
			Title          string     `json:"title"`
			DateAssigned   *time.Time `json:"dateAssigned"`
			RejectedReasons []struct {
				Language string `json:"lang"`
				Value    string `json:"value"`
			} `json:"rejectedReasons"`
			Descriptions []struct {
				Language string `json:"lang"`
				Value    string `json:"value"`
			} `json:"descriptions"`
			ProblemTypes []struct {
				Descriptions []struct {
					CWEID string `json:"cweId"`
				} `json:"descriptions"`
			} `json:"problemTypes"`
		} `json:"cna"`
	} `json:"containers"`
}

// Parse decodes a CVE Record JSON v5 document from r.
func Parse(r io.Reader) (*Record, error) {
	var raw cveRecordJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &ParseError{Detail: fmt.Sprintf("decode: %v", err)}
	}
	if raw.CVEMetadata.CVEID == "" {
		return nil, &ParseError{Detail: "missing cveMetadata.cveId"}
	}

	rec := &Record{
		ID:        raw.CVEMetadata.CVEID,
		Published: raw.CVEMetadata.DatePublished,
		Modified:  raw.CVEMetadata.DateUpdated,
	}

	if raw.CVEMetadata.State == "REJECTED" {
		rec.Rejected = true
		rec.Withdrawn = raw.CVEMetadata.DateRejected
		for _, d := range raw.Containers.CNA.RejectedReasons {
			rec.Descriptions = append(rec.Descriptions, Description{Language: d.Language, Value: d.Value})
		}
		return rec, nil
	}

	rec.Title = raw.Containers.CNA.Title
	rec.Assigned = raw.Containers.CNA.DateAssigned
	for _, d := range raw.Containers.CNA.Descriptions {
		rec.Descriptions = append(rec.Descriptions, Description{Language: d.Language, Value: d.Value})
	}
	for _, pt := range raw.Containers.CNA.ProblemTypes {
		for _, d := range pt.Descriptions {
			if d.CWEID != "" {
				rec.CWE = d.CWEID
				break
			}
		}
		if rec.CWE != "" {
			break
		}
	}
	return rec, nil
}

// EnglishDescription returns the first "en"-tagged description, or "" if
// none is present.
func (r *Record) EnglishDescription() string {
	for _, d := range r.Descriptions {
		if d.Language == "en" {
			return d.Value
		}
	}
	return ""
}
