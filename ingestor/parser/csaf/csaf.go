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

// Package csaf decodes CSAF 2.0 JSON advisory documents using
// github.com/gocsaf/csaf/v3's generated schema types.
package csaf

import (
	"encoding/json"
	"fmt"
	"io"

	gocsaf "github.com/gocsaf/csaf/v3/csaf"
)

// Vulnerability is one vulnerabilities[] entry trustify's CSAF loader
// cares about.
type Vulnerability struct {
	CVE   string
	Title string
	Note  string // first "description"-category note, if any
}

// Document is the fields trustify's CSAF loader needs out of a CSAF 2.0
// advisory.
type Document struct {
	ID              string
	Title           string
	Publisher       string
	InitialRelease  string
	CurrentRelease  string
	Vulnerabilities []Vulnerability
}

// ParseError is returned for a structurally broken CSAF document.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string { return fmt.Sprintf("csaf: %s", e.Detail) }

// Parse decodes a CSAF 2.0 JSON document from r.
func Parse(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Detail: fmt.Sprintf("read: %v", err)}
	}

	var adv gocsaf.Advisory
	if err := json.Unmarshal(raw, &adv); err != nil {
		return nil, &ParseError{Detail: fmt.Sprintf("decode: %v", err)}
	}
	if adv.Document == nil || adv.Document.Tracking == nil || adv.Document.Tracking.ID == nil {
		return nil, &ParseError{Detail: "missing document.tracking.id"}
	}

	doc := &Document{ID: string(*adv.Document.Tracking.ID)}
	if adv.Document.Title != nil {
		doc.Title = string(*adv.Document.Title)
	}
	if adv.Document.Publisher != nil && adv.Document.Publisher.Name != nil {
		doc.Publisher = string(*adv.Document.Publisher.Name)
	}
	if adv.Document.Tracking.InitialReleaseDate != nil {
		doc.InitialRelease = string(*adv.Document.Tracking.InitialReleaseDate)
	}
	if adv.Document.Tracking.CurrentReleaseDate != nil {
		doc.CurrentRelease = string(*adv.Document.Tracking.CurrentReleaseDate)
	}

	for _, v := range adv.Vulnerabilities {
		if v == nil {
			continue
		}
		vuln := Vulnerability{}
		if v.CVE != nil {
			vuln.CVE = string(*v.CVE)
		}
		if v.Title != nil {
			vuln.Title = string(*v.Title)
		}
		for _, n := range v.Notes {
			if n == nil || n.Category == nil {
				continue
			}
			if string(*n.Category) == "description" && n.Text != nil {
				vuln.Note = string(*n.Text)
				break
			}
		}
		doc.Vulnerabilities = append(doc.Vulnerabilities, vuln)
	}

	return doc, nil
}
