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

// Package cyclonedx decodes CycloneDX 1.4/1.5 JSON SBOM documents into the
// shape trustify's loaders consume.
package cyclonedx

import (
	"fmt"
	"io"
	"strconv"

	"github.com/CycloneDX/cyclonedx-go"

	"github.com/trustify/trustify/ingestor/parser/report"
)

// Component is one CycloneDX component, flattened out of the nested
// components tree CycloneDX allows.
type Component struct {
	BOMRef  string
	Name    string
	Version string
	PURL    string
	CPE     string
	// Parent is the BOMRef of the component that nested this one. Top-level
	// components are parented to the document's metadata.component when
	// present and have Parent "" otherwise; metadata.component itself always
	// has Parent "".
	Parent string
}

// Document is the parsed CycloneDX document.
type Document struct {
	SerialNumber string
	RootRef      string // BOMRef of metadata.component, if any
	Components   []Component
}

// ParseError is returned for a structurally broken document.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string { return fmt.Sprintf("cyclonedx: %s", e.Detail) }

// Parse decodes a CycloneDX JSON document from r. Components missing a
// BOMRef are assigned a synthetic one derived from their purl, or failing
// that a document-local index, so every component is addressable by a
// relationship.
func Parse(r io.Reader, sink report.Sink) (*Document, error) {
	var bom cyclonedx.BOM
	if err := cyclonedx.NewBOMDecoder(r, cyclonedx.BOMFileFormatJSON).Decode(&bom); err != nil {
		return nil, &ParseError{Detail: fmt.Sprintf("decode: %v", err)}
	}

	out := &Document{SerialNumber: bom.SerialNumber}
	synthetic := 0

	var walk func(comps []cyclonedx.Component, parent string)
	walk = func(comps []cyclonedx.Component, parent string) {
		for _, c := range comps {
			ref := c.BOMRef
			if ref == "" {
				if c.PackageURL != "" {
					ref = "synthetic:purl:" + c.PackageURL
				} else {
					ref = "synthetic:index:" + strconv.Itoa(synthetic)
					synthetic++
				}
				if sink != nil {
					sink.Warnf(c.Name, "component missing bom-ref, assigned synthetic id %q", ref)
				}
			}
			out.Components = append(out.Components, Component{
				BOMRef:  ref,
				Name:    c.Name,
				Version: c.Version,
				PURL:    c.PackageURL,
				CPE:     c.CPE,
				Parent:  parent,
			})
			if c.Components != nil {
				walk(*c.Components, ref)
			}
		}
	}

	if bom.Metadata != nil && bom.Metadata.Component != nil {
		root := *bom.Metadata.Component
		ref := root.BOMRef
		if ref == "" {
			ref = "synthetic:root"
		}
		out.RootRef = ref
		out.Components = append(out.Components, Component{
			BOMRef:  ref,
			Name:    root.Name,
			Version: root.Version,
			PURL:    root.PackageURL,
			CPE:     root.CPE,
		})
		if root.Components != nil {
			walk(*root.Components, ref)
		}
	}

	if bom.Components != nil {
		walk(*bom.Components, out.RootRef)
	}

	return out, nil
}
