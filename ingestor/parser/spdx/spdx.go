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

// Package spdx decodes SPDX 2.2/2.3 JSON SBOM documents into the shape
// trustify's loaders consume, repairing non-conformant license expressions
// along the way.
package spdx

import (
	"fmt"
	"io"

	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx"

	"github.com/trustify/trustify/ingestor/parser/report"
)

// Package is one SPDX package entry, trimmed to the fields trustify's graph
// assembly needs.
type Package struct {
	ElementID  string
	Name       string
	Version    string
	PURLs      []string
	CPEs       []string
	License    string
	Changed    bool // true if License was rewritten from a malformed expression
	Comment    string
}

// File is one SPDX file entry.
type File struct {
	ElementID string
	Name      string
	Checksums map[string]string // algorithm name (upper case) -> hex digest
}

// Relationship is one SPDX relationship entry, element ids unresolved.
type Relationship struct {
	Left  string
	Right string
	Type  string
}

// Document is the parsed, repaired SPDX document.
type Document struct {
	// DocumentID is the document's own SPDX element id (e.g.
	// "SPDXRef-DOCUMENT"), the left-hand side every DESCRIBES relationship
	// references.
	DocumentID string
	Name       string
	Namespace  string
	Packages   []Package
	Files      []File
	Relations  []Relationship
}

// ParseError is returned for a structurally broken document: invalid JSON,
// an empty document, or a document missing its namespace.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string { return fmt.Sprintf("spdx: %s", e.Detail) }

// Parse decodes an SPDX JSON document from r, validating each package's
// license expression and substituting NOASSERTION (with a warning on sink)
// for any that fail to parse.
func Parse(r io.Reader, sink report.Sink) (*Document, error) {
	doc, err := spdxjson.Read(r)
	if err != nil {
		return nil, &ParseError{Detail: fmt.Sprintf("decode: %v", err)}
	}
	if doc == nil {
		return nil, &ParseError{Detail: "empty document"}
	}
	if doc.DocumentNamespace == "" {
		return nil, &ParseError{Detail: "missing document namespace"}
	}

	out := &Document{
		DocumentID: string(doc.SPDXIdentifier),
		Name:       doc.DocumentName,
		Namespace:  doc.DocumentNamespace,
	}

	for _, pkg := range doc.Packages {
		if pkg == nil {
			continue
		}
		out.Packages = append(out.Packages, convertPackage(pkg, sink))
	}
	for _, f := range doc.Files {
		if f == nil {
			continue
		}
		out.Files = append(out.Files, convertFile(f))
	}
	for _, rel := range doc.Relationships {
		if rel == nil {
			continue
		}
		out.Relations = append(out.Relations, Relationship{
			Left:  elementRefString(rel.RefA),
			Right: elementRefString(rel.RefB),
			Type:  rel.Relationship,
		})
	}
	return out, nil
}

func convertPackage(pkg *spdx.Package, sink report.Sink) Package {
	p := Package{
		ElementID: string(pkg.PackageSPDXIdentifier),
		Name:      pkg.PackageName,
		Version:   pkg.PackageVersion,
		License:   pkg.PackageLicenseDeclared,
	}
	for _, ref := range pkg.PackageExternalReferences {
		if ref == nil {
			continue
		}
		switch ref.RefType {
		case "purl", "http://spdx.org/rdf/references/purl":
			p.PURLs = append(p.PURLs, ref.Locator)
		case "cpe23Type", "http://spdx.org/rdf/references/cpe23Type",
			"cpe22Type", "http://spdx.org/rdf/references/cpe22Type":
			p.CPEs = append(p.CPEs, ref.Locator)
		}
	}

	if p.License != "" && !validLicenseExpression(p.License) {
		original := p.License
		p.License = NoAssertion
		p.Changed = true
		if sink != nil {
			sink.Warnf(p.Name, "invalid SPDX license expression %q, replaced with %s", original, NoAssertion)
		}
	}
	return p
}

func convertFile(f *spdx.File) File {
	out := File{
		ElementID: string(f.FileSPDXIdentifier),
		Name:      f.FileName,
		Checksums: make(map[string]string, len(f.Checksums)),
	}
	for _, c := range f.Checksums {
		out.Checksums[string(c.Algorithm)] = c.Value
	}
	return out
}

func elementRefString(id spdx.DocElementID) string {
	if id.DocumentRefID != "" {
		return id.DocumentRefID + ":" + string(id.ElementRefID)
	}
	return string(id.ElementRefID)
}
