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

// Package model holds the importer control-loop's data types: the
// tagged-union importer configuration, the importer's persisted state, and
// the revision wrapper its CAS updates are built on.
package model

import (
	"time"

	"github.com/google/uuid"
)

// State is the importer's run state.
type State string

const (
	StateWaiting State = "waiting"
	StateRunning State = "running"
)

// CommonImporter carries the fields shared by every configuration kind.
type CommonImporter struct {
	Disabled bool          `json:"disabled"`
	Period   time.Duration `json:"period"`
}

// SbomImporter is the "sbom" configuration kind: a periodic fetch of SBOM
// documents from a source url or filesystem path.
type SbomImporter struct {
	CommonImporter
	Source        string   `json:"source"`
	Keys          []string `json:"keys,omitempty"`
	V3Signatures  bool     `json:"v3Signatures"`
	OnlyPatterns  []string `json:"onlyPatterns,omitempty"`
}

// Kind identifies which configuration variant Configuration holds.
type Kind string

const (
	KindSbom Kind = "sbom"
	KindCSAF Kind = "csaf"
	KindCVE  Kind = "cve"
	KindOSV  Kind = "osv"
)

// Configuration is the tagged union stored in the importer.configuration
// column. Exactly one of the kind-specific fields is populated, selected
// by Kind.
type Configuration struct {
	Kind Kind          `json:"kind"`
	Sbom *SbomImporter `json:"sbom,omitempty"`
	CSAF *SbomImporter `json:"csaf,omitempty"`
	CVE  *SbomImporter `json:"cve,omitempty"`
	OSV  *SbomImporter `json:"osv,omitempty"`
}

// Common returns the CommonImporter fields of whichever variant is set.
func (c Configuration) Common() CommonImporter {
	switch c.Kind {
	case KindSbom:
		if c.Sbom != nil {
			return c.Sbom.CommonImporter
		}
	case KindCSAF:
		if c.CSAF != nil {
			return c.CSAF.CommonImporter
		}
	case KindCVE:
		if c.CVE != nil {
			return c.CVE.CommonImporter
		}
	case KindOSV:
		if c.OSV != nil {
			return c.OSV.CommonImporter
		}
	}
	return CommonImporter{}
}

// Importer is the full persisted state of one importer.
type Importer struct {
	Name          string
	Configuration Configuration
	State         State
	LastChange    time.Time
	LastSuccess   *time.Time
	LastRun       *time.Time
	LastError     *string
}

// Revisioned pairs a value with the revision it was read at, so a caller
// can pass that revision back as an optimistic-concurrency precondition.
type Revisioned[T any] struct {
	Value    T
	Revision uuid.UUID
}

// Report is one importer run's outcome, as persisted to importer_report.
type Report struct {
	ID        uuid.UUID
	Importer  string
	Creation  time.Time
	Error     *string
	ReportRaw []byte // JSON-encoded ingestor/parser/report.Report
}

// Pagination selects one page of results ordered by creation descending.
type Pagination struct {
	Page     int
	PageSize int
}
