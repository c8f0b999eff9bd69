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

package loader

import (
	"context"
	"fmt"

	"github.com/trustify/trustify/ingestor/graph"
	"github.com/trustify/trustify/ingestor/parser/report"
)

// Kind identifies which document format a document belongs to.
type Kind string

const (
	KindSPDX      Kind = "spdx"
	KindCycloneDX Kind = "cyclonedx"
	KindCVE       Kind = "cve"
	KindOSV       Kind = "osv"
	KindCSAF      Kind = "csaf"
)

// ErrUnknownKind is returned by Ingest for an unrecognized Kind.
var ErrUnknownKind = fmt.Errorf("unknown document kind")

// Ingest dispatches raw to the loader matching kind.
func Ingest(ctx context.Context, g *graph.Graph, kind Kind, raw []byte, sourceLabels map[string]string, sink report.Sink) error {
	switch kind {
	case KindSPDX:
		return IngestSPDX(ctx, g, raw, sourceLabels, sink)
	case KindCycloneDX:
		return IngestCycloneDX(ctx, g, raw, sourceLabels, sink)
	case KindCVE:
		return IngestCVE(ctx, g, raw, sourceLabels)
	case KindOSV:
		return IngestOSV(ctx, g, raw, sourceLabels)
	case KindCSAF:
		return IngestCSAF(ctx, g, raw, sourceLabels)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
