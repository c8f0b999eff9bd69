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

package graph

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trustify/trustify/common/digest"
	"github.com/trustify/trustify/common/purl"
)

// TestGraphMethodSignatures is a compile-time check for the operations'
// shapes; exercising the SQL itself needs a live database connection,
// which pgx.Tx can't be usefully faked for without one.
func TestGraphMethodSignatures(t *testing.T) {
	var g *Graph

	var _ func(context.Context) (pgx.Tx, error) = g.Begin
	var _ func(context.Context, pgx.Tx, string, VulnerabilityInfo) error = g.IngestVulnerability
	var _ func(context.Context, pgx.Tx, string, map[string]string, digest.Digests, AdvisoryInfo) (*Advisory, error) = g.IngestAdvisory
	var _ func(context.Context, pgx.Tx, string, ProductInformation) (*Product, error) = g.IngestProduct
	var _ func(context.Context, pgx.Tx, SbomInformation, digest.Digests, map[string]string) (*SbomContext, error) = g.IngestSBOM

	var a *Advisory
	var _ func(context.Context, pgx.Tx, string, AdvisoryVulnerabilityInfo) error = a.LinkToVulnerability
	var _ func(context.Context, pgx.Tx, string, purl.PackageURL, AffectedPackageRange) error = a.IngestAffectedPackageRange
	var _ func(context.Context, pgx.Tx, string, purl.PackageURL) error = a.IngestFixedPackageVersion
	var _ func(context.Context, pgx.Tx, string, purl.PackageURL) error = a.IngestNotAffectedPackageVersion

	var p *Product
	var _ func(context.Context, pgx.Tx, string, *uuid.UUID) error = p.IngestProductVersion
}
