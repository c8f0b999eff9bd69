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

package creator

import "github.com/google/uuid"

// ReferenceKind distinguishes which global identity an SbomPackage node
// attaches to.
type ReferenceKind int

const (
	// ReferencePurl attaches a node to a QualifiedPackage.
	ReferencePurl ReferenceKind = iota
	// ReferenceCpe attaches a node to a Cpe.
	ReferenceCpe
)

// PackageReference attaches an SbomPackage node to the global package
// graph, either through a qualified purl or a CPE.
type PackageReference struct {
	Kind ReferenceKind
	UUID uuid.UUID
}

// PurlReference builds a PackageReference pointing at a QualifiedPackage.
func PurlReference(qualifiedUUID uuid.UUID) PackageReference {
	return PackageReference{Kind: ReferencePurl, UUID: qualifiedUUID}
}

// CpeReference builds a PackageReference pointing at a Cpe.
func CpeReference(cpeUUID uuid.UUID) PackageReference {
	return PackageReference{Kind: ReferenceCpe, UUID: cpeUUID}
}
