// Copyright 2024 Google LLC
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

// Package purl provides functions to parse, render and identify Package URLs
// according to the spec: https://github.com/package-url/purl-spec
// This package is a convenience wrapper and abstraction layer around an
// existing open source implementation, plus the deterministic identifier
// derivation trustify needs for graph assembly.
package purl

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/package-url/packageurl-go"
)

// Well-known purl types. Callers are not restricted to this list: any type
// accepted by the purl spec is a valid PackageURL, since an ingested SBOM
// may reference ecosystems trustify has no special handling for.
const (
	TypeAlpm      = "alpm"
	TypeApk       = "apk"
	TypeBitbucket = "bitbucket"
	TypeCocoapods = "cocoapods"
	TypeCargo     = "cargo"
	TypeComposer  = "composer"
	TypeConan     = "conan"
	TypeConda     = "conda"
	TypeCOS       = "cos"
	TypeCran      = "cran"
	TypeDebian    = "deb"
	TypeDocker    = "docker"
	TypeGem       = "gem"
	TypeGeneric   = "generic"
	TypeGithub    = "github"
	TypeGolang    = "golang"
	TypeHackage   = "hackage"
	TypeHex       = "hex"
	TypeMaven     = "maven"
	TypeNPM       = "npm"
	TypeNuget     = "nuget"
	TypeOCI       = "oci"
	TypePub       = "pub"
	TypePyPi      = "pypi"
	TypeRPM       = "rpm"
	TypeSwift     = "swift"
)

// namespace is the fixed 16-byte UUID namespace used to seed every v5
// derivation below. It must never change: any implementation using the same
// constant and the same RFC 4122 UUIDv5 algorithm produces bit-identical
// identifiers for the same purl.
var namespace = uuid.Must(uuid.FromBytes([]byte{
	0x37, 0x38, 0xb4, 0x3d, 0xfd, 0x03, 0x4a, 0x9d, 0x84, 0x9c, 0x48, 0x9b, 0xec, 0x61, 0x0f, 0x06,
}))

// Qualifier is a single key=value qualifier of a package url.
type Qualifier struct {
	Key   string
	Value string
}

// Qualifiers is an ordered list of key=value qualifiers, order preserved as
// parsed. Use Sorted to get a key-sorted copy for canonical rendering and
// identifier derivation.
type Qualifiers []Qualifier

// QualifiersFromMap builds Qualifiers from a string map, sorted by key so the
// result is deterministic despite Go's randomized map iteration.
func QualifiersFromMap(mm map[string]string) Qualifiers {
	qs := make(Qualifiers, 0, len(mm))
	for k, v := range mm {
		qs = append(qs, Qualifier{Key: k, Value: v})
	}
	return qs.Sorted()
}

// Sorted returns a copy of qs ordered by key.
func (qs Qualifiers) Sorted() Qualifiers {
	out := make(Qualifiers, len(qs))
	copy(out, qs)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Map collapses qs into a plain string map, losing order.
func (qs Qualifiers) Map() map[string]string {
	m := make(map[string]string, len(qs))
	for _, q := range qs {
		m[q.Key] = q.Value
	}
	return m
}

// PackageURL is the in-memory representation of a parsed, or
// to-be-rendered, package url.
type PackageURL struct {
	Type       string
	Namespace  string
	Name       string
	Version    string
	Qualifiers Qualifiers
	Subpath    string
}

// Error kinds returned by Parse, matching the taxonomy trustify's ingestion
// pipeline distinguishes between a structurally broken purl string and one
// simply missing the version trustify needs for identity.
var (
	// ErrMalformedSyntax is returned when the input isn't a valid purl string.
	ErrMalformedSyntax = fmt.Errorf("malformed purl syntax")
	// ErrMissingVersion is returned by RequireVersion when a purl has no version.
	ErrMissingVersion = fmt.Errorf("purl has no version")
)

// Parse decodes a purl string into a PackageURL. Parsing never requires a
// version: callers that need one call RequireVersion explicitly.
func Parse(s string) (PackageURL, error) {
	p, err := packageurl.FromString(s)
	if err != nil {
		return PackageURL{}, fmt.Errorf("%w: %q: %v", ErrMalformedSyntax, s, err)
	}
	qs := make(Qualifiers, 0, len(p.Qualifiers))
	for _, q := range p.Qualifiers {
		qs = append(qs, Qualifier{Key: q.Key, Value: q.Value})
	}
	return PackageURL{
		Type:       p.Type,
		Namespace:  p.Namespace,
		Name:       p.Name,
		Version:    p.Version,
		Qualifiers: qs,
		Subpath:    p.Subpath,
	}, nil
}

// FromString is an alias of Parse kept for readability at call sites
// translating directly from a document's textual purl field.
func FromString(s string) (PackageURL, error) { return Parse(s) }

// RequireVersion returns ErrMissingVersion when p has no version.
func RequireVersion(p PackageURL) error {
	if p.Version == "" {
		return fmt.Errorf("%w: %s", ErrMissingVersion, p.Name)
	}
	return nil
}

// String renders p in canonical form: qualifiers sorted by key. Parsing a
// string and rendering the result again is idempotent.
func (p PackageURL) String() string {
	out := packageurl.PackageURL{
		Type:      p.Type,
		Namespace: p.Namespace,
		Name:      p.Name,
		Version:   p.Version,
		Subpath:   p.Subpath,
	}
	sorted := p.Qualifiers.Sorted()
	pq := make(packageurl.Qualifiers, 0, len(sorted))
	for _, q := range sorted {
		pq = append(pq, packageurl.Qualifier{Key: q.Key, Value: q.Value})
	}
	out.Qualifiers = pq
	return (&out).String()
}

// PackageUUID derives the package-level identifier: a v5 hash chained over
// type, namespace (if any) and name. Two purls with the same type,
// namespace and name always derive the same package UUID regardless of
// version or qualifiers.
func (p PackageURL) PackageUUID() uuid.UUID {
	result := uuid.NewSHA1(namespace, []byte(p.Type))
	if p.Namespace != "" {
		result = uuid.NewSHA1(result, []byte(p.Namespace))
	}
	return uuid.NewSHA1(result, []byte(p.Name))
}

// VersionUUID derives the version-level identifier, chained onto the
// package UUID. An empty version still produces a stable UUID (hashing the
// empty byte string), so unversioned purls have one well-defined version
// row.
func (p PackageURL) VersionUUID() uuid.UUID {
	return thenVersionUUID(p.PackageUUID(), p.Version)
}

func thenVersionUUID(pkg uuid.UUID, version string) uuid.UUID {
	return uuid.NewSHA1(pkg, []byte(version))
}

// QualifiedUUID derives the fully-qualified identifier: the version UUID
// folded over the sorted qualifiers, key then value per pair. Permuting the
// input qualifier order never changes the result, since the fold always
// runs over the key-sorted copy.
func (p PackageURL) QualifiedUUID() uuid.UUID {
	return thenQualifiedUUID(p.VersionUUID(), p.Qualifiers)
}

func thenQualifiedUUID(version uuid.UUID, qs Qualifiers) uuid.UUID {
	result := version
	for _, q := range qs.Sorted() {
		result = uuid.NewSHA1(result, []byte(q.Key))
		result = uuid.NewSHA1(result, []byte(q.Value))
	}
	return result
}

// UUIDs returns the (package, version, qualified) identifier triple in one
// pass, sharing the intermediate hashes the way the three individual
// accessors would each recompute on their own.
func (p PackageURL) UUIDs() (pkg, version, qualified uuid.UUID) {
	pkg = p.PackageUUID()
	version = thenVersionUUID(pkg, p.Version)
	qualified = thenQualifiedUUID(version, p.Qualifiers)
	return pkg, version, qualified
}

// Qualifier names recognized by downstream package-ecosystem handling.
const (
	Distro        = "distro"
	Epoch         = "epoch"
	Arch          = "arch"
	Origin        = "origin"
	Source        = "source"
	SourceVersion = "sourceversion"
	SourceRPM     = "sourcerpm"
)
