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

// Package digest computes the content-addressing digests trustify attaches
// to every ingested document: hex-encoded sha256, sha384 and sha512 over the
// raw input bytes. sha256 is the primary lookup key for advisories; all
// three are stored so a caller with only a sha384 or sha512 reference
// (common in CSAF/VEX provenance statements) can still match a document.
package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
)

// Digests holds the three content digests computed over one document's raw
// bytes.
type Digests struct {
	SHA256 string
	SHA384 string
	SHA512 string
}

// Of computes Digests over b. It never fails: hashing is total over any
// byte slice, including the empty one.
func Of(b []byte) Digests {
	sum256 := sha256.Sum256(b)
	sum384 := sha512.Sum384(b)
	sum512 := sha512.Sum512(b)
	return Digests{
		SHA256: hex.EncodeToString(sum256[:]),
		SHA384: hex.EncodeToString(sum384[:]),
		SHA512: hex.EncodeToString(sum512[:]),
	}
}
