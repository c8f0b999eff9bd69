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

package digest_test

import (
	"testing"

	"github.com/trustify/trustify/common/digest"
)

func TestOfKnownVector(t *testing.T) {
	got := digest.Of([]byte("abc"))
	want := digest.Digests{
		SHA256: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		SHA384: "cb00753f45a35e8bb5a03d699ac65007272c32ab0eded1631a8b605a43ff5bed8086072ba1e7cc2358baeca134c825a7",
		SHA512: "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f",
	}
	if got != want {
		t.Fatalf("Of(\"abc\") = %+v, want %+v", got, want)
	}
}

func TestOfIsDeterministic(t *testing.T) {
	b := []byte(`{"some":"document"}`)
	if digest.Of(b) != digest.Of(b) {
		t.Fatalf("Of is not deterministic for identical input")
	}
}

func TestOfDistinguishesInput(t *testing.T) {
	a := digest.Of([]byte("a"))
	b := digest.Of([]byte("b"))
	if a == b {
		t.Fatalf("distinct input produced identical digests")
	}
}
