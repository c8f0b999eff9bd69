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

package spdx

import "testing"

func TestValidLicenseExpression(t *testing.T) {
	valid := []string{
		"MIT",
		"Apache-2.0",
		"GPL-2.0-only OR MIT",
		"(MIT AND Apache-2.0)",
		"GPL-2.0-or-later WITH Classpath-exception-2.0",
		"LicenseRef-my-custom-license",
		"NOASSERTION",
		"NONE",
		"(MIT OR Apache-2.0) AND BSD-3-Clause",
	}
	for _, l := range valid {
		if !validLicenseExpression(l) {
			t.Errorf("validLicenseExpression(%q) = false, want true", l)
		}
	}
}

func TestInvalidLicenseExpression(t *testing.T) {
	invalid := []string{
		"",
		"GPL-2.0+ WITH broken",
		"MIT AND",
		"AND MIT",
		"(MIT AND Apache-2.0",
		"MIT AND Apache-2.0)",
		"MIT WITH",
		"MIT WITH (foo)",
	}
	for _, l := range invalid {
		if validLicenseExpression(l) {
			t.Errorf("validLicenseExpression(%q) = true, want false", l)
		}
	}
}
