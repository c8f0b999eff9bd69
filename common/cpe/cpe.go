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

// Package cpe parses Common Platform Enumeration strings (2.2 URI-bound and
// 2.3 formatted-string) into their component parts, and derives the
// deterministic identifier trustify uses to address a CPE in the graph.
package cpe

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// namespace matches common/purl's NAMESPACE: the same 16-byte constant
// seeds every identifier trustify derives, purl or CPE alike.
var namespace = uuid.Must(uuid.FromBytes([]byte{
	0x37, 0x38, 0xb4, 0x3d, 0xfd, 0x03, 0x4a, 0x9d, 0x84, 0x9c, 0x48, 0x9b, 0xec, 0x61, 0x0f, 0x06,
}))

// Cpe is the parsed representation of a CPE 2.2 or 2.3 identifier. Fields
// follow the CPE naming specification's WFN attribute order; an attribute
// holding "*" (ANY) or "-" (NA) is normalized to the empty string.
type Cpe struct {
	Part      string // "a" (application), "o" (operating system), "h" (hardware)
	Vendor    string
	Product   string
	Version   string
	Update    string
	Edition   string
	Language  string
	SWEdition string
	TargetSW  string
	TargetHW  string
	Other     string
}

// ErrMalformed is returned when a string isn't a recognizable CPE 2.2 or 2.3
// identifier.
var ErrMalformed = fmt.Errorf("malformed cpe")

// Parse decodes a CPE string in either 2.2 (cpe:/...) or 2.3 (cpe:2.3:...)
// form.
func Parse(s string) (Cpe, error) {
	switch {
	case strings.HasPrefix(s, "cpe:2.3:"):
		return parseFormattedString(s)
	case strings.HasPrefix(s, "cpe:/"):
		return parseURI(s)
	default:
		return Cpe{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
}

func parseFormattedString(s string) (Cpe, error) {
	fields := strings.Split(s, ":")
	// cpe : 2.3 : part : vendor : product : version : update : edition :
	//       language : sw_edition : target_sw : target_hw : other
	const wantFields = 13
	if len(fields) != wantFields {
		return Cpe{}, fmt.Errorf("%w: %q: expected %d colon-separated fields, got %d", ErrMalformed, s, wantFields, len(fields))
	}
	attr := func(v string) string {
		if v == "*" || v == "-" {
			return ""
		}
		return unescapeFormatted(v)
	}
	return Cpe{
		Part:      attr(fields[2]),
		Vendor:    attr(fields[3]),
		Product:   attr(fields[4]),
		Version:   attr(fields[5]),
		Update:    attr(fields[6]),
		Edition:   attr(fields[7]),
		Language:  attr(fields[8]),
		SWEdition: attr(fields[9]),
		TargetSW:  attr(fields[10]),
		TargetHW:  attr(fields[11]),
		Other:     attr(fields[12]),
	}, nil
}

func parseURI(s string) (Cpe, error) {
	body := strings.TrimPrefix(s, "cpe:/")
	fields := strings.Split(body, ":")
	if len(fields) == 0 || len(fields) > 7 {
		return Cpe{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	get := func(i int) string {
		if i >= len(fields) {
			return ""
		}
		v := fields[i]
		if v == "" || v == "*" || v == "-" {
			return ""
		}
		return unescapeURI(v)
	}
	return Cpe{
		Part:     get(0),
		Vendor:   get(1),
		Product:  get(2),
		Version:  get(3),
		Update:   get(4),
		Edition:  get(5),
		Language: get(6),
	}, nil
}

func unescapeFormatted(v string) string {
	return strings.ReplaceAll(v, `\`, "")
}

func unescapeURI(v string) string {
	v = strings.ReplaceAll(v, "%21", "!")
	v = strings.ReplaceAll(v, "%40", "@")
	v = strings.ReplaceAll(v, "%23", "#")
	v = strings.ReplaceAll(v, "%24", "$")
	return v
}

func orAny(v string) string {
	if v == "" {
		return "*"
	}
	return v
}

// String renders c in canonical CPE 2.3 formatted-string form. This is the
// form UUID derivation hashes, so two CPEs that mean the same thing but
// were parsed from different 2.2/2.3 spellings resolve to the same UUID.
func (c Cpe) String() string {
	parts := []string{
		"cpe", "2.3",
		orAny(c.Part), orAny(c.Vendor), orAny(c.Product), orAny(c.Version),
		orAny(c.Update), orAny(c.Edition), orAny(c.Language),
		orAny(c.SWEdition), orAny(c.TargetSW), orAny(c.TargetHW), orAny(c.Other),
	}
	return strings.Join(parts, ":")
}

// UUID derives the deterministic identifier for c: a v5 hash of its
// canonical string form, chained onto the shared namespace constant.
func (c Cpe) UUID() uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(c.String()))
}
