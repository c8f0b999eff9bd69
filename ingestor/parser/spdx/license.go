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

import "strings"

// NoAssertion is the SPDX placeholder trustify substitutes for a
// licenseDeclared value that fails expression validation.
const NoAssertion = "NOASSERTION"

// validLicenseExpression reports whether l parses as a well-formed SPDX
// license expression: one or more identifiers (bare license ids,
// "LicenseRef-*" references, or one of them with a "WITH <exception-id>"
// clause) combined with AND/OR and optionally grouped in matching
// parentheses. It does not check license identifiers against the SPDX
// license list, but it rejects an identifier with a trailing "+" and an
// exception id that is not in knownExceptions.
func validLicenseExpression(l string) bool {
	l = strings.TrimSpace(l)
	if l == "" {
		return false
	}
	if strings.EqualFold(l, NoAssertion) || strings.EqualFold(l, "NONE") {
		return true
	}
	p := &exprParser{tokens: tokenize(l)}
	if !p.parseExpression() {
		return false
	}
	return p.pos == len(p.tokens)
}

// tokenize splits a license expression into parens, the AND/OR/WITH
// operators, and identifier runs.
func tokenize(l string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range l {
		switch {
		case r == '(' || r == ')':
			flush()
			tokens = append(tokens, string(r))
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// exprParser is a small recursive-descent parser over the grammar:
//
//	expr       := term (("AND" | "OR") term)*
//	term       := "(" expr ")" | identifier ("WITH" identifier)?
//	identifier := any non-operator token
type exprParser struct {
	tokens []string
	pos    int
}

func (p *exprParser) peek() (string, bool) {
	if p.pos >= len(p.tokens) {
		return "", false
	}
	return p.tokens[p.pos], true
}

func (p *exprParser) parseExpression() bool {
	if !p.parseTerm() {
		return false
	}
	for {
		tok, ok := p.peek()
		if !ok || !isOperator(tok, "AND", "OR") {
			return true
		}
		p.pos++
		if !p.parseTerm() {
			return false
		}
	}
}

func (p *exprParser) parseTerm() bool {
	tok, ok := p.peek()
	if !ok {
		return false
	}
	if tok == "(" {
		p.pos++
		if !p.parseExpression() {
			return false
		}
		tok, ok = p.peek()
		if !ok || tok != ")" {
			return false
		}
		p.pos++
		return true
	}
	if isOperator(tok, "AND", "OR", "WITH") || tok == ")" {
		return false
	}
	if strings.HasSuffix(tok, "+") {
		// The trailing "+" operator ("GPL-2.0+") is 1.x tag-value syntax,
		// not valid inside a license expression; expressions spell this
		// "GPL-2.0-or-later" instead.
		return false
	}
	p.pos++ // the license identifier itself

	tok, ok = p.peek()
	if ok && isOperator(tok, "WITH") {
		p.pos++
		exception, ok := p.peek()
		if !ok || isOperator(exception, "AND", "OR", "WITH") || exception == "(" || exception == ")" {
			return false
		}
		if !knownExceptions[exception] {
			return false
		}
		p.pos++ // the exception identifier
	}
	return true
}

// knownExceptions is a small, non-exhaustive set of commonly used SPDX
// license exception ids. trustify does not ship the full SPDX exception
// list, so an id outside this set is treated as unrecognized rather than
// silently accepted.
var knownExceptions = map[string]bool{
	"Classpath-exception-2.0": true,
	"LLVM-exception":          true,
	"GCC-exception-2.0":       true,
	"GCC-exception-3.1":       true,
	"OpenSSL-exception":       true,
	"Autoconf-exception-2.0":  true,
	"Autoconf-exception-3.0":  true,
	"Bison-exception-2.2":     true,
	"Font-exception-2.0":      true,
	"Universal-FOSS-exception-1.0": true,
}

func isOperator(tok string, ops ...string) bool {
	for _, op := range ops {
		if tok == op {
			return true
		}
	}
	return false
}
