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

// Package report collects the warnings and errors produced while parsing
// and loading a document into one structure the importer runner persists
// alongside each run.
package report

import (
	"fmt"
	"sync"
	"time"
)

// Severity buckets the messages a Builder collects.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Message is one entry in a run's report: a human-readable note tied to the
// file (or document identifier) it came from.
type Message struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// Sink is the narrow interface parsers and loaders emit non-fatal messages
// to, so they never need to know whether they're running standalone or
// inside a scheduled importer run.
type Sink interface {
	Warnf(file, format string, args ...any)
	Errorf(file, format string, args ...any)
}

// Builder accumulates messages across one ingestion run and produces the
// Report structure persisted as an ImporterReport. Safe for concurrent use:
// a runner dispatching multiple loaders from one run shares one Builder.
type Builder struct {
	mu            sync.Mutex
	start         time.Time
	numberOfItems int
	messages      map[Severity][]Message
}

// NewBuilder starts a report with StartDate set to now.
func NewBuilder(now time.Time) *Builder {
	return &Builder{start: now, messages: make(map[Severity][]Message)}
}

// Warnf records a non-fatal message against file.
func (b *Builder) Warnf(file, format string, args ...any) {
	b.add(SeverityWarning, file, format, args...)
}

// Errorf records a fatal-to-the-document message against file.
func (b *Builder) Errorf(file, format string, args ...any) {
	b.add(SeverityError, file, format, args...)
}

func (b *Builder) add(sev Severity, file, format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[sev] = append(b.messages[sev], Message{File: file, Message: fmt.Sprintf(format, args...)})
}

// IncrementItems adds n to the count of items processed by this run.
func (b *Builder) IncrementItems(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.numberOfItems += n
}

// HasErrors reports whether any fatal message was recorded.
func (b *Builder) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages[SeverityError]) > 0
}

// Build finalizes the report with EndDate set to now.
func (b *Builder) Build(now time.Time) Report {
	b.mu.Lock()
	defer b.mu.Unlock()
	messages := make(map[string][]Message, len(b.messages))
	for sev, msgs := range b.messages {
		cp := make([]Message, len(msgs))
		copy(cp, msgs)
		messages[string(sev)] = cp
	}
	return Report{
		StartDate:     b.start,
		EndDate:       now,
		NumberOfItems: b.numberOfItems,
		Messages:      messages,
	}
}

// Report is the JSON structure persisted as an ImporterReport's report
// column. The "numer_of_items" tag preserves the on-wire field name external
// consumers already depend on.
type Report struct {
	StartDate     time.Time            `json:"start_date"`
	EndDate       time.Time            `json:"end_date"`
	NumberOfItems int                  `json:"numer_of_items"`
	Messages      map[string][]Message `json:"messages"`
}
