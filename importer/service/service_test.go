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

package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

// Every CRUD method requires a live PostgreSQL connection to exercise
// meaningfully; we can't mock pgxpool.Pool without one, so these checks
// just pin down the signatures the runner and API layers depend on.
func TestServiceMethodSignatures(t *testing.T) {
	var s *Service
	_ = s.List
	_ = s.Read
	_ = s.Create
	_ = s.UpdateConfiguration
	_ = s.UpdateStart
	_ = s.UpdateFinish
	_ = s.Delete
	_ = s.GetReports
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated", fmt.Errorf("boom"), false},
		{"wrong code", &pgconn.PgError{Code: "23503"}, false},
		{"unique violation", &pgconn.PgError{Code: uniqueViolation}, true},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolation}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	for _, pair := range [][2]error{
		{ErrAlreadyExists, ErrNotFound},
		{ErrNotFound, ErrMidAirCollision},
		{ErrAlreadyExists, ErrMidAirCollision},
	} {
		if errors.Is(pair[0], pair[1]) {
			t.Errorf("%v should not match %v", pair[0], pair[1])
		}
	}
}
