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

package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/trustify/trustify/common/config"
)

// TestNewRejectsBadURL exercises pgxpool.ParseConfig's own validation; no
// real database is required for a malformed connection string to fail.
func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), config.DatabaseConfig{URL: "not-a-valid-url"})
	if err == nil {
		t.Fatal("New() = nil error, want error for malformed URL")
	}
}

// TestStoreMethodsExist is a compile-time signature check: the same style
// the example corpus uses where a method can't be exercised without a live
// connection.
func TestStoreMethodsExist(t *testing.T) {
	var s *Store

	var _ func() = s.Close
	var _ func(context.Context, string, ...any) error = s.Exec
	var _ func(context.Context, string, ...any) pgx.Row = s.QueryRow
	var _ func(context.Context, string, ...any) (pgx.Rows, error) = s.Query
	var _ func(context.Context, func(pgx.Tx) error) error = s.WithTx
	var _ func(context.Context) error = s.Migrate
}
