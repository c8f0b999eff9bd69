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

// Package service implements the importer control loop's CRUD operations,
// with optimistic-concurrency (revision CAS) semantics on every mutation.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trustify/trustify/importer/model"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique-constraint
// violation.
const uniqueViolation = "23505"

// Sentinel errors returned by every mutating operation.
var (
	ErrAlreadyExists   = errors.New("importer already exists")
	ErrNotFound        = errors.New("importer not found")
	ErrMidAirCollision = errors.New("mid air collision")
)

// Service implements the importer CRUD surface.
type Service struct {
	pool *pgxpool.Pool
}

// New returns a Service bound to pool.
func New(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// List returns every configured importer.
func (s *Service) List(ctx context.Context) ([]model.Importer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, configuration, state, last_change, last_success, last_run, last_error
		FROM importer
	`)
	if err != nil {
		return nil, fmt.Errorf("list importers: %w", err)
	}
	defer rows.Close()

	var out []model.Importer
	for rows.Next() {
		var (
			imp           model.Importer
			configuration []byte
			state         string
			lastSuccess   *time.Time
			lastRun       *time.Time
			lastError     *string
		)
		if err := rows.Scan(&imp.Name, &configuration, &state, &imp.LastChange, &lastSuccess, &lastRun, &lastError); err != nil {
			return nil, fmt.Errorf("scan importer: %w", err)
		}
		imp.State = model.State(state)
		imp.LastSuccess = lastSuccess
		imp.LastRun = lastRun
		imp.LastError = lastError
		if err := json.Unmarshal(configuration, &imp.Configuration); err != nil {
			return nil, fmt.Errorf("unmarshal configuration for %s: %w", imp.Name, err)
		}
		out = append(out, imp)
	}
	return out, rows.Err()
}

// Read returns one importer and the revision it was read at, or nil if it
// doesn't exist.
func (s *Service) Read(ctx context.Context, name string) (*model.Revisioned[model.Importer], error) {
	row := s.pool.QueryRow(ctx, `
		SELECT name, configuration, state, last_change, last_success, last_run, last_error, revision
		FROM importer WHERE name = $1
	`, name)

	var (
		imp           model.Importer
		configuration []byte
		state         string
		lastSuccess   *time.Time
		lastRun       *time.Time
		lastError     *string
		revision      uuid.UUID
	)
	err := row.Scan(&imp.Name, &configuration, &state, &imp.LastChange, &lastSuccess, &lastRun, &lastError, &revision)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read importer %s: %w", name, err)
	}
	imp.State = model.State(state)
	imp.LastSuccess = lastSuccess
	imp.LastRun = lastRun
	imp.LastError = lastError
	if err := json.Unmarshal(configuration, &imp.Configuration); err != nil {
		return nil, fmt.Errorf("unmarshal configuration for %s: %w", name, err)
	}
	return &model.Revisioned[model.Importer]{Value: imp, Revision: revision}, nil
}

// Create inserts a new importer in the Waiting state.
func (s *Service) Create(ctx context.Context, name string, configuration model.Configuration) error {
	configJSON, err := json.Marshal(configuration)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO importer (name, configuration, state, last_change, revision)
		VALUES ($1, $2, $3, now(), $4)
	`, name, configJSON, model.StateWaiting, uuid.New())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
		}
		return fmt.Errorf("create importer %s: %w", name, err)
	}
	return nil
}

// UpdateConfiguration replaces an importer's configuration.
func (s *Service) UpdateConfiguration(ctx context.Context, name string, expectedRevision *uuid.UUID, configuration model.Configuration) error {
	configJSON, err := json.Marshal(configuration)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}
	return s.update(ctx, name, expectedRevision, "configuration = $1", configJSON)
}

// UpdateStart transitions an importer to Running, bumping its revision and
// last_change. Returns ErrMidAirCollision if expectedRevision no longer
// matches, so the runner can skip this tick for the importer.
func (s *Service) UpdateStart(ctx context.Context, name string, expectedRevision *uuid.UUID) error {
	return s.update(ctx, name, expectedRevision, "state = $1, last_change = now()", model.StateRunning)
}

// UpdateFinish transitions an importer back to Waiting, recording the run
// outcome and, if report is non-nil, inserting an ImporterReport row, all
// in one transaction.
func (s *Service) UpdateFinish(ctx context.Context, name string, expectedRevision *uuid.UUID, lastRun time.Time, lastError *string, report []byte) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var sql string
	var args []any
	if lastError == nil {
		sql = "state = $1, last_run = $2, last_change = now(), last_success = now()"
		args = []any{model.StateWaiting, lastRun}
	} else {
		sql = "state = $1, last_run = $2, last_change = now(), last_error = $3"
		args = []any{model.StateWaiting, lastRun, *lastError}
	}
	if err := s.updateTx(ctx, tx, name, expectedRevision, sql, args...); err != nil {
		return err
	}

	if report != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO importer_report (id, importer_name, creation, error, report)
			VALUES ($1, $2, now(), $3, $4)
		`, uuid.New(), name, lastError, report); err != nil {
			return fmt.Errorf("insert importer_report: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete removes an importer, optionally gated by expectedRevision.
// Deletion cascades to its reports. It returns false with a nil error when
// no such importer exists, and ErrMidAirCollision when the importer exists
// but expectedRevision no longer matches.
func (s *Service) Delete(ctx context.Context, name string, expectedRevision *uuid.UUID) (bool, error) {
	var tag pgconn.CommandTag
	var err error
	if expectedRevision != nil {
		tag, err = s.pool.Exec(ctx, `DELETE FROM importer WHERE name = $1 AND revision = $2`, name, *expectedRevision)
	} else {
		tag, err = s.pool.Exec(ctx, `DELETE FROM importer WHERE name = $1`, name)
	}
	if err != nil {
		return false, fmt.Errorf("delete importer %s: %w", name, err)
	}
	if tag.RowsAffected() > 0 || expectedRevision == nil {
		return tag.RowsAffected() > 0, nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM importer WHERE name = $1)`, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check existence of %s: %w", name, err)
	}
	if exists {
		return false, fmt.Errorf("%w: %s", ErrMidAirCollision, name)
	}
	return false, nil
}

// GetReports returns one page of an importer's reports, ordered by
// creation descending.
func (s *Service) GetReports(ctx context.Context, name string, page model.Pagination) ([]model.Report, error) {
	pageSize := page.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, importer_name, creation, error, report
		FROM importer_report
		WHERE importer_name = $1
		ORDER BY creation DESC
		LIMIT $2 OFFSET $3
	`, name, pageSize, page.Page*pageSize)
	if err != nil {
		return nil, fmt.Errorf("get reports for %s: %w", name, err)
	}
	defer rows.Close()

	var out []model.Report
	for rows.Next() {
		var r model.Report
		if err := rows.Scan(&r.ID, &r.Importer, &r.Creation, &r.Error, &r.ReportRaw); err != nil {
			return nil, fmt.Errorf("scan importer_report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// update runs a CAS update on its own pool connection.
func (s *Service) update(ctx context.Context, name string, expectedRevision *uuid.UUID, setClause string, setArgs ...any) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := s.updateTx(ctx, tx, name, expectedRevision, setClause, setArgs...); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// updateTx applies setClause against one importer row, gated by
// expectedRevision when non-nil, and always rotates revision to a fresh
// uuid. If zero rows were affected it disambiguates NotFound from
// MidAirCollision with a follow-up existence check.
func (s *Service) updateTx(ctx context.Context, tx pgx.Tx, name string, expectedRevision *uuid.UUID, setClause string, setArgs ...any) error {
	args := append([]any{}, setArgs...)
	nextPlaceholder := len(args) + 1
	args = append(args, uuid.New(), name)
	revisionPlaceholder := nextPlaceholder
	namePlaceholder := nextPlaceholder + 1

	sql := fmt.Sprintf(`
		UPDATE importer SET %s, revision = $%d
		WHERE name = $%d
	`, setClause, revisionPlaceholder, namePlaceholder)

	if expectedRevision != nil {
		args = append(args, *expectedRevision)
		sql += fmt.Sprintf(" AND revision = $%d", namePlaceholder+1)
	}

	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update importer %s: %w", name, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM importer WHERE name = $1)`, name).Scan(&exists); err != nil {
		return fmt.Errorf("check existence of %s: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fmt.Errorf("%w: %s", ErrMidAirCollision, name)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
