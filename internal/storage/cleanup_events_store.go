/*
 * This file is part of Fluent (https://github.com/fluentlabs/fluent).
 * Copyright (C) 2025 Fluent Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/fluentlabs/fluent-hub/internal/events"
)

// CleanupEventsStore handles database operations for cleanup events
type CleanupEventsStore struct {
	db *Database
}

// NewCleanupEventsStore creates a new cleanup events store
func NewCleanupEventsStore(db *Database) *CleanupEventsStore {
	return &CleanupEventsStore{db: db}
}

// Insert stores a new cleanup event in the database
func (s *CleanupEventsStore) Insert(event *events.CleanupEvent) error {
	if err := event.IsValid(); err != nil {
		return fmt.Errorf("invalid cleanup event: %w", err)
	}

	stagesJSON, err := event.StagesJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize stages: %w", err)
	}

	stepsJSON, err := event.StepsJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize steps: %w", err)
	}

	query := `
		INSERT INTO cleanup_events (
			uuid, request_id, timestamp,
			input, output, stages, steps,
			processing_time_ms, success, error_message
		) VALUES (
			?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?
		)`

	_, err = s.db.DB().Exec(query,
		event.UUID, event.RequestID, event.Timestamp,
		event.Input, event.Output, stagesJSON, stepsJSON,
		event.ProcessingTime, event.Success, event.ErrorMessage,
	)

	if err != nil {
		return fmt.Errorf("failed to insert cleanup event: %w", err)
	}

	log.Printf("📝 Stored cleanup event: %s (RequestID: %s, Stages: %v)",
		event.UUID, event.RequestID, event.Stages)
	return nil
}

// GetByUUID retrieves a cleanup event by its UUID
func (s *CleanupEventsStore) GetByUUID(uuid string) (*events.CleanupEvent, error) {
	query := `
		SELECT uuid, request_id, timestamp,
			   input, output, stages, steps,
			   processing_time_ms, success, error_message
		FROM cleanup_events
		WHERE uuid = ?`

	row := s.db.DB().QueryRow(query, uuid)
	return s.scanCleanupEvent(row)
}

// List retrieves cleanup events with pagination and filtering
func (s *CleanupEventsStore) List(options ListOptions) ([]*events.CleanupEvent, error) {
	query, args := s.buildListQuery(options)

	rows, err := s.db.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cleanup events: %w", err)
	}
	defer rows.Close()

	var eventsList []*events.CleanupEvent
	for rows.Next() {
		event, err := s.scanCleanupEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cleanup event: %w", err)
		}
		eventsList = append(eventsList, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cleanup events: %w", err)
	}

	return eventsList, nil
}

// Count returns the total number of cleanup events matching the filter
func (s *CleanupEventsStore) Count(options ListOptions) (int64, error) {
	// Build count query using same filters
	options.Limit = 0
	options.Offset = 0
	query, args := s.buildListQuery(options)

	countQuery := "SELECT COUNT(*) FROM (" + query + ") as filtered"

	var count int64
	err := s.db.DB().QueryRow(countQuery, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cleanup events: %w", err)
	}

	return count, nil
}

// Delete removes a cleanup event by UUID
func (s *CleanupEventsStore) Delete(uuid string) error {
	result, err := s.db.DB().Exec("DELETE FROM cleanup_events WHERE uuid = ?", uuid)
	if err != nil {
		return fmt.Errorf("failed to delete cleanup event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("cleanup event not found: %s", uuid)
	}

	log.Printf("🗑️  Deleted cleanup event: %s", uuid)
	return nil
}

// ListOptions defines filtering and pagination options
type ListOptions struct {
	// Filtering
	RequestID string
	Success   *bool // nil = all, true = success only, false = errors only
	StartTime *time.Time
	EndTime   *time.Time

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "timestamp", "processing_time_ms"
	SortOrder string // "ASC", "DESC"
}

// buildListQuery constructs the SQL query based on ListOptions
func (s *CleanupEventsStore) buildListQuery(options ListOptions) (string, []interface{}) {
	query := `
		SELECT uuid, request_id, timestamp,
			   input, output, stages, steps,
			   processing_time_ms, success, error_message
		FROM cleanup_events WHERE 1=1`

	var args []interface{}

	// Apply filters
	if options.RequestID != "" {
		query += " AND request_id = ?"
		args = append(args, options.RequestID)
	}

	if options.Success != nil {
		query += " AND success = ?"
		args = append(args, *options.Success)
	}

	if options.StartTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, options.StartTime)
	}

	if options.EndTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, options.EndTime)
	}

	// Apply sorting; only known columns are accepted
	sortBy := options.SortBy
	switch sortBy {
	case "timestamp", "processing_time_ms":
	default:
		sortBy = "timestamp"
	}

	sortOrder := options.SortOrder
	if sortOrder != "ASC" {
		sortOrder = "DESC"
	}

	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)

	// Apply pagination
	if options.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, options.Limit)

		if options.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, options.Offset)
		}
	}

	return query, args
}

// scanCleanupEvent scans a database row into a CleanupEvent struct
func (s *CleanupEventsStore) scanCleanupEvent(scanner interface{}) (*events.CleanupEvent, error) {
	var event events.CleanupEvent
	var stagesJSON, stepsJSON string

	var row interface {
		Scan(dest ...interface{}) error
	}

	switch v := scanner.(type) {
	case *sql.Row:
		row = v
	case *sql.Rows:
		row = v
	default:
		return nil, fmt.Errorf("unsupported scanner type")
	}

	err := row.Scan(
		&event.UUID, &event.RequestID, &event.Timestamp,
		&event.Input, &event.Output, &stagesJSON, &stepsJSON,
		&event.ProcessingTime, &event.Success, &event.ErrorMessage,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("cleanup event not found")
		}
		return nil, err
	}

	if err := event.SetStagesFromJSON(stagesJSON); err != nil {
		return nil, fmt.Errorf("failed to parse stages JSON: %w", err)
	}

	if err := event.SetStepsFromJSON(stepsJSON); err != nil {
		return nil, fmt.Errorf("failed to parse steps JSON: %w", err)
	}

	return &event, nil
}
