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

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fluentlabs/fluent-hub/internal/events"
	"github.com/fluentlabs/fluent-hub/internal/logging"
	"github.com/fluentlabs/fluent-hub/internal/storage"
)

// CleanupEventsHandler handles HTTP requests for cleanup events
type CleanupEventsHandler struct {
	store *storage.CleanupEventsStore
}

// NewCleanupEventsHandler creates a new cleanup events handler
func NewCleanupEventsHandler(store *storage.CleanupEventsStore) *CleanupEventsHandler {
	return &CleanupEventsHandler{store: store}
}

// ListCleanupEventsResponse represents the response for listing cleanup events
type ListCleanupEventsResponse struct {
	Events     []*events.CleanupEvent `json:"events"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}

// HandleCleanupEvents handles GET /api/cleanup-events
func (h *CleanupEventsHandler) HandleCleanupEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listCleanupEvents(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleCleanupEventByID handles GET /api/cleanup-events/{id}
func (h *CleanupEventsHandler) HandleCleanupEventByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Extract UUID from URL path
	pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/cleanup-events/"), "/")
	if len(pathParts) == 0 || pathParts[0] == "" {
		http.Error(w, "Event ID is required", http.StatusBadRequest)
		return
	}

	uuid := pathParts[0]
	h.getCleanupEventByID(w, r, uuid)
}

// listCleanupEvents handles GET /api/cleanup-events
func (h *CleanupEventsHandler) listCleanupEvents(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	query := r.URL.Query()

	// Pagination
	page := parseIntParam(query.Get("page"), 1)
	pageSize := parseIntParam(query.Get("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100 // Limit maximum page size
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	// Filtering
	options := storage.ListOptions{
		RequestID: query.Get("request_id"),
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
		SortBy:    query.Get("sort_by"),
		SortOrder: strings.ToUpper(query.Get("sort_order")),
	}

	// Parse success filter
	if successStr := query.Get("success"); successStr != "" {
		if success, err := strconv.ParseBool(successStr); err == nil {
			options.Success = &success
		}
	}

	// Parse time filters
	if startTimeStr := query.Get("start_time"); startTimeStr != "" {
		if startTime, err := time.Parse(time.RFC3339, startTimeStr); err == nil {
			options.StartTime = &startTime
		}
	}
	if endTimeStr := query.Get("end_time"); endTimeStr != "" {
		if endTime, err := time.Parse(time.RFC3339, endTimeStr); err == nil {
			options.EndTime = &endTime
		}
	}

	// Get total count for pagination
	total, err := h.store.Count(options)
	if err != nil {
		logging.LogError(err, "Failed to count cleanup events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Get events
	eventsList, err := h.store.List(options)
	if err != nil {
		logging.LogError(err, "Failed to list cleanup events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Build response
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	response := ListCleanupEventsResponse{
		Events:     eventsList,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}

	logging.LogDatabaseOperation("list", "cleanup_events",
		zap.Int("page", page),
		zap.Int("page_size", pageSize),
		zap.Int64("total_results", total),
		zap.String("request_id", options.RequestID),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// getCleanupEventByID handles GET /api/cleanup-events/{id}
func (h *CleanupEventsHandler) getCleanupEventByID(w http.ResponseWriter, r *http.Request, uuid string) {
	event, err := h.store.GetByUUID(uuid)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Cleanup event not found", http.StatusNotFound)
			return
		}
		logging.LogError(err, "Failed to get cleanup event",
			zap.String("uuid", uuid),
		)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logging.Sugar.Infow("Cleanup event retrieved via API",
		"event_uuid", uuid,
		"request_id", event.RequestID,
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

// parseIntParam parses integer parameter with default value
func parseIntParam(param string, defaultValue int) int {
	if param == "" {
		return defaultValue
	}

	if value, err := strconv.Atoi(param); err == nil {
		return value
	}

	return defaultValue
}
