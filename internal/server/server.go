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

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fluentlabs/fluent-hub/internal/api"
	"github.com/fluentlabs/fluent-hub/internal/config"
	"github.com/fluentlabs/fluent-hub/internal/events"
	"github.com/fluentlabs/fluent-hub/internal/listfmt"
	"github.com/fluentlabs/fluent-hub/internal/logging"
	"github.com/fluentlabs/fluent-hub/internal/messaging"
	"github.com/fluentlabs/fluent-hub/internal/model"
	"github.com/fluentlabs/fluent-hub/internal/pipeline"
	"github.com/fluentlabs/fluent-hub/internal/storage"
)

// Server represents the HTTP Fluent hub
type Server struct {
	cfg    *config.Config
	mux    *http.ServeMux
	server *http.Server

	pipeline      *pipeline.Pipeline
	registry      *model.Registry
	store         *storage.CleanupEventsStore
	nats          *messaging.NATSService
	skippedStages []string

	eventsHandler *api.CleanupEventsHandler

	// Server context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// Options carries the components the server hosts. Store and NATS are
// optional; processing works without either, it just leaves no audit
// trail or published events.
type Options struct {
	Pipeline      *pipeline.Pipeline
	Registry      *model.Registry
	Store         *storage.CleanupEventsStore
	NATS          *messaging.NATSService
	SkippedStages []string
}

// New creates a new server hosting the cleanup pipeline
func New(cfg *config.Config, opts Options) *Server {
	mux := http.NewServeMux()

	// Create server context
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:           cfg,
		mux:           mux,
		pipeline:      opts.Pipeline,
		registry:      opts.Registry,
		store:         opts.Store,
		nats:          opts.NATS,
		skippedStages: opts.SkippedStages,
		ctx:           ctx,
		cancel:        cancel,
	}

	if s.store != nil {
		s.eventsHandler = api.NewCleanupEventsHandler(s.store)
	}

	// Set up HTTP server
	s.server = &http.Server{
		Addr:         ":" + strconv.Itoa(s.cfg.Server.Port),
		Handler:      s.mux,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Set up routes
	s.routes()

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	logging.Sugar.Infow("🚀 Fluent Hub starting",
		"http_port", s.cfg.Server.Port,
		"stages", s.pipeline.StageNames(),
		"skipped_stages", s.skippedStages)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	logging.Sugar.Infow("🛑 Shutting down Fluent Hub")

	// Cancel context to stop background services
	s.cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logging.Sugar.Infow("✅ Fluent Hub shut down successfully")
	return nil
}

// Handler returns the server's HTTP handler, for tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// routes sets up HTTP routing
func (s *Server) routes() {
	// Health check
	s.mux.HandleFunc("/health", s.handleHealth)

	// Cleanup endpoints
	s.mux.HandleFunc("/process", s.handleProcess)
	s.mux.HandleFunc("/process/", s.handleProcessStage)

	// Audit trail endpoints
	if s.eventsHandler != nil {
		s.mux.HandleFunc("/api/cleanup-events", s.eventsHandler.HandleCleanupEvents)
		s.mux.HandleFunc("/api/cleanup-events/", s.eventsHandler.HandleCleanupEventByID)
	}

	logging.Sugar.Infow("🌐 HTTP routes configured",
		"process_endpoint", "/process",
		"stage_endpoint", "/process/{stage}",
		"events_endpoint", "/api/cleanup-events")
}

// handleHealth provides system health information
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":         "ok",
		"timestamp":      time.Now(),
		"stages":         s.pipeline.StageNames(),
		"skipped_stages": s.skippedStages,
		"loaded_models":  s.registry.LoadedKinds(),
	}

	if s.nats != nil {
		health["nats_connected"] = s.nats.IsConnected()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := writeJSON(w, health); err != nil {
		logging.Sugar.Errorw("Failed to write health response", "error", err)
	}
}

// processRequest is the body of POST /process and POST /process/{stage}.
// ListStyle selects the list rendering for this request: "bullets"
// (default) keeps the pipeline output as is, "numbered" rewrites bullet
// lines as a numbered list. Any other value is treated as "bullets".
type processRequest struct {
	Text      string `json:"text"`
	RequestID string `json:"request_id,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"`
	ListStyle string `json:"list_style,omitempty"`
}

// processResponse is the reply for POST /process
type processResponse struct {
	RequestID      string          `json:"request_id"`
	UUID           string          `json:"uuid"`
	Input          string          `json:"input"`
	Output         string          `json:"output"`
	Stages         []string        `json:"stages"`
	Steps          []pipeline.Step `json:"steps,omitempty"`
	ProcessingTime int64           `json:"processing_time_ms"`
}

// handleProcess runs text through the full cleanup pipeline
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req processRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.RequestID == "" {
		req.RequestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
	}

	event := events.NewCleanupEvent(req.RequestID, req.Text)
	stages := s.pipeline.StageNames()

	details, err := s.pipeline.ProcessWithDetails(req.Text)
	if err != nil {
		event.SetError(err)
		s.recordEvent(event)
		logging.Sugar.Errorw("Cleanup processing failed",
			"request_id", req.RequestID,
			"error", err)
		http.Error(w, "Processing failed", http.StatusInternalServerError)
		return
	}

	if req.ListStyle == "numbered" {
		details.Output = listfmt.NumberLines(details.Output)
	}

	event.SetResult(details, stages)
	s.recordEvent(event)

	resp := processResponse{
		RequestID:      event.RequestID,
		UUID:           event.UUID,
		Input:          details.Input,
		Output:         details.Output,
		Stages:         stages,
		ProcessingTime: event.ProcessingTime,
	}
	if req.Detailed {
		resp.Steps = details.Steps
	}

	logging.Sugar.Infow("Transcript cleaned",
		"request_id", event.RequestID,
		"event_uuid", event.UUID,
		"stages", stages,
		"processing_time_ms", event.ProcessingTime)

	w.Header().Set("Content-Type", "application/json")
	if err := writeJSON(w, resp); err != nil {
		logging.Sugar.Errorw("Failed to write process response", "error", err)
	}
}

// handleProcessStage runs text through a single named stage
func (s *Server) handleProcessStage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/process/")
	if name == "" || strings.Contains(name, "/") {
		http.Error(w, "Stage name is required", http.StatusBadRequest)
		return
	}

	stage, ok := s.pipeline.Stage(name)
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown stage: %s", name), http.StatusNotFound)
		return
	}

	var req processRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	output, err := stage.Process(req.Text)
	if err != nil {
		logging.Sugar.Errorw("Stage processing failed",
			"stage", name,
			"error", err)
		http.Error(w, "Processing failed", http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"stage":  name,
		"input":  req.Text,
		"output": output,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := writeJSON(w, resp); err != nil {
		logging.Sugar.Errorw("Failed to write stage response", "error", err)
	}
}

// recordEvent stores the audit event and publishes it to NATS. Both are
// best-effort; a failed audit never fails the request.
func (s *Server) recordEvent(event *events.CleanupEvent) {
	if s.store != nil {
		if err := s.store.Insert(event); err != nil {
			logging.LogError(err, "Failed to store cleanup event")
		}
	}

	if s.nats == nil || !s.nats.IsConnected() {
		return
	}

	if event.Success {
		err := s.nats.PublishTranscriptCleaned(&messaging.TranscriptCleanedEvent{
			RequestID:      event.RequestID,
			UUID:           event.UUID,
			Input:          event.Input,
			Output:         event.Output,
			Stages:         event.Stages,
			ProcessingTime: event.ProcessingTime,
			Success:        true,
			Timestamp:      event.Timestamp.UnixNano(),
		})
		if err != nil {
			logging.LogError(err, "Failed to publish transcript cleaned event")
			return
		}
		logging.LogNATSEvent(messaging.SubjectTranscriptsCleaned, "publish",
			zap.String("event_uuid", event.UUID))
		return
	}

	err := s.nats.PublishTranscriptFailed(&messaging.TranscriptFailedEvent{
		RequestID: event.RequestID,
		UUID:      event.UUID,
		Input:     event.Input,
		Error:     event.ErrorMessage,
		Timestamp: event.Timestamp.UnixNano(),
	})
	if err != nil {
		logging.LogError(err, "Failed to publish transcript failed event")
		return
	}
	logging.LogNATSEvent(messaging.SubjectTranscriptsFailed, "publish",
		zap.String("event_uuid", event.UUID))
}

// Helper functions

func writeJSON(w http.ResponseWriter, data interface{}) error {
	return json.NewEncoder(w).Encode(data)
}

func readJSON(r *http.Request, data interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	defer func() { _ = r.Body.Close() }()

	return json.Unmarshal(body, data)
}
