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

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fluentlabs/fluent-hub/internal/config"
	"github.com/fluentlabs/fluent-hub/internal/logging"
	"github.com/fluentlabs/fluent-hub/internal/messaging"
	"github.com/fluentlabs/fluent-hub/internal/model"
	"github.com/fluentlabs/fluent-hub/internal/pipeline"
	"github.com/fluentlabs/fluent-hub/internal/server"
	"github.com/fluentlabs/fluent-hub/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	if err := logging.InitializeWithConfig(logging.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	// Open the audit database
	db, err := storage.NewDatabase(storage.DatabaseConfig{Path: cfg.Server.DBPath})
	if err != nil {
		logging.LogError(err, "Failed to open database")
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	store := storage.NewCleanupEventsStore(db)

	// Connect to NATS when enabled
	var natsService *messaging.NATSService
	if cfg.NATS.Enabled {
		natsService, err = messaging.NewNATSService(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("Failed to create NATS service: %v", err)
		}
		if err := natsService.Connect(); err != nil {
			logging.LogError(err, "Failed to connect to NATS")
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer natsService.Close()
	}

	// Register model capabilities. Each factory health-checks its
	// service on first use, so a stage's model being down is detected
	// when the pipeline is assembled.
	registry := model.NewRegistry()
	registry.RegisterLabeler(pipeline.StageFiller, func() (model.Labeler, error) {
		return model.NewHTTPLabeler(cfg.Models.FillerURL, cfg.Models.Timeout)
	})
	registry.RegisterLabeler(pipeline.StageRepetition, func() (model.Labeler, error) {
		return model.NewHTTPLabeler(cfg.Models.RepetitionURL, cfg.Models.Timeout)
	})
	registry.RegisterLabeler(pipeline.StageRepair, func() (model.Labeler, error) {
		return model.NewHTTPLabeler(cfg.Models.RepairURL, cfg.Models.Timeout)
	})
	registry.RegisterTransformer(pipeline.StageTruecase, func() (model.Transformer, error) {
		return model.NewTransformClient(cfg.Models.TruecaseURL, cfg.Models.Timeout)
	})
	registry.RegisterTransformer(pipeline.StageList, func() (model.Transformer, error) {
		return model.NewTransformClient(cfg.Models.ListURL, cfg.Models.Timeout)
	})
	defer func() { _ = registry.Close() }()

	// Assemble the pipeline in the fixed semantic order
	result, err := pipeline.Build(cfg.Pipeline, registry)
	if err != nil {
		logging.LogError(err, "Failed to build pipeline")
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	srv := server.New(cfg, server.Options{
		Pipeline:      result.Pipeline,
		Registry:      registry,
		Store:         store,
		NATS:          natsService,
		SkippedStages: result.Skipped,
	})

	logging.Sugar.Infow("🚀 fluent-hub starting",
		"http_port", cfg.Server.Port,
		"db_path", cfg.Server.DBPath,
		"stages", result.Pipeline.StageNames(),
		"skipped_stages", result.Skipped,
	)

	// Shut down cleanly on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		if err := srv.Stop(); err != nil {
			logging.LogError(err, "Failed to stop server")
		}
	}()

	if err := srv.Start(); err != nil {
		logging.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
