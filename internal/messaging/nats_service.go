package messaging

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSService handles NATS messaging for the Fluent system
type NATSService struct {
	conn *nats.Conn
	url  string
}

// TranscriptCleanedEvent announces that a transcript finished the cleanup
// pipeline
type TranscriptCleanedEvent struct {
	RequestID      string   `json:"request_id"`
	UUID           string   `json:"uuid"`
	Input          string   `json:"input"`
	Output         string   `json:"output"`
	Stages         []string `json:"stages"`
	ProcessingTime int64    `json:"processing_time_ms"`
	Success        bool     `json:"success"`
	Timestamp      int64    `json:"timestamp"`
}

// TranscriptFailedEvent announces that a cleanup request failed
type TranscriptFailedEvent struct {
	RequestID string `json:"request_id"`
	UUID      string `json:"uuid"`
	Input     string `json:"input"`
	Error     string `json:"error"`
	Timestamp int64  `json:"timestamp"`
}

// NATS subjects for different event types
const (
	SubjectTranscriptsCleaned = "fluent.transcripts.cleaned"
	SubjectTranscriptsFailed  = "fluent.transcripts.failed"
	SubjectSystemEvents       = "fluent.system.events"
)

// NewNATSService creates a new NATS service instance
func NewNATSService(url string) (*NATSService, error) {
	if url == "" {
		url = "nats://localhost:4222"
	}

	return &NATSService{
		url: url,
	}, nil
}

// Connect establishes connection to NATS server
func (ns *NATSService) Connect() error {
	log.Printf("🔌 Connecting to NATS at %s", ns.url)

	// Connection options with retry logic
	opts := []nats.Option{
		nats.Name("fluent-hub"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1), // Retry indefinitely
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("⚠️  NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("🔄 NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Println("🔌 NATS connection closed")
		}),
	}

	conn, err := nats.Connect(ns.url, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	ns.conn = conn
	log.Printf("✅ Connected to NATS server at %s", conn.ConnectedUrl())
	return nil
}

// PublishTranscriptCleaned publishes a transcript-cleaned event
func (ns *NATSService) PublishTranscriptCleaned(event *TranscriptCleanedEvent) error {
	if ns.conn == nil {
		return fmt.Errorf("NATS connection not established")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript cleaned event: %w", err)
	}

	subject := SubjectTranscriptsCleaned
	if err := ns.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	log.Printf("📤 Published transcript cleaned to NATS - RequestID: %s, Stages: %v",
		event.RequestID, event.Stages)
	return nil
}

// PublishTranscriptFailed publishes a transcript-failed event
func (ns *NATSService) PublishTranscriptFailed(event *TranscriptFailedEvent) error {
	if ns.conn == nil {
		return fmt.Errorf("NATS connection not established")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript failed event: %w", err)
	}

	if err := ns.conn.Publish(SubjectTranscriptsFailed, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", SubjectTranscriptsFailed, err)
	}

	log.Printf("📤 Published transcript failure to NATS - RequestID: %s", event.RequestID)
	return nil
}

// SubscribeToTranscriptsCleaned subscribes to transcript-cleaned events
func (ns *NATSService) SubscribeToTranscriptsCleaned(handler func(*TranscriptCleanedEvent)) (*nats.Subscription, error) {
	if ns.conn == nil {
		return nil, fmt.Errorf("NATS connection not established")
	}

	return ns.conn.Subscribe(SubjectTranscriptsCleaned, func(msg *nats.Msg) {
		var event TranscriptCleanedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Printf("❌ Error unmarshaling transcript cleaned event: %v", err)
			return
		}

		log.Printf("📥 Received transcript cleaned from NATS - RequestID: %s", event.RequestID)
		handler(&event)
	})
}

// SubscribeToTranscriptsFailed subscribes to transcript-failed events
func (ns *NATSService) SubscribeToTranscriptsFailed(handler func(*TranscriptFailedEvent)) (*nats.Subscription, error) {
	if ns.conn == nil {
		return nil, fmt.Errorf("NATS connection not established")
	}

	return ns.conn.Subscribe(SubjectTranscriptsFailed, func(msg *nats.Msg) {
		var event TranscriptFailedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Printf("❌ Error unmarshaling transcript failed event: %v", err)
			return
		}

		log.Printf("📥 Received transcript failure from NATS - RequestID: %s", event.RequestID)
		handler(&event)
	})
}

// Close closes the NATS connection
func (ns *NATSService) Close() {
	if ns.conn != nil {
		ns.conn.Close()
		log.Println("🔌 NATS connection closed")
	}
}

// IsConnected returns true if connected to NATS
func (ns *NATSService) IsConnected() bool {
	return ns.conn != nil && ns.conn.IsConnected()
}

// GetStats returns connection statistics
func (ns *NATSService) GetStats() nats.Statistics {
	if ns.conn != nil {
		return ns.conn.Stats()
	}
	return nats.Statistics{}
}
