/*
Copyright (c) 2025 Fluent Labs

Licensed under the AGPLv3 License.
This file is part of the fluent-hub.
*/

package model

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/fluentlabs/fluent-hub/internal/logging"
)

func initTestLogging(t *testing.T) {
	t.Helper()
	if err := logging.Initialize(); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	t.Cleanup(logging.Close)
}

// fakeModelService stands in for a token-classification model service.
func fakeModelService(t *testing.T, labels []string, predict func(words []string) ([]int, []int)) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/labels", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]string{"labels": labels})
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Words []string `json:"words"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		labelIDs, wordIDs := predict(req.Words)
		_ = json.NewEncoder(w).Encode(map[string][]int{
			"label_ids": labelIDs,
			"word_ids":  wordIDs,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewHTTPLabeler(t *testing.T) {
	initTestLogging(t)

	labels := []string{"O", "B-FILL", "I-FILL"}
	srv := fakeModelService(t, labels, func(words []string) ([]int, []int) {
		return make([]int, len(words)), seq(len(words))
	})

	labeler, err := NewHTTPLabeler(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewHTTPLabeler() error = %v", err)
	}
	defer func() { _ = labeler.Close() }()

	if got := labeler.Labels(); !reflect.DeepEqual(got, labels) {
		t.Errorf("Labels() = %v, want %v", got, labels)
	}
}

func TestNewHTTPLabeler_UnreachableService(t *testing.T) {
	initTestLogging(t)

	if _, err := NewHTTPLabeler("http://127.0.0.1:1", time.Second); err == nil {
		t.Fatal("NewHTTPLabeler() expected error for unreachable service")
	}
}

func TestNewHTTPLabeler_EmptyURL(t *testing.T) {
	if _, err := NewHTTPLabeler("", time.Second); err == nil {
		t.Fatal("NewHTTPLabeler() expected error for empty URL")
	}
}

func TestHTTPLabeler_Predict(t *testing.T) {
	initTestLogging(t)

	srv := fakeModelService(t, []string{"O", "B-FILL"}, func(words []string) ([]int, []int) {
		// Subword split: the first word expands into two subwords.
		labelIDs := []int{-100, 1, 1, 0}
		wordIDs := []int{-1, 0, 0, 1}
		return labelIDs, wordIDs
	})

	labeler, err := NewHTTPLabeler(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewHTTPLabeler() error = %v", err)
	}

	pred, err := labeler.Predict([]string{"uh", "think"})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	if !reflect.DeepEqual(pred.LabelIDs, []int{-100, 1, 1, 0}) {
		t.Errorf("LabelIDs = %v", pred.LabelIDs)
	}
	if !reflect.DeepEqual(pred.WordIDs, []int{-1, 0, 0, 1}) {
		t.Errorf("WordIDs = %v", pred.WordIDs)
	}
}

func TestHTTPLabeler_Predict_LengthMismatch(t *testing.T) {
	initTestLogging(t)

	srv := fakeModelService(t, []string{"O"}, func(words []string) ([]int, []int) {
		return []int{0, 0}, []int{0}
	})

	labeler, err := NewHTTPLabeler(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewHTTPLabeler() error = %v", err)
	}

	if _, err := labeler.Predict([]string{"word"}); err == nil {
		t.Fatal("Predict() expected error for label/word id length mismatch")
	}
}

func TestHTTPLabeler_Predict_EmptyInput(t *testing.T) {
	initTestLogging(t)

	srv := fakeModelService(t, []string{"O"}, func(words []string) ([]int, []int) {
		return nil, nil
	})

	labeler, err := NewHTTPLabeler(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewHTTPLabeler() error = %v", err)
	}

	if _, err := labeler.Predict(nil); err == nil {
		t.Fatal("Predict() expected error for empty word sequence")
	}
}

func TestTransformClient(t *testing.T) {
	initTestLogging(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "Transformed: " + req.Text})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewTransformClient(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewTransformClient() error = %v", err)
	}
	defer func() { _ = client.Close() }()

	got, err := client.Transform("hello world")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if got != "Transformed: hello world" {
		t.Errorf("Transform() = %q", got)
	}
}

func TestNewTransformClient_UnreachableService(t *testing.T) {
	initTestLogging(t)

	if _, err := NewTransformClient("http://127.0.0.1:1", time.Second); err == nil {
		t.Fatal("NewTransformClient() expected error for unreachable service")
	}
}

func seq(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}
