/*
Copyright (c) 2025 Fluent Labs

Licensed under the AGPLv3 License.
This file is part of the fluent-hub.
*/

package model

// Prediction contains the raw output of a labeling capability for one
// word sequence: a label id per subword plus the subword→word index map.
type Prediction struct {
	// LabelIDs holds one predicted label id per subword.
	LabelIDs []int

	// WordIDs maps each subword to the index of its originating word,
	// or -1 for special tokens that belong to no word.
	WordIDs []int
}

// Labeler defines the interface for token-classification model services.
// Calls are synchronous and batch-size 1; retries and timeouts beyond the
// client's own are the hosting layer's concern.
type Labeler interface {
	// Predict runs inference on a pre-split word sequence.
	Predict(words []string) (*Prediction, error)

	// Labels returns the model's ordered label vocabulary (id → name).
	Labels() []string

	// Close cleans up resources
	Close() error
}

// Transformer defines the interface for whole-string transform services
// (truecasing, list generation). No per-word labels are produced.
type Transformer interface {
	// Transform rewrites the input text.
	Transform(text string) (string, error)

	// Close cleans up resources
	Close() error
}
