/*
Copyright (c) 2025 Fluent Labs

Licensed under the AGPLv3 License.
This file is part of the fluent-hub.
*/

package model

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a load-once cache of model capabilities keyed by stage kind.
// The hosting layer owns it and passes it to the pipeline builder by
// reference. First initialization of each capability is mutex-guarded, so
// concurrent first use from server goroutines is safe. A failed
// construction is not cached; the next request tries again.
type Registry struct {
	mu sync.Mutex

	labelerFactories     map[string]func() (Labeler, error)
	transformerFactories map[string]func() (Transformer, error)

	labelers     map[string]Labeler
	transformers map[string]Transformer
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		labelerFactories:     make(map[string]func() (Labeler, error)),
		transformerFactories: make(map[string]func() (Transformer, error)),
		labelers:             make(map[string]Labeler),
		transformers:         make(map[string]Transformer),
	}
}

// RegisterLabeler registers a factory for a labeling capability
func (r *Registry) RegisterLabeler(kind string, factory func() (Labeler, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labelerFactories[kind] = factory
}

// RegisterTransformer registers a factory for a transform capability
func (r *Registry) RegisterTransformer(kind string, factory func() (Transformer, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transformerFactories[kind] = factory
}

// Labeler returns the cached labeler for a kind, constructing it on first
// use
func (r *Registry) Labeler(kind string) (Labeler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.labelers[kind]; ok {
		return l, nil
	}

	factory, ok := r.labelerFactories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown labeler kind: %q", kind)
	}

	l, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to construct labeler %q: %w", kind, err)
	}

	r.labelers[kind] = l
	return l, nil
}

// Transformer returns the cached transformer for a kind, constructing it
// on first use
func (r *Registry) Transformer(kind string) (Transformer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.transformers[kind]; ok {
		return t, nil
	}

	factory, ok := r.transformerFactories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown transformer kind: %q", kind)
	}

	t, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to construct transformer %q: %w", kind, err)
	}

	r.transformers[kind] = t
	return t, nil
}

// LoadedKinds returns the kinds whose capability has been constructed,
// sorted for stable reporting
func (r *Registry) LoadedKinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]string, 0, len(r.labelers)+len(r.transformers))
	for kind := range r.labelers {
		kinds = append(kinds, kind)
	}
	for kind := range r.transformers {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Close closes every constructed capability
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for kind, l := range r.labelers {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close labeler %q: %w", kind, err)
		}
	}
	for kind, t := range r.transformers {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close transformer %q: %w", kind, err)
		}
	}
	return firstErr
}
