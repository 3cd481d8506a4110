// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package evaluation

import (
	"fmt"
	"sync"
)

// ScorerFactory creates a scorer for a specific metric.
type ScorerFactory func(config ScorerConfig) (Scorer, error)

// ScorerConfig provides configuration for scorer creation. Only the
// LLM-judge metric consumes it; the algorithmic scorers ignore it.
type ScorerConfig struct {
	// LLM is the model client for LLM-judged metrics. Declared as any to
	// keep the core free of a model dependency; the judge package
	// asserts the concrete type.
	LLM any

	// JudgeModel is the model name for LLM-judged metrics.
	JudgeModel string

	// NumSamples is the number of judge samples per question.
	NumSamples int
}

// Registry manages available scorers per metric.
type Registry struct {
	mu        sync.RWMutex
	factories map[MetricType]ScorerFactory
}

// NewRegistry creates an empty scorer registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[MetricType]ScorerFactory)}
}

// Register registers a scorer factory for a metric type.
func (r *Registry) Register(metricType MetricType, factory ScorerFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[metricType]; exists {
		return fmt.Errorf("scorer already registered for metric %s", metricType)
	}
	r.factories[metricType] = factory
	return nil
}

// CreateScorer creates a scorer instance for a metric.
func (r *Registry) CreateScorer(metricType MetricType, config ScorerConfig) (Scorer, error) {
	r.mu.RLock()
	factory, exists := r.factories[metricType]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("no scorer registered for metric %s", metricType)
	}
	return factory(config)
}

// ListMetrics returns all registered metric types.
func (r *Registry) ListMetrics() []MetricType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metrics := make([]MetricType, 0, len(r.factories))
	for metricType := range r.factories {
		metrics = append(metrics, metricType)
	}
	return metrics
}

// IsRegistered checks if a scorer is registered for a metric type.
func (r *Registry) IsRegistered(metricType MetricType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[metricType]
	return exists
}

// DefaultRegistry is the global registry instance. The algorithmic
// scorers register themselves here; the LLM judge registers from its own
// package.
var DefaultRegistry = NewRegistry()

// Register registers a scorer factory in the default registry.
func Register(metricType MetricType, factory ScorerFactory) error {
	return DefaultRegistry.Register(metricType, factory)
}

// CreateScorer creates a scorer using the default registry.
func CreateScorer(metricType MetricType, config ScorerConfig) (Scorer, error) {
	return DefaultRegistry.CreateScorer(metricType, config)
}

func init() {
	// The four algorithmic metrics need no configuration.
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(Register(MetricTableMatch, func(ScorerConfig) (Scorer, error) { return NewTableScorer(), nil }))
	must(Register(MetricQueryMatch, func(ScorerConfig) (Scorer, error) { return NewQueryScorer(), nil }))
	must(Register(MetricTextMatch, func(ScorerConfig) (Scorer, error) { return NewTextScorer(), nil }))
	must(Register(MetricChartMatch, func(ScorerConfig) (Scorer, error) { return NewChartScorer(), nil }))
}
