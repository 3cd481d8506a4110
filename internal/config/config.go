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

// Package config loads the YAML run configuration for the evaluation
// CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full run configuration. Zero values mean "use the
// default"; command-line flags override file values.
type Config struct {
	// Dataset is the path of the JSON question set to evaluate.
	Dataset string `yaml:"dataset"`

	// Fixtures is the path of a replay fixture file. When set, the run
	// plays back canned responses instead of calling a live agent.
	Fixtures string `yaml:"fixtures"`

	// Metrics selects the metrics to run. Empty means the default set.
	Metrics []string `yaml:"metrics"`

	// CorrectnessThreshold is the score a metric must reach for a
	// question to count as correct. Zero means 1.0.
	CorrectnessThreshold float64 `yaml:"correctness_threshold"`

	// QuestionTimeout bounds agent call plus scoring per question,
	// written in Go duration syntax ("90s", "2m").
	QuestionTimeout Duration `yaml:"question_timeout"`

	// AgentID and ConversationID identify the server-side conversation.
	AgentID        string `yaml:"agent_id"`
	ConversationID string `yaml:"conversation_id"`

	// Storage selects the results backend.
	Storage StorageConfig `yaml:"storage"`

	// Judge configures the LLM judge metric.
	Judge JudgeConfig `yaml:"judge"`

	// Output configures the report artifacts.
	Output OutputConfig `yaml:"output"`
}

// Duration wraps time.Duration so YAML can carry "90s" style values.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// StorageConfig selects and locates the results backend.
type StorageConfig struct {
	// Backend is one of "memory", "file" or "sqlite". Empty means no
	// persistence beyond the report files.
	Backend string `yaml:"backend"`

	// Path is the file backend's base directory or the sqlite database
	// file.
	Path string `yaml:"path"`
}

// JudgeConfig configures the LLM judge metric.
type JudgeConfig struct {
	// Model names the judge model, e.g. "gemini-2.0-flash".
	Model string `yaml:"model"`

	// NumSamples is how many times each criterion is sampled. Zero
	// means 1.
	NumSamples int `yaml:"num_samples"`
}

// OutputConfig locates the report artifacts.
type OutputConfig struct {
	ResultsJSON    string `yaml:"results_json"`
	ReportMarkdown string `yaml:"report_markdown"`
}

// Load reads a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}
