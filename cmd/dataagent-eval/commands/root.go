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

// Package commands holds the CLI command tree.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/google/dataagent-eval/evaluation"
	"github.com/google/dataagent-eval/evaluation/storage"
	"github.com/google/dataagent-eval/internal/config"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

var flags rootFlags

// Root builds the command tree.
func Root() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dataagent-eval",
		Short: "Evaluate a conversational analytics agent against a question set.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(flags.logLevel)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to the YAML run config")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(serveCmd())
	return rootCmd
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

// loadConfig reads the --config file, or returns an empty config when
// none is given.
func loadConfig() (*config.Config, error) {
	if flags.configPath == "" {
		return &config.Config{}, nil
	}
	return config.Load(flags.configPath)
}

// openStorage builds the configured results backend. A missing backend
// is not an error; the run then only produces report files.
func openStorage(cfg config.StorageConfig) (evaluation.Storage, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "file":
		return storage.NewFileStorage(cfg.Path)
	case "sqlite":
		return storage.NewSQLiteStorage(cfg.Path)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
