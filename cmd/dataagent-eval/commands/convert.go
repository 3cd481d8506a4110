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

package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/google/dataagent-eval/dataset"
)

func convertCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "convert <questions.csv>",
		Short: "Convert a CSV question export into the JSON question-set format.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dataset.ConvertCSV(args[0], out); err != nil {
				return err
			}
			slog.Info("converted question set", "from", args[0], "to", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "questions.json", "Output JSON path")
	return cmd
}
