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

package report

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/google/dataagent-eval/evaluation"
)

// Server exposes stored run results over HTTP:
//
//	GET /api/runs            list run summaries, ?dataset= filters
//	GET /api/runs/{id}       full run result
//	GET /api/runs/{id}/report   Markdown report
type Server struct {
	storage evaluation.Storage
	logger  *slog.Logger
	router  *mux.Router
}

// NewServer builds the HTTP surface over a storage backend.
func NewServer(storage evaluation.Storage, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{storage: storage, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/api/runs", s.handleListRuns).Methods(http.MethodGet)
	r.HandleFunc("/api/runs/{id}", s.handleGetRun).Methods(http.MethodGet)
	r.HandleFunc("/api/runs/{id}/report", s.handleGetReport).Methods(http.MethodGet)
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	var (
		results []evaluation.RunResult
		err     error
	)
	if dataset := r.URL.Query().Get("dataset"); dataset != "" {
		results, err = s.storage.ListRunResultsByDataset(r.Context(), dataset)
	} else {
		results, err = s.storage.ListRunResults(r.Context())
	}
	if err != nil {
		s.serveError(w, err)
		return
	}

	summaries := make([]evaluation.RunSummary, 0, len(results))
	for _, res := range results {
		summaries = append(summaries, res.Summary)
	}
	s.serveJSON(w, summaries)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	result, err := s.storage.GetRunResult(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.serveError(w, err)
		return
	}
	s.serveJSON(w, result)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.storage.GetRunResult(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.serveError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if err := WriteMarkdown(result, w); err != nil {
		s.logger.Error("writing markdown report", "error", err)
	}
}

func (s *Server) serveJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) serveError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, evaluation.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, evaluation.ErrInvalidInput):
		code = http.StatusBadRequest
	}
	s.logger.Warn("request failed", "error", err, "status", code)
	http.Error(w, err.Error(), code)
}
