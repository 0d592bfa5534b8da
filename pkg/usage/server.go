// Copyright 2026 The Authors (see AUTHORS file)
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

// Package usage implements the usage log service: it receives Meridian
// webhook events and records the query runs behind each completed report
// run as rows of a local CSV file.
package usage

import (
	"context"
	"net/http"

	"github.com/abcxyz/pkg/healthcheck"
	"github.com/abcxyz/pkg/logging"
	"github.com/abcxyz/pkg/renderer"

	"github.com/meridianbi/webhook-relay/pkg/meridian"
	"github.com/meridianbi/webhook-relay/pkg/version"
)

// QueryRunSource lists the query runs recorded for a report run.
type QueryRunSource interface {
	QueryRuns(ctx context.Context, runURL string) ([]map[string]any, error)
}

// Server acts as an HTTP server for handling usage log requests.
type Server struct {
	h      *renderer.Renderer
	cfg    *Config
	source QueryRunSource
	log    *CSVLog
}

// ServerOptions encapsulate server dependency overrides, primarily for
// testing.
type ServerOptions struct {
	SourceOverride QueryRunSource
}

// NewServer creates a new instance of the Server.
func NewServer(ctx context.Context, h *renderer.Renderer, cfg *Config, opts *ServerOptions) (*Server, error) {
	if opts == nil {
		opts = &ServerOptions{}
	}

	source := opts.SourceOverride
	if source == nil {
		source = meridian.NewClient(&cfg.Meridian)
	}

	return &Server{
		h:      h,
		cfg:    cfg,
		source: source,
		log:    NewCSVLog(cfg.LogPath),
	}, nil
}

// Routes creates a ServeMux of all of the routes that this Router supports.
func (s *Server) Routes(ctx context.Context) http.Handler {
	logger := logging.FromContext(ctx)
	mux := http.NewServeMux()
	mux.Handle("/healthz", healthcheck.HandleHTTPHealthCheck())
	mux.Handle("/webhook", s.handleWebhook())
	mux.Handle("/version", s.handleVersion())

	// Middleware
	root := logging.HTTPInterceptor(logger, "")(mux)

	return root
}

// handleVersion responds with version information for the server.
func (s *Server) handleVersion() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.h.RenderJSON(w, http.StatusOK, map[string]string{"version": version.HumanVersion})
	})
}
