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

// Package slack implements the Slack notification service: it receives
// Meridian webhook events, enriches them from the Meridian API, renders a
// Slack message for the event, and posts it to a Slack incoming webhook.
package slack

import (
	"context"
	"net/http"

	"github.com/abcxyz/pkg/healthcheck"
	"github.com/abcxyz/pkg/logging"
	"github.com/abcxyz/pkg/renderer"

	"github.com/meridianbi/webhook-relay/pkg/events"
	"github.com/meridianbi/webhook-relay/pkg/meridian"
	"github.com/meridianbi/webhook-relay/pkg/version"
)

// Enricher loads the full resource detail for a webhook event.
type Enricher interface {
	EnrichEvent(ctx context.Context, event *events.WebhookEvent) (events.Payload, error)
}

// Server acts as an HTTP server for handling notification requests.
type Server struct {
	h        *renderer.Renderer
	cfg      *Config
	enricher Enricher
	builder  *MessageBuilder
	notifier Notifier
}

// ServerOptions encapsulate server dependency overrides, primarily for
// testing.
type ServerOptions struct {
	EnricherOverride Enricher
	NotifierOverride Notifier
}

// NewServer creates a new instance of the Server.
func NewServer(ctx context.Context, h *renderer.Renderer, cfg *Config, opts *ServerOptions) (*Server, error) {
	if opts == nil {
		opts = &ServerOptions{}
	}

	enricher := opts.EnricherOverride
	if enricher == nil {
		enricher = meridian.NewClient(&cfg.Meridian)
	}

	notifier := opts.NotifierOverride
	if notifier == nil {
		notifier = NewWebhookNotifier(cfg.SlackWebhookURL)
	}

	builder := NewMessageBuilder(cfg.Meridian.BaseURL, AlertRule{
		ReportID:  cfg.AlertReportID,
		Field:     cfg.AlertField,
		Threshold: cfg.AlertThreshold,
	})

	return &Server{
		h:        h,
		cfg:      cfg,
		enricher: enricher,
		builder:  builder,
		notifier: notifier,
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
