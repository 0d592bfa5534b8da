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

package slack

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/abcxyz/pkg/logging"

	"github.com/meridianbi/webhook-relay/pkg/events"
)

// mb is one megabyte. Webhook bodies are a few hundred bytes; anything past
// the cap is not a webhook event.
const mb = 1 << 20

// noNotification is the success response for events that render no
// message, a watched run that stayed under its threshold.
const noNotification = "no notification sent"

// handleWebhook receives a Meridian webhook event, enriches it, renders the
// Slack message, and posts it. Slack's raw reply text is echoed back to the
// webhook sender.
func (s *Server) handleWebhook() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		defer r.Body.Close()

		body, err := io.ReadAll(io.LimitReader(r.Body, mb))
		if err != nil {
			logger.ErrorContext(ctx, "failed to read request body", "error", err)
			s.h.RenderJSON(w, http.StatusBadRequest, events.ErrorResult("failed to read request body"))
			return
		}

		event, err := events.ParseRequest(body)
		if err != nil {
			logger.ErrorContext(ctx, "failed to parse webhook event", "error", err)
			s.h.RenderJSON(w, http.StatusBadRequest, events.ErrorResult(err.Error()))
			return
		}

		// Meridian deliveries carry no ID; mint one so the enrich, build,
		// and notify log entries for one event can be correlated.
		deliveryID := uuid.New().String()
		logger.InfoContext(ctx, "received webhook event",
			"delivery_id", deliveryID,
			"event", event.Name,
			"scope", string(event.Scope))

		payload, err := s.enricher.EnrichEvent(ctx, event)
		if err != nil {
			logger.ErrorContext(ctx, "failed to enrich event",
				"delivery_id", deliveryID,
				"event", event.Name,
				"error", err)
			s.h.RenderJSON(w, http.StatusBadGateway, events.ErrorResult(err.Error()))
			return
		}
		payload["event_name"] = event.Name

		msg, err := s.builder.Build(event.Name, payload)
		if err != nil {
			logger.ErrorContext(ctx, "failed to build slack message",
				"delivery_id", deliveryID,
				"event", event.Name,
				"error", err)
			status := http.StatusBadGateway
			if errors.Is(err, events.ErrUnsupportedEvent) {
				status = http.StatusBadRequest
			}
			s.h.RenderJSON(w, status, events.ErrorResult(err.Error()))
			return
		}
		if msg == nil {
			logger.InfoContext(ctx, "event renders no notification",
				"delivery_id", deliveryID,
				"event", event.Name)
			s.h.RenderJSON(w, http.StatusOK, events.SuccessResult(noNotification))
			return
		}

		reply, err := s.notifier.Notify(ctx, msg)
		if err != nil {
			logger.ErrorContext(ctx, "failed to notify slack",
				"delivery_id", deliveryID,
				"event", event.Name,
				"error", err)
			s.h.RenderJSON(w, http.StatusBadGateway, events.ErrorResult(err.Error()))
			return
		}

		logger.InfoContext(ctx, "sent slack notification",
			"delivery_id", deliveryID,
			"event", event.Name)
		s.h.RenderJSON(w, http.StatusOK, events.SuccessResult(reply))
	})
}
