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

package relay

import (
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/abcxyz/pkg/logging"

	"github.com/meridianbi/webhook-relay/pkg/events"
)

// mb is one megabyte. Webhook bodies are a few hundred bytes; anything past
// the cap is not a webhook event.
const mb = 1 << 20

// handleWebhook receives a Meridian webhook event, enriches it, and forwards
// the enriched payload to the destination. The destination's reply is echoed
// back to the webhook sender.
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

		// Meridian deliveries carry no ID; mint one so the enrich and
		// forward log entries for one event can be correlated.
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

		reply, err := s.forwarder.Forward(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "failed to forward payload",
				"delivery_id", deliveryID,
				"event", event.Name,
				"error", err)
			s.h.RenderJSON(w, http.StatusBadGateway, events.ErrorResult(err.Error()))
			return
		}

		logger.InfoContext(ctx, "forwarded enriched event",
			"delivery_id", deliveryID,
			"event", event.Name)
		s.h.RenderJSON(w, http.StatusOK, events.SuccessResult(reply))
	})
}
