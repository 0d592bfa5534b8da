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

package usage

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

// ignored is the success response for supported event kinds that do not
// touch the usage log.
const ignored = "ignored"

// handleWebhook receives a Meridian webhook event and, for completed report
// runs, appends one CSV row per query run to the usage log. Every other
// supported kind is acknowledged without logging anything.
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

		// Meridian deliveries carry no ID; mint one so the fetch and append
		// log entries for one event can be correlated.
		deliveryID := uuid.New().String()
		logger.InfoContext(ctx, "received webhook event",
			"delivery_id", deliveryID,
			"event", event.Name,
			"scope", string(event.Scope))

		if event.Name != events.EventReportRunCompleted {
			logger.InfoContext(ctx, "event does not touch the usage log",
				"delivery_id", deliveryID,
				"event", event.Name)
			s.h.RenderJSON(w, http.StatusOK, events.SuccessResult(ignored))
			return
		}

		docs, err := s.source.QueryRuns(ctx, event.URL)
		if err != nil {
			logger.ErrorContext(ctx, "failed to fetch query runs",
				"delivery_id", deliveryID,
				"event", event.Name,
				"error", err)
			s.h.RenderJSON(w, http.StatusBadGateway, events.ErrorResult(err.Error()))
			return
		}

		rows := make([]*QueryRunRow, 0, len(docs))
		for _, doc := range docs {
			row, err := NewQueryRunRow(doc)
			if err != nil {
				logger.ErrorContext(ctx, "failed to project query run",
					"delivery_id", deliveryID,
					"event", event.Name,
					"error", err)
				s.h.RenderJSON(w, http.StatusBadGateway, events.ErrorResult(err.Error()))
				return
			}
			rows = append(rows, row)
		}

		if err := s.log.Append(rows); err != nil {
			logger.ErrorContext(ctx, "failed to append usage rows",
				"delivery_id", deliveryID,
				"event", event.Name,
				"error", err)
			s.h.RenderJSON(w, http.StatusInternalServerError, events.ErrorResult(err.Error()))
			return
		}

		logger.InfoContext(ctx, "appended usage rows",
			"delivery_id", deliveryID,
			"event", event.Name,
			"rows", len(rows))
		s.h.RenderJSON(w, http.StatusOK, events.SuccessResult(map[string]any{"rows_logged": len(rows)}))
	})
}
