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

package meridian

import (
	"context"
	"fmt"
	"maps"

	"github.com/abcxyz/pkg/logging"

	"github.com/meridianbi/webhook-relay/pkg/events"
)

// EnrichEvent loads the full resource detail for a webhook event from the
// Meridian API. The event's scope selects the fetchers; fetches run
// sequentially and the first failure aborts the enrichment, so a payload is
// either complete or absent.
func (c *Client) EnrichEvent(ctx context.Context, event *events.WebhookEvent) (events.Payload, error) {
	logger := logging.FromContext(ctx)
	logger.DebugContext(ctx, "enriching webhook event",
		"event", event.Name,
		"scope", string(event.Scope),
		"url", event.URL)

	eventURL := c.EventURL(event.URL)

	switch event.Scope {
	case events.ScopeReportRun:
		payload, err := c.ReportRunInfo(ctx, eventURL.URL())
		if err != nil {
			return nil, err
		}

		report, err := c.ReportInfo(ctx, eventURL.ReportURL())
		if err != nil {
			return nil, err
		}
		maps.Copy(payload, report)

		space, err := c.spaceForReport(ctx, eventURL, payload)
		if err != nil {
			return nil, err
		}
		maps.Copy(payload, space)

		return payload, nil

	case events.ScopeReport:
		payload, err := c.ReportInfo(ctx, eventURL.URL())
		if err != nil {
			return nil, err
		}

		space, err := c.spaceForReport(ctx, eventURL, payload)
		if err != nil {
			return nil, err
		}
		maps.Copy(payload, space)

		return payload, nil

	case events.ScopeDefinition:
		return c.DefinitionInfo(ctx, eventURL)

	case events.ScopeConnection:
		return c.ConnectionInfo(ctx, eventURL)

	case events.ScopeMembership:
		return c.MembershipInfo(ctx, eventURL)

	default:
		return nil, fmt.Errorf("no enrichment for event %q (scope %q)", event.Name, event.Scope)
	}
}

// spaceForReport resolves the space endpoint for an already-enriched report
// payload and fetches it. The space lives under the organization, keyed by
// the report's space_token.
func (c *Client) spaceForReport(ctx context.Context, eventURL *EventURL, payload events.Payload) (events.Payload, error) {
	org, err := eventURL.Org()
	if err != nil {
		return nil, err
	}
	spaceToken, err := payload.StringAt("report", "space_token")
	if err != nil {
		return nil, err
	}
	return c.SpaceInfo(ctx, c.apiURL(org, "spaces", spaceToken))
}
