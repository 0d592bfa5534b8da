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

// Package events defines the webhook event taxonomy shared by every
// service: the supported event kinds, the request field that carries each
// event's resource URL, the enrichment scope each kind belongs to, and the
// request/response envelopes.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Supported webhook event kinds.
const (
	EventReportCreated            = "report_created"
	EventReportRunStarted         = "report_run_started"
	EventReportRunCompleted       = "report_run_completed"
	EventDefinitionCreated        = "definition_created"
	EventDefinitionUpdated        = "definition_updated"
	EventNewDatabaseConnection    = "new_database_connection"
	EventMemberJoinedOrganization = "member_joined_organization"
)

// Scope is the resource category an event kind belongs to. It determines
// which fetchers run during enrichment.
type Scope string

const (
	ScopeReport     Scope = "report"
	ScopeReportRun  Scope = "report_run"
	ScopeDefinition Scope = "definition"
	ScopeConnection Scope = "connection"
	ScopeMembership Scope = "membership"
)

// Report run states with defined notification behavior.
const (
	RunStateSucceeded = "succeeded"
	RunStateFailed    = "failed"
)

// EventType describes one supported event kind: the inbound request field
// carrying the resource URL and the enrichment scope.
type EventType struct {
	URLField string
	Scope    Scope
}

// WebhookEvents is the static table of supported event kinds.
var WebhookEvents = map[string]EventType{
	EventReportCreated:            {URLField: "report_url", Scope: ScopeReport},
	EventReportRunStarted:         {URLField: "report_run_url", Scope: ScopeReportRun},
	EventReportRunCompleted:       {URLField: "report_run_url", Scope: ScopeReportRun},
	EventDefinitionCreated:        {URLField: "definition_url", Scope: ScopeDefinition},
	EventDefinitionUpdated:        {URLField: "definition_url", Scope: ScopeDefinition},
	EventNewDatabaseConnection:    {URLField: "connection_url", Scope: ScopeConnection},
	EventMemberJoinedOrganization: {URLField: "member_url", Scope: ScopeMembership},
}

var (
	// ErrInvalidEvent indicates the request body was not a webhook event.
	ErrInvalidEvent = errors.New("invalid webhook event")

	// ErrUnsupportedEvent indicates an event kind outside the static table,
	// or an event missing the URL field its kind requires.
	ErrUnsupportedEvent = errors.New("unsupported event type")
)

// WebhookEvent is a parsed inbound webhook event.
type WebhookEvent struct {
	// Name is the event kind, verbatim from the request.
	Name string

	// URL is the event resource URL taken from the kind's URL field.
	URL string

	// Scope is the enrichment scope for the kind.
	Scope Scope
}

// ParseRequest parses a webhook request body into a WebhookEvent. The body
// must be a JSON object with an "event" field naming a supported kind and
// the URL field that kind requires.
func ParseRequest(body []byte) (*WebhookEvent, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	name, ok := raw["event"].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: missing event field", ErrInvalidEvent)
	}

	et, ok := WebhookEvents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, name)
	}

	url, ok := raw[et.URLField].(string)
	if !ok || url == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, name)
	}

	return &WebhookEvent{
		Name:  name,
		URL:   url,
		Scope: et.Scope,
	}, nil
}

// Result is the response body returned to the webhook sender.
type Result struct {
	Result   string `json:"result"`
	Response any    `json:"response,omitempty"`
	Message  string `json:"message,omitempty"`
}

// SuccessResult builds a success response carrying the destination's reply.
func SuccessResult(response any) *Result {
	return &Result{Result: "success", Response: response}
}

// ErrorResult builds an error response with a human-readable cause.
func ErrorResult(msg string) *Result {
	return &Result{Result: "error", Message: msg}
}
