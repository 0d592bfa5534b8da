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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/meridianbi/webhook-relay/pkg/events"
)

// Forwarder delivers an enriched payload and returns the destination's
// parsed reply.
type Forwarder interface {
	Forward(ctx context.Context, payload events.Payload) (map[string]any, error)
}

// HTTPForwarder posts enriched payloads to a fixed destination URL as JSON.
type HTTPForwarder struct {
	httpClient *http.Client
	url        string
}

// NewHTTPForwarder creates a forwarder for the given destination URL.
func NewHTTPForwarder(url string) *HTTPForwarder {
	return &HTTPForwarder{
		httpClient: &http.Client{},
		url:        url,
	}
}

// Forward posts the payload and decodes the destination's JSON reply. A
// non-2xx status or an undecodable reply is an error.
func (f *HTTPForwarder) Forward(ctx context.Context, payload events.Payload) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call destination: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("destination responded with status %d", resp.StatusCode)
	}

	var reply map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("failed to decode destination response: %w", err)
	}
	return reply, nil
}
