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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Notifier delivers a Slack message and returns Slack's raw reply text.
// Incoming webhooks answer with a plain "ok".
type Notifier interface {
	Notify(ctx context.Context, msg *Message) (string, error)
}

// WebhookNotifier posts messages to a fixed Slack incoming-webhook URL.
type WebhookNotifier struct {
	httpClient *http.Client
	url        string
}

// NewWebhookNotifier creates a notifier for the given incoming-webhook URL.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		httpClient: &http.Client{},
		url:        url,
	}
}

// Notify posts the message as JSON and returns the response body verbatim.
// A non-2xx status is an error carrying Slack's diagnostic text.
func (n *WebhookNotifier) Notify(ctx context.Context, msg *Message) (string, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call slack: %w", err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, mb))
	if err != nil {
		return "", fmt.Errorf("failed to read slack response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("slack responded with status %d: %s", resp.StatusCode, reply)
	}
	return string(reply), nil
}
