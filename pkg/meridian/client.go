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

// Package meridian is a read-only client for the Meridian REST API and the
// event enrichment built on top of it. The API is HAL-style JSON (_links
// and _embedded conventions) behind HTTP basic auth. Responses get direct
// field access, not schema validation: a missing field is an error at the
// point of use.
package meridian

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
)

// Client calls the Meridian REST API with a fixed credential pair. Requests
// carry no client-level timeout; the request context bounds each call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	password   string
}

// NewClient creates a Meridian API client from the given configuration. The
// configuration must already be validated.
func NewClient(cfg *Config) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/") + "/",
		token:      cfg.APIToken,
		password:   cfg.APIPassword,
	}
}

// BaseURL returns the configured base URL, always "/"-terminated.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EventURL parses a webhook event URL relative to the configured base.
func (c *Client) EventURL(raw string) *EventURL {
	return NewEventURL(c.baseURL, raw)
}

// Get issues an authenticated GET against url and decodes the JSON response
// body into out. Transport errors, non-2xx statuses, and undecodable bodies
// are returned as errors; there is no retry.
func (c *Client) Get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.token, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s responded with status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

// GetDocument issues an authenticated GET and returns the decoded JSON
// object.
func (c *Client) GetDocument(ctx context.Context, url string) (map[string]any, error) {
	var doc map[string]any
	if err := c.Get(ctx, url, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// apiURL joins path segments under the API root.
func (c *Client) apiURL(elem ...string) string {
	return c.baseURL + path.Join(append([]string{"api"}, elem...)...)
}

// webURL joins path segments onto the base URL.
func (c *Client) webURL(elem ...string) string {
	return c.baseURL + path.Join(elem...)
}

// resolve resolves a relative href against the base URL.
func (c *Client) resolve(href string) string {
	return c.baseURL + strings.TrimPrefix(href, "/")
}
