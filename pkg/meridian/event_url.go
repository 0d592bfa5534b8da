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
	"fmt"
	"strings"
)

// EventURL is the resource URL delivered with a webhook event, with
// accessors for the path segments and rewrites enrichment needs. Each
// accessor is only meaningful for the event scopes that define it.
type EventURL struct {
	url  string
	path string
}

// NewEventURL parses raw relative to the platform base URL. The base must
// be "/"-terminated.
func NewEventURL(base, raw string) *EventURL {
	return &EventURL{
		url:  raw,
		path: strings.TrimPrefix(raw, base),
	}
}

// URL returns the raw event URL.
func (u *EventURL) URL() string {
	return u.url
}

// Org returns the organization slug, the second segment of the event path.
func (u *EventURL) Org() (string, error) {
	segments := strings.Split(u.path, "/")
	if len(segments) < 2 || segments[1] == "" {
		return "", fmt.Errorf("no organization in event url %q", u.url)
	}
	return segments[1], nil
}

// MemberToken returns the membership token from a member event URL, the
// portion between the "/memberships/" segment and the "?embed[user]"
// parameter. The parameter is optional; the segment is not.
func (u *EventURL) MemberToken() (string, error) {
	_, after, ok := strings.Cut(u.path, "/memberships/")
	if !ok {
		return "", fmt.Errorf("no membership token in event url %q", u.url)
	}
	token, _, _ := strings.Cut(after, "?embed[user]")
	return token, nil
}

// ReportURL returns the report resource URL for a report run URL, the
// portion before the "/runs/" segment. A URL without runs is returned
// unchanged.
func (u *EventURL) ReportURL() string {
	before, _, _ := strings.Cut(u.url, "/runs/")
	return before
}

// ConnectionURL rewrites an API connection URL into its web equivalent.
func (u *EventURL) ConnectionURL() string {
	return strings.ReplaceAll(u.url, "/api/", "/organizations/")
}
