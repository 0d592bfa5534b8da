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
	"strings"

	"github.com/meridianbi/webhook-relay/pkg/events"
)

// apiPrefix is the leading path segment of API hrefs. Stripping it turns an
// API resource path into the matching web path.
const apiPrefix = "/api/"

// DefinitionInfo fetches a query definition and projects it under the
// "definition" key.
func (c *Client) DefinitionInfo(ctx context.Context, eventURL *EventURL) (events.Payload, error) {
	doc, err := c.GetDocument(ctx, eventURL.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch definition: %w", err)
	}

	info, err := pick(doc,
		"id", "name", "created_at", "data_source_id", "description",
		"source", "token")
	if err != nil {
		return nil, fmt.Errorf("definition %s: %w", eventURL.URL(), err)
	}

	creatorHref, err := linkHref(doc, "creator")
	if err != nil {
		return nil, fmt.Errorf("definition %s: %w", eventURL.URL(), err)
	}
	info["creator"] = strings.TrimPrefix(creatorHref, apiPrefix)

	// Definitions have no self link pointing at the editor; the web URL is
	// assembled from the organization and the definition token.
	org, err := eventURL.Org()
	if err != nil {
		return nil, err
	}
	token, err := stringField(doc, "token")
	if err != nil {
		return nil, fmt.Errorf("definition %s: %w", eventURL.URL(), err)
	}
	info["url"] = c.webURL("editor", org, "definitions", token)

	return events.Payload{"definition": info}, nil
}

// ConnectionInfo fetches a database connection and projects it under the
// "connection" key.
func (c *Client) ConnectionInfo(ctx context.Context, eventURL *EventURL) (events.Payload, error) {
	doc, err := c.GetDocument(ctx, eventURL.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch connection: %w", err)
	}

	info, err := pick(doc,
		"id", "name", "account_id", "account_username", "adapter", "asleep",
		"bridged", "created_at", "custom_attributes", "database", "default",
		"default_for_organization_id", "description", "display_name",
		"has_expensive_schema_updates", "host", "ldap", "organization_token",
		"port", "provider", "public", "queryable", "ssl", "token",
		"updated_at", "username", "vendor", "warehouse")
	if err != nil {
		return nil, fmt.Errorf("connection %s: %w", eventURL.URL(), err)
	}
	info["url"] = eventURL.ConnectionURL()

	return events.Payload{"connection": info}, nil
}

// OrganizationInfo fetches an organization by slug and projects it under the
// "organization" key.
func (c *Client) OrganizationInfo(ctx context.Context, org string) (events.Payload, error) {
	doc, err := c.GetDocument(ctx, c.apiURL(org))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch organization: %w", err)
	}

	info, err := pick(doc,
		"id", "name", "token", "user", "username", "plan_code",
		"private_definition_count", "private_definition_limit",
		"space_count", "trial_state")
	if err != nil {
		return nil, fmt.Errorf("organization %q: %w", org, err)
	}
	info["url"] = c.webURL(org)

	return events.Payload{"organization": info}, nil
}

// UserInfo fetches a user by username and projects it under the "user" key.
func (c *Client) UserInfo(ctx context.Context, username string) (events.Payload, error) {
	doc, err := c.GetDocument(ctx, c.apiURL(username))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	info, err := pick(doc, "id", "name", "token", "user", "username")
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}

	// Contact fields are omitted for private profiles.
	info["email"] = valueOr(doc, "email", "")
	info["email_verified"] = valueOr(doc, "email_verified", "")
	info["url"] = c.webURL(username)

	return events.Payload{"user": info}, nil
}

// MembershipInfo fetches an organization membership plus the user and
// organization behind it, merged into one payload. This is the deepest fetch
// chain: three sequential API calls.
func (c *Client) MembershipInfo(ctx context.Context, eventURL *EventURL) (events.Payload, error) {
	org, err := eventURL.Org()
	if err != nil {
		return nil, err
	}
	memberToken, err := eventURL.MemberToken()
	if err != nil {
		return nil, err
	}

	doc, err := c.GetDocument(ctx, c.apiURL(org, "memberships", memberToken))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch membership: %w", err)
	}

	info, err := pick(doc, "admin", "limited")
	if err != nil {
		return nil, fmt.Errorf("membership %q: %w", memberToken, err)
	}

	selfHref, err := linkHref(doc, "self")
	if err != nil {
		return nil, fmt.Errorf("membership %q: %w", memberToken, err)
	}
	_, token, ok := strings.Cut(selfHref, "/memberships/")
	if !ok {
		return nil, fmt.Errorf("membership %q: no membership token in self link %q", memberToken, selfHref)
	}
	info["token"] = token

	userHref, err := linkHref(doc, "user")
	if err != nil {
		return nil, fmt.Errorf("membership %q: %w", memberToken, err)
	}
	orgHref, err := linkHref(doc, "organization")
	if err != nil {
		return nil, fmt.Errorf("membership %q: %w", memberToken, err)
	}

	payload := events.Payload{"membership": info}

	user, err := c.UserInfo(ctx, strings.TrimPrefix(userHref, apiPrefix))
	if err != nil {
		return nil, err
	}
	maps.Copy(payload, user)

	organization, err := c.OrganizationInfo(ctx, strings.TrimPrefix(orgHref, apiPrefix))
	if err != nil {
		return nil, err
	}
	maps.Copy(payload, organization)

	return payload, nil
}
