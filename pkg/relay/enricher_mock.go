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
	"context"

	"github.com/meridianbi/webhook-relay/pkg/events"
)

// MockEnricher implements Enricher with canned results for testing.
type MockEnricher struct {
	Payload events.Payload
	Err     error

	GotEvent *events.WebhookEvent
}

func (m *MockEnricher) EnrichEvent(ctx context.Context, event *events.WebhookEvent) (events.Payload, error) {
	m.GotEvent = event
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Payload, nil
}
