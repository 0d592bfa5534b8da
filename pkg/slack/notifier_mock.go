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
	"context"
)

// MockNotifier implements Notifier with canned results for testing.
type MockNotifier struct {
	Reply string
	Err   error

	GotMessage *Message
}

func (m *MockNotifier) Notify(ctx context.Context, msg *Message) (string, error) {
	m.GotMessage = msg
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}
