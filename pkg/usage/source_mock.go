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
	"context"
)

// MockQueryRunSource implements QueryRunSource with canned results for
// testing.
type MockQueryRunSource struct {
	Docs []map[string]any
	Err  error

	GotRunURL string
}

func (m *MockQueryRunSource) QueryRuns(ctx context.Context, runURL string) ([]map[string]any, error) {
	m.GotRunURL = runURL
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Docs, nil
}
