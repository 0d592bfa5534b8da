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
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
)

// QueryRunRow is one line of the usage log, one query run of a completed
// report run. Column order follows the struct field order.
type QueryRunRow struct {
	QueryToken  string `csv:"query_token"`
	State       string `csv:"state"`
	CreatedAt   string `csv:"created_at"`
	CompletedAt string `csv:"completed_at"`
	RawSource   string `csv:"raw_source"`
	Parameters  string `csv:"parameters"`
}

// NewQueryRunRow projects an upstream query-run document into a log row.
// The raw source is flattened for single-line storage and the parameters
// object is JSON-encoded.
func NewQueryRunRow(doc map[string]any) (*QueryRunRow, error) {
	token, err := stringValue(doc, "query_token")
	if err != nil {
		return nil, err
	}
	state, err := stringValue(doc, "state")
	if err != nil {
		return nil, err
	}
	createdAt, err := stringValue(doc, "created_at")
	if err != nil {
		return nil, err
	}
	completedAt, err := stringValue(doc, "completed_at")
	if err != nil {
		return nil, err
	}
	rawSource, err := stringValue(doc, "raw_source")
	if err != nil {
		return nil, err
	}

	params, ok := doc["parameters"]
	if !ok {
		return nil, fmt.Errorf("query run missing field %q", "parameters")
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode parameters: %w", err)
	}

	return &QueryRunRow{
		QueryToken:  token,
		State:       state,
		CreatedAt:   createdAt,
		CompletedAt: completedAt,
		RawSource:   cleanRawSource(rawSource),
		Parameters:  string(encoded),
	}, nil
}

func stringValue(doc map[string]any, key string) (string, error) {
	v, ok := doc[key]
	if !ok {
		return "", fmt.Errorf("query run missing field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("query run field %q is not a string (got %T)", key, v)
	}
	return s, nil
}

// cleanRawSource flattens query SQL to one line: newlines become spaces,
// then indentation runs of four spaces are removed.
func cleanRawSource(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "    ", "")
}

// CSVLog appends usage rows to a CSV file. Appends are serialized: handlers
// run concurrently, and interleaved writes would corrupt rows.
type CSVLog struct {
	mu   sync.Mutex
	path string
}

// NewCSVLog creates a log that appends to the file at path.
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

// Append writes one CSV line per row to the end of the log. The file is
// created on first use. The log carries no header row.
func (l *CSVLog) Append(rows []*QueryRunRow) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open usage log: %w", err)
	}

	if err := gocsv.MarshalWithoutHeaders(rows, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write usage log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close usage log: %w", err)
	}
	return nil
}
