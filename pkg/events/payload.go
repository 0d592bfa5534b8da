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

package events

import (
	"fmt"
	"strings"
)

// Payload is an enriched webhook payload: resource mappings merged under
// namespaced top-level keys (report, report_run, space, ...), plus the
// event_name set at dispatch time. Payloads are built once per event and
// never mutated after dispatch.
type Payload map[string]any

// lookup walks nested objects along path.
func (p Payload) lookup(path ...string) (any, error) {
	var cur any = map[string]any(p)
	for i, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("payload field %q is not an object", strings.Join(path[:i], "."))
		}
		cur, ok = m[key]
		if !ok {
			return nil, fmt.Errorf("payload missing field %q", strings.Join(path[:i+1], "."))
		}
	}
	return cur, nil
}

// StringAt returns the string at path.
func (p Payload) StringAt(path ...string) (string, error) {
	v, err := p.lookup(path...)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("payload field %q is not a string (got %T)", strings.Join(path, "."), v)
	}
	return s, nil
}

// IntAt returns the integer at path. JSON numbers decode as float64, so
// whole floats are accepted alongside native integer values.
func (p Payload) IntAt(path ...string) (int64, error) {
	v, err := p.lookup(path...)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("payload field %q is not an integer (got %T)", strings.Join(path, "."), v)
	}
}

// NumberAt returns the numeric value at path.
func (p Payload) NumberAt(path ...string) (float64, error) {
	v, err := p.lookup(path...)
	if err != nil {
		return 0, err
	}
	n, err := toNumber(v)
	if err != nil {
		return 0, fmt.Errorf("payload field %q: %w", strings.Join(path, "."), err)
	}
	return n, nil
}

// RowsAt returns the list of row objects at path. Rows arrive either as
// []map[string]any (assembled in-process) or as []any (decoded from JSON).
func (p Payload) RowsAt(path ...string) ([]map[string]any, error) {
	v, err := p.lookup(path...)
	if err != nil {
		return nil, err
	}

	switch rows := v.(type) {
	case []map[string]any:
		return rows, nil
	case []any:
		out := make([]map[string]any, 0, len(rows))
		for i, r := range rows {
			m, ok := r.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("payload field %q row %d is not an object (got %T)", strings.Join(path, "."), i, r)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("payload field %q is not a list (got %T)", strings.Join(path, "."), v)
	}
}

// ToNumber coerces a generic JSON value to a float64.
func ToNumber(v any) (float64, error) {
	return toNumber(v)
}

func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("value is not a number (got %T)", v)
	}
}
