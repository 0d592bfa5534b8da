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

// Field helpers for HAL-style API documents. A missing or wrong-typed
// field is an error the caller propagates; partial projections are never
// returned.

func stringField(doc map[string]any, key string) (string, error) {
	v, ok := doc[key]
	if !ok {
		return "", fmt.Errorf("response missing field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("response field %q is not a string (got %T)", key, v)
	}
	return s, nil
}

func intField(doc map[string]any, key string) (int, error) {
	v, ok := doc[key]
	if !ok {
		return 0, fmt.Errorf("response missing field %q", key)
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("response field %q is not a number (got %T)", key, v)
	}
}

func mapField(doc map[string]any, key string) (map[string]any, error) {
	v, ok := doc[key]
	if !ok {
		return nil, fmt.Errorf("response missing field %q", key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response field %q is not an object (got %T)", key, v)
	}
	return m, nil
}

// valueOr returns doc[key], or def when the key is absent.
func valueOr(doc map[string]any, key string, def any) any {
	if v, ok := doc[key]; ok {
		return v
	}
	return def
}

// pick copies the named keys from doc, failing on the first absent key.
func pick(doc map[string]any, keys ...string) (map[string]any, error) {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		v, ok := doc[k]
		if !ok {
			return nil, fmt.Errorf("response missing field %q", k)
		}
		out[k] = v
	}
	return out, nil
}

// link returns the link object under _links.<rel>.
func link(doc map[string]any, rel string) (map[string]any, error) {
	links, err := mapField(doc, "_links")
	if err != nil {
		return nil, err
	}
	obj, err := mapField(links, rel)
	if err != nil {
		return nil, fmt.Errorf("link %q: %w", rel, err)
	}
	return obj, nil
}

// linkHref returns _links.<rel>.href.
func linkHref(doc map[string]any, rel string) (string, error) {
	obj, err := link(doc, rel)
	if err != nil {
		return "", err
	}
	href, err := stringField(obj, "href")
	if err != nil {
		return "", fmt.Errorf("link %q: %w", rel, err)
	}
	return href, nil
}

// embeddedList returns _embedded.<rel> as a list of objects.
func embeddedList(doc map[string]any, rel string) ([]map[string]any, error) {
	embedded, err := mapField(doc, "_embedded")
	if err != nil {
		return nil, err
	}
	v, ok := embedded[rel]
	if !ok {
		return nil, fmt.Errorf("response missing embedded %q", rel)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("embedded %q is not a list (got %T)", rel, v)
	}

	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("embedded %q item %d is not an object (got %T)", rel, i, item)
		}
		out = append(out, m)
	}
	return out, nil
}

// pathSegment returns the i-th "/"-separated segment of href.
func pathSegment(href string, i int) (string, error) {
	segments := strings.Split(href, "/")
	if i >= len(segments) || segments[i] == "" {
		return "", fmt.Errorf("no path segment %d in %q", i, href)
	}
	return segments[i], nil
}
