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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abcxyz/pkg/testutil"

	"github.com/meridianbi/webhook-relay/pkg/events"
)

func TestHTTPForwarder_Forward(t *testing.T) {
	t.Parallel()

	payload := events.Payload{
		"event_name": "report_created",
		"report":     map[string]any{"name": "Daily Revenue"},
		"space":      map[string]any{"name": "Finance"},
	}

	var mu sync.Mutex
	var gotMethod, gotContentType string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode posted payload: %v", err)
		}
		w.Write([]byte(`{"status":"delivered"}`))
	}))
	t.Cleanup(srv.Close)

	f := NewHTTPForwarder(srv.URL)

	reply, err := f.Forward(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"status": "delivered"}, reply); diff != "" {
		t.Errorf("reply diff (-want, +got):\n%s", diff)
	}

	mu.Lock()
	defer mu.Unlock()
	if got, want := gotMethod, http.MethodPost; got != want {
		t.Errorf("method: got %q, want %q", got, want)
	}
	if got, want := gotContentType, "application/json"; got != want {
		t.Errorf("content type: got %q, want %q", got, want)
	}
	if diff := cmp.Diff(map[string]any(payload), gotBody); diff != "" {
		t.Errorf("posted payload diff (-want, +got):\n%s", diff)
	}
}

func TestHTTPForwarder_Forward_Error(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "destination_unavailable",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantErr: "destination responded with status 503",
		},
		{
			name: "unparseable_reply",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			wantErr: "failed to decode destination response",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tc.handler)
			t.Cleanup(srv.Close)

			f := NewHTTPForwarder(srv.URL)

			_, err := f.Forward(context.Background(), events.Payload{"event_name": "report_created"})
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}
