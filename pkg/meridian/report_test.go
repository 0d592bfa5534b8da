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
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abcxyz/pkg/testutil"

	"github.com/meridianbi/webhook-relay/pkg/events"
)

// runsPage builds one page of run history with the given run states. The
// next_page link is included even on the last page; the client must stop on
// the pagination counters, not on link absence.
func runsPage(page, totalPages int, states []string, nextHref string) map[string]any {
	runs := make([]any, 0, len(states))
	for i, state := range states {
		runs = append(runs, map[string]any{
			"state": state,
			"token": fmt.Sprintf("run-%d-%d", page, i),
		})
	}

	return map[string]any{
		"pagination": map[string]any{
			"page":        page,
			"total_pages": totalPages,
		},
		"_embedded": map[string]any{"report_runs": runs},
		"_links":    map[string]any{"next_page": map[string]any{"href": nextHref}},
	}
}

func runDoc(state string) map[string]any {
	return map[string]any{
		"state":        state,
		"parameters":   map[string]any{"user_id": "1"},
		"python_state": "none",
		"created_at":   "2026-02-21T10:00:00.000000Z",
		"completed_at": "2026-02-21T10:00:10.000000Z",
		"form_fields":  []any{},
		"token":        "run9",
		"_links": map[string]any{
			"executed_by":      map[string]any{"href": "/api/jsmith"},
			"account":          map[string]any{"href": "/api/acme"},
			"share":            map[string]any{"href": "/api/acme/reports/rep1/runs/run9/share"},
			"report":           map[string]any{"href": "/api/acme/reports/rep1"},
			"query_runs":       map[string]any{"href": "/api/acme/reports/rep1/runs/run9/query_runs"},
			"python_cell_runs": map[string]any{"href": "/api/acme/reports/rep1/runs/run9/python_cell_runs"},
			"web_external_url": map[string]any{"href": "https://meridianbi.com/acme/reports/rep1/runs/run9?access_key=secret"},
		},
	}
}

func reportDoc() map[string]any {
	return map[string]any{
		"name":                      "Daily Revenue",
		"id":                        643059,
		"created_at":                "2026-01-05T10:00:00.000000Z",
		"edited_at":                 "2026-02-01T10:00:00.000000Z",
		"theme_id":                  1,
		"archived":                  false,
		"account_id":                77,
		"account_username":          "acme",
		"full_width":                false,
		"manual_run_disabled":       false,
		"run_privately":             true,
		"is_embedded":               false,
		"is_signed":                 false,
		"shared":                    true,
		"last_successfully_run_at":  "2026-02-20T10:00:00.000000Z",
		"last_successful_run_token": "run8",
		"last_run_at":               "2026-02-21T10:00:00.000000Z",
		"description":               "Revenue by day",
		"public":                    false,
		"space_token":               "sp1",
		"web_preview_image":         nil,
		"_links": map[string]any{
			"self":                 map[string]any{"href": "/api/acme/reports/rep1"},
			"creator":              map[string]any{"href": "/api/jsmith"},
			"report_schedules":     map[string]any{"href": "/api/acme/reports/rep1/schedules"},
			"report_subscriptions": map[string]any{"href": "/api/acme/reports/rep1/subscriptions"},
		},
	}
}

func spaceDoc() map[string]any {
	return map[string]any{
		"id":          9,
		"name":        "Finance",
		"space_type":  "custom",
		"description": "Finance reports",
		"state":       "active",
		"restricted":  false,
		"_links": map[string]any{
			"self": map[string]any{"href": "/api/acme/spaces/sp1"},
		},
	}
}

func TestClient_ReportRunPages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		totalPages  int
		wantFetches int
	}{
		{
			name:        "single_page",
			totalPages:  1,
			wantFetches: 1,
		},
		{
			name:        "follows_next_links",
			totalPages:  3,
			wantFetches: 3,
		},
		{
			name:        "caps_deep_history",
			totalPages:  15,
			wantFetches: 10,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			const runsURI = "/api/acme/reports/rep1/runs"

			api := newFakeAPI(t)
			for page := 1; page <= tc.totalPages; page++ {
				uri := runsURI
				if page > 1 {
					uri = fmt.Sprintf("%s?page=%d", runsURI, page)
				}
				next := fmt.Sprintf("%s?page=%d", runsURI, page+1)
				api.doc(uri, runsPage(page, tc.totalPages, []string{"failed"}, next))
			}
			client := newTestClient(t, api)

			pages, err := client.ReportRunPages(context.Background(), client.BaseURL()+"api/acme/reports/rep1")
			if err != nil {
				t.Fatal(err)
			}

			if got := len(pages); got != tc.wantFetches {
				t.Errorf("pages: got %d, want %d", got, tc.wantFetches)
			}
			if got := len(api.requests()); got != tc.wantFetches {
				t.Errorf("requests: got %d, want %d", got, tc.wantFetches)
			}
		})
	}
}

func TestClient_ConsecutiveRunFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		pages [][]string
		want  int
	}{
		{
			name:  "latest_run_succeeded",
			pages: [][]string{{"succeeded", "failed"}},
			want:  0,
		},
		{
			name:  "failures_before_success",
			pages: [][]string{{"failed", "failed", "succeeded", "failed"}},
			want:  2,
		},
		{
			name:  "failures_span_pages",
			pages: [][]string{{"failed", "failed"}, {"failed", "succeeded", "failed"}},
			want:  3,
		},
		{
			name:  "no_success_in_window",
			pages: [][]string{{"failed"}, {"failed", "failed"}},
			want:  3,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			const runsURI = "/api/acme/reports/rep1/runs"

			api := newFakeAPI(t)
			for i, states := range tc.pages {
				page := i + 1
				uri := runsURI
				if page > 1 {
					uri = fmt.Sprintf("%s?page=%d", runsURI, page)
				}
				next := fmt.Sprintf("%s?page=%d", runsURI, page+1)
				api.doc(uri, runsPage(page, len(tc.pages), states, next))
			}
			client := newTestClient(t, api)

			got, err := client.ConsecutiveRunFailures(context.Background(), client.BaseURL()+"api/acme/reports/rep1")
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("ConsecutiveRunFailures: got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestClient_ReportRunInfo(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.doc("/api/acme/reports/rep1/runs/run9", runDoc(events.RunStateSucceeded))
	api.doc("/api/acme/reports/rep1/runs/run9/results/content.json", []any{
		map[string]any{"total_amt_usd": 1250.5},
	})
	client := newTestClient(t, api)

	got, err := client.ReportRunInfo(context.Background(), client.BaseURL()+"api/acme/reports/rep1/runs/run9")
	if err != nil {
		t.Fatal(err)
	}

	want := events.Payload{
		"report_run": map[string]any{
			"state":              "succeeded",
			"parameters":         map[string]any{"user_id": "1"},
			"python_state":       "none",
			"created_at":         "2026-02-21T10:00:00.000000Z",
			"completed_at":       "2026-02-21T10:00:10.000000Z",
			"form_fields":        []any{},
			"token":              "run9",
			"account":            map[string]any{"href": "/api/acme"},
			"share":              map[string]any{"href": "/api/acme/reports/rep1/runs/run9/share"},
			"report":             map[string]any{"href": "/api/acme/reports/rep1"},
			"query_runs":         map[string]any{"href": "/api/acme/reports/rep1/runs/run9/query_runs"},
			"python_cell_runs":   map[string]any{"href": "/api/acme/reports/rep1/runs/run9/python_cell_runs"},
			"executed_by":        "jsmith",
			"execution_duration": int64(10),
			"url":                "https://meridianbi.com/acme/reports/rep1/runs/run9",
			"results":            []map[string]any{{"total_amt_usd": 1250.5}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload diff (-want, +got):\n%s", diff)
	}

	wantRequests := []string{
		"/api/acme/reports/rep1/runs/run9",
		"/api/acme/reports/rep1/runs/run9/results/content.json",
	}
	if diff := cmp.Diff(wantRequests, api.requests()); diff != "" {
		t.Errorf("requests diff (-want, +got):\n%s", diff)
	}
}

func TestRunDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		createdAt   string
		completedAt string
		want        int64
		wantErr     string
	}{
		{
			name:        "ten_seconds",
			createdAt:   "2020-01-01T00:00:00.000000Z",
			completedAt: "2020-01-01T00:00:10.000000Z",
			want:        10,
		},
		{
			name:        "sub_second_truncated",
			createdAt:   "2020-01-01T00:00:00.000000Z",
			completedAt: "2020-01-01T00:00:09.900000Z",
			want:        9,
		},
		{
			name:        "minutes",
			createdAt:   "2020-01-01T00:00:00.000000Z",
			completedAt: "2020-01-01T00:02:30.000000Z",
			want:        150,
		},
		{
			name:        "bad_timestamp",
			createdAt:   "yesterday",
			completedAt: "2020-01-01T00:00:10.000000Z",
			wantErr:     "failed to parse created_at",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := runDuration(tc.createdAt, tc.completedAt)
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Error(diff)
			}
			if got != tc.want {
				t.Errorf("runDuration: got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestClient_ReportInfo(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.doc("/api/acme/reports/rep1", reportDoc())
	api.doc("/api/acme/reports/rep1/runs", runsPage(1, 1, []string{"failed", "failed", "succeeded"}, ""))
	client := newTestClient(t, api)

	got, err := client.ReportInfo(context.Background(), client.BaseURL()+"api/acme/reports/rep1")
	if err != nil {
		t.Fatal(err)
	}

	want := events.Payload{
		"report": map[string]any{
			"name":                      "Daily Revenue",
			"id":                        float64(643059),
			"created_at":                "2026-01-05T10:00:00.000000Z",
			"edited_at":                 "2026-02-01T10:00:00.000000Z",
			"theme_id":                  float64(1),
			"archived":                  false,
			"account_id":                float64(77),
			"account_username":          "acme",
			"full_width":                false,
			"manual_run_disabled":       false,
			"run_privately":             true,
			"is_embedded":               false,
			"is_signed":                 false,
			"shared":                    true,
			"last_successfully_run_at":  "2026-02-20T10:00:00.000000Z",
			"last_successful_run_token": "run8",
			"last_run_at":               "2026-02-21T10:00:00.000000Z",
			"description":               "Revenue by day",
			"public":                    false,
			"space_token":               "sp1",
			"web_preview_image":         nil,
			"report_schedules":          map[string]any{"href": "/api/acme/reports/rep1/schedules"},
			"report_subscriptions":      map[string]any{"href": "/api/acme/reports/rep1/subscriptions"},
			"creator":                   "jsmith",
			"url":                       client.BaseURL() + "acme/reports/rep1",
			"consecutive_run_failures":  2,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload diff (-want, +got):\n%s", diff)
	}

	wantRequests := []string{
		"/api/acme/reports/rep1",
		"/api/acme/reports/rep1/runs",
	}
	if diff := cmp.Diff(wantRequests, api.requests()); diff != "" {
		t.Errorf("requests diff (-want, +got):\n%s", diff)
	}
}

func TestClient_SpaceInfo(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.doc("/api/acme/spaces/sp1", spaceDoc())
	client := newTestClient(t, api)

	got, err := client.SpaceInfo(context.Background(), client.apiURL("acme", "spaces", "sp1"))
	if err != nil {
		t.Fatal(err)
	}

	want := events.Payload{
		"space": map[string]any{
			"id":          float64(9),
			"name":        "Finance",
			"space_type":  "custom",
			"description": "Finance reports",
			"state":       "active",
			"restricted":  false,
			"url":         client.BaseURL() + "acme/spaces/sp1",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload diff (-want, +got):\n%s", diff)
	}
}

func TestClient_QueryRuns(t *testing.T) {
	t.Parallel()

	t.Run("lists_embedded_query_runs", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.doc("/api/acme/reports/rep1/runs/run9/query_runs", map[string]any{
			"_embedded": map[string]any{
				"query_runs": []any{
					map[string]any{"query_token": "q1", "state": "succeeded"},
					map[string]any{"query_token": "q2", "state": "failed"},
				},
			},
		})
		client := newTestClient(t, api)

		got, err := client.QueryRuns(context.Background(), client.BaseURL()+"api/acme/reports/rep1/runs/run9")
		if err != nil {
			t.Fatal(err)
		}

		want := []map[string]any{
			{"query_token": "q1", "state": "succeeded"},
			{"query_token": "q2", "state": "failed"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("query runs diff (-want, +got):\n%s", diff)
		}
	})

	t.Run("missing_embed_is_an_error", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.doc("/api/acme/reports/rep1/runs/run9/query_runs", map[string]any{})
		client := newTestClient(t, api)

		_, err := client.QueryRuns(context.Background(), client.BaseURL()+"api/acme/reports/rep1/runs/run9")
		if diff := testutil.DiffErrString(err, `missing field "_embedded"`); diff != "" {
			t.Error(diff)
		}
	})
}
