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
	"strings"
	"time"

	"github.com/meridianbi/webhook-relay/pkg/events"
)

const (
	// maxRunHistoryPages caps the run-history walk regardless of the
	// reported total_pages, bounding the cost of a failure scan over a
	// report with deep history. Counts beyond the cap are truncated.
	maxRunHistoryPages = 10

	// runTimestampLayout is the fixed UTC layout of run timestamps.
	runTimestampLayout = "2006-01-02T15:04:05.000000Z"
)

// ReportRunPages walks a report's run history, most recent first, following
// next_page links until the reported total or the page cap is reached.
// Pages are returned in fetch order.
func (c *Client) ReportRunPages(ctx context.Context, reportURL string) ([]map[string]any, error) {
	page, err := c.GetDocument(ctx, reportURL+"/runs")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch run history: %w", err)
	}
	pages := []map[string]any{page}

	for {
		pagination, err := mapField(page, "pagination")
		if err != nil {
			return nil, err
		}
		current, err := intField(pagination, "page")
		if err != nil {
			return nil, err
		}
		total, err := intField(pagination, "total_pages")
		if err != nil {
			return nil, err
		}
		if current >= min(total, maxRunHistoryPages) {
			break
		}

		href, err := linkHref(page, "next_page")
		if err != nil {
			return nil, err
		}
		page, err = c.GetDocument(ctx, c.resolve(href))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch run history page: %w", err)
		}
		pages = append(pages, page)
	}

	return pages, nil
}

// ConsecutiveRunFailures counts the report's most recent unbroken run of
// failures. Pages are scanned most recent first; the first succeeded run
// ends the scan, counting only the runs before it on that page. When the
// bounded pagination exhausts without a success, the count covers the
// fetched runs only.
func (c *Client) ConsecutiveRunFailures(ctx context.Context, reportURL string) (int, error) {
	pages, err := c.ReportRunPages(ctx, reportURL)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, page := range pages {
		runs, err := embeddedList(page, "report_runs")
		if err != nil {
			return 0, err
		}

		for i, run := range runs {
			state, err := stringField(run, "state")
			if err != nil {
				return 0, err
			}
			if state == events.RunStateSucceeded {
				return count + i, nil
			}
		}
		count += len(runs)
	}
	return count, nil
}

// ReportRunInfo fetches a report run and its result rows and projects them
// under the "report_run" key.
func (c *Client) ReportRunInfo(ctx context.Context, runURL string) (events.Payload, error) {
	doc, err := c.GetDocument(ctx, runURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report run: %w", err)
	}

	var results []map[string]any
	if err := c.Get(ctx, runURL+"/results/content.json", &results); err != nil {
		return nil, fmt.Errorf("failed to fetch run results: %w", err)
	}

	info, err := projectReportRun(doc, results)
	if err != nil {
		return nil, fmt.Errorf("report run %s: %w", runURL, err)
	}
	return events.Payload{"report_run": info}, nil
}

func projectReportRun(doc map[string]any, results []map[string]any) (map[string]any, error) {
	info, err := pick(doc,
		"state", "parameters", "python_state", "created_at", "completed_at",
		"form_fields", "token")
	if err != nil {
		return nil, err
	}

	for _, rel := range []string{"account", "share", "report", "query_runs", "python_cell_runs"} {
		obj, err := link(doc, rel)
		if err != nil {
			return nil, err
		}
		info[rel] = obj
	}

	executedByHref, err := linkHref(doc, "executed_by")
	if err != nil {
		return nil, err
	}
	executedBy, err := pathSegment(executedByHref, 2)
	if err != nil {
		return nil, err
	}
	info["executed_by"] = executedBy

	createdAt, err := stringField(doc, "created_at")
	if err != nil {
		return nil, err
	}
	completedAt, err := stringField(doc, "completed_at")
	if err != nil {
		return nil, err
	}
	duration, err := runDuration(createdAt, completedAt)
	if err != nil {
		return nil, err
	}
	info["execution_duration"] = duration

	webHref, err := linkHref(doc, "web_external_url")
	if err != nil {
		return nil, err
	}
	url, _, _ := strings.Cut(webHref, "?")
	info["url"] = url
	info["results"] = results

	return info, nil
}

// runDuration returns the whole seconds between two run timestamps.
func runDuration(createdAt, completedAt string) (int64, error) {
	created, err := time.Parse(runTimestampLayout, createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to parse created_at: %w", err)
	}
	completed, err := time.Parse(runTimestampLayout, completedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to parse completed_at: %w", err)
	}
	return int64(completed.Sub(created) / time.Second), nil
}

// ReportInfo fetches a report, counts its consecutive run failures, and
// projects both under the "report" key.
func (c *Client) ReportInfo(ctx context.Context, reportURL string) (events.Payload, error) {
	doc, err := c.GetDocument(ctx, reportURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}

	failures, err := c.ConsecutiveRunFailures(ctx, reportURL)
	if err != nil {
		return nil, fmt.Errorf("failed to count run failures: %w", err)
	}

	info, err := c.projectReport(doc, failures)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", reportURL, err)
	}
	return events.Payload{"report": info}, nil
}

func (c *Client) projectReport(doc map[string]any, failures int) (map[string]any, error) {
	info, err := pick(doc,
		"name", "id", "created_at", "edited_at", "theme_id", "archived",
		"account_id", "account_username", "full_width", "manual_run_disabled",
		"run_privately", "is_embedded", "is_signed", "shared",
		"last_successfully_run_at", "last_successful_run_token", "last_run_at",
		"description", "public", "space_token", "web_preview_image")
	if err != nil {
		return nil, err
	}

	for _, rel := range []string{"report_schedules", "report_subscriptions"} {
		obj, err := link(doc, rel)
		if err != nil {
			return nil, err
		}
		info[rel] = obj
	}

	creatorHref, err := linkHref(doc, "creator")
	if err != nil {
		return nil, err
	}
	creator, err := pathSegment(creatorHref, 2)
	if err != nil {
		return nil, err
	}
	info["creator"] = creator

	selfHref, err := linkHref(doc, "self")
	if err != nil {
		return nil, err
	}
	info["url"] = c.webURL(strings.TrimPrefix(selfHref, apiPrefix))
	info["consecutive_run_failures"] = failures

	return info, nil
}

// SpaceInfo fetches a space and projects it under the "space" key.
func (c *Client) SpaceInfo(ctx context.Context, spaceURL string) (events.Payload, error) {
	doc, err := c.GetDocument(ctx, spaceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch space: %w", err)
	}

	info, err := pick(doc, "id", "name", "space_type", "description", "state", "restricted")
	if err != nil {
		return nil, fmt.Errorf("space %s: %w", spaceURL, err)
	}

	selfHref, err := linkHref(doc, "self")
	if err != nil {
		return nil, fmt.Errorf("space %s: %w", spaceURL, err)
	}
	info["url"] = c.webURL(strings.TrimPrefix(selfHref, apiPrefix))

	return events.Payload{"space": info}, nil
}

// QueryRuns lists the query runs recorded for a report run.
func (c *Client) QueryRuns(ctx context.Context, runURL string) ([]map[string]any, error) {
	doc, err := c.GetDocument(ctx, runURL+"/query_runs")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch query runs: %w", err)
	}

	runs, err := embeddedList(doc, "query_runs")
	if err != nil {
		return nil, fmt.Errorf("query runs %s: %w", runURL, err)
	}
	return runs, nil
}
