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
	"errors"
	"fmt"

	"github.com/abcxyz/pkg/cli"

	"github.com/meridianbi/webhook-relay/pkg/meridian"
)

// Config defines the set of environment variables required for running the
// slack notification server.
type Config struct {
	Port            string
	SlackWebhookURL string

	// AlertReportID, AlertField, and AlertThreshold form the watch rule for
	// completed report runs: when the watched report succeeds and a result
	// row pushes the named field past the threshold, the success message is
	// replaced by a threshold alert.
	AlertReportID  int64
	AlertField     string
	AlertThreshold float64

	Meridian meridian.Config
}

// Validate validates the service config after load.
func (cfg *Config) Validate() error {
	var merr error

	if cfg.SlackWebhookURL == "" {
		merr = errors.Join(merr, fmt.Errorf("SLACK_WEBHOOK_URL is required"))
	}

	if cfg.AlertField == "" {
		merr = errors.Join(merr, fmt.Errorf("ALERT_FIELD is required"))
	}

	if err := cfg.Meridian.Validate(); err != nil {
		merr = errors.Join(merr, err)
	}

	return merr
}

// ToFlags binds the config to the given [cli.FlagSet] and returns it.
func (cfg *Config) ToFlags(set *cli.FlagSet) *cli.FlagSet {
	f := set.NewSection("SLACK OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:    "port",
		Target:  &cfg.Port,
		EnvVar:  "PORT",
		Default: "8080",
		Usage:   `The port the slack notification server listens to.`,
	})

	f.StringVar(&cli.StringVar{
		Name:   "slack-webhook-url",
		Target: &cfg.SlackWebhookURL,
		EnvVar: "SLACK_WEBHOOK_URL",
		Usage:  `The Slack incoming-webhook URL that receives notifications.`,
	})

	f.Int64Var(&cli.Int64Var{
		Name:    "alert-report-id",
		Target:  &cfg.AlertReportID,
		EnvVar:  "ALERT_REPORT_ID",
		Default: 643059,
		Usage:   `The id of the report watched for threshold alerts.`,
	})

	f.StringVar(&cli.StringVar{
		Name:    "alert-field",
		Target:  &cfg.AlertField,
		EnvVar:  "ALERT_FIELD",
		Default: "total_amt_usd",
		Usage:   `The result field inspected on runs of the watched report.`,
	})

	f.Float64Var(&cli.Float64Var{
		Name:    "alert-threshold",
		Target:  &cfg.AlertThreshold,
		EnvVar:  "ALERT_THRESHOLD",
		Default: 1000,
		Usage:   `The value the alert field must exceed to trigger an alert.`,
	})

	cfg.Meridian.ToFlags(set)

	return set
}
