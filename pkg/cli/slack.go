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

package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/abcxyz/pkg/cli"
	"github.com/abcxyz/pkg/logging"
	"github.com/abcxyz/pkg/renderer"
	"github.com/abcxyz/pkg/serving"

	"github.com/meridianbi/webhook-relay/pkg/slack"
	"github.com/meridianbi/webhook-relay/pkg/version"
)

var _ cli.Command = (*SlackServerCommand)(nil)

type SlackServerCommand struct {
	cli.BaseCommand

	cfg *slack.Config

	// testFlagSetOpts is only used for testing.
	testFlagSetOpts []cli.Option

	// testEnricher and testNotifier are only used for testing.
	testEnricher slack.Enricher
	testNotifier slack.Notifier
}

func (c *SlackServerCommand) Desc() string {
	return `Start a slack notification server`
}

func (c *SlackServerCommand) Help() string {
	return `
Usage: {{ COMMAND }} [options]

  Start a server that receives Meridian webhook events, enriches them from
  the Meridian API, and posts a notification message to a Slack incoming
  webhook.
`
}

func (c *SlackServerCommand) Flags() *cli.FlagSet {
	c.cfg = &slack.Config{}
	set := cli.NewFlagSet(c.testFlagSetOpts...)
	return c.cfg.ToFlags(set)
}

func (c *SlackServerCommand) Run(ctx context.Context, args []string) error {
	server, mux, err := c.RunUnstarted(ctx, args)
	if err != nil {
		return err
	}

	return server.StartHTTPHandler(ctx, mux)
}

func (c *SlackServerCommand) RunUnstarted(ctx context.Context, args []string) (*serving.Server, http.Handler, error) {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	args = f.Args()
	if len(args) > 0 {
		return nil, nil, fmt.Errorf("unexpected arguments: %q", args)
	}

	logger := logging.FromContext(ctx)
	logger.DebugContext(ctx, "server starting",
		"name", version.Name,
		"commit", version.Commit,
		"version", version.Version)

	h, err := renderer.New(ctx, nil,
		renderer.WithOnError(func(err error) {
			logger.ErrorContext(ctx, "failed to render", "error", err)
		}))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if err := c.cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.DebugContext(ctx, "loaded configuration", "config", c.cfg)

	opts := &slack.ServerOptions{}

	// expect tests to pass these attributes
	if c.testEnricher != nil {
		opts.EnricherOverride = c.testEnricher
	}
	if c.testNotifier != nil {
		opts.NotifierOverride = c.testNotifier
	}

	slackServer, err := slack.NewServer(ctx, h, c.cfg, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create server: %w", err)
	}

	mux := slackServer.Routes(ctx)

	server, err := serving.New(c.cfg.Port)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create serving infrastructure: %w", err)
	}

	return server, mux, nil
}
