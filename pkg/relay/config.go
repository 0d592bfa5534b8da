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
	"errors"
	"fmt"

	"github.com/abcxyz/pkg/cli"

	"github.com/meridianbi/webhook-relay/pkg/meridian"
)

// Config defines the set of environment variables required for running the
// relay server.
type Config struct {
	Port           string
	DestinationURL string
	Meridian       meridian.Config
}

// Validate validates the service config after load.
func (cfg *Config) Validate() error {
	var merr error

	if cfg.DestinationURL == "" {
		merr = errors.Join(merr, fmt.Errorf("DESTINATION_URL is required"))
	}

	if err := cfg.Meridian.Validate(); err != nil {
		merr = errors.Join(merr, err)
	}

	return merr
}

// ToFlags binds the config to the given [cli.FlagSet] and returns it.
func (cfg *Config) ToFlags(set *cli.FlagSet) *cli.FlagSet {
	f := set.NewSection("RELAY OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:    "port",
		Target:  &cfg.Port,
		EnvVar:  "PORT",
		Default: "8080",
		Usage:   `The port the relay server listens to.`,
	})

	f.StringVar(&cli.StringVar{
		Name:   "destination-url",
		Target: &cfg.DestinationURL,
		EnvVar: "DESTINATION_URL",
		Usage:  `The URL that receives enriched event payloads.`,
	})

	cfg.Meridian.ToFlags(set)

	return set
}
