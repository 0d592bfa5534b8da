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
	"errors"
	"fmt"

	"github.com/abcxyz/pkg/cli"

	"github.com/meridianbi/webhook-relay/pkg/meridian"
)

// DefaultLogPath is the usage log location when USAGE_LOG_PATH is unset.
const DefaultLogPath = "usage-log.csv"

// Config defines the set of environment variables required for running the
// usage log server.
type Config struct {
	Port     string
	LogPath  string
	Meridian meridian.Config
}

// Validate validates the service config after load.
func (cfg *Config) Validate() error {
	var merr error

	if cfg.LogPath == "" {
		merr = errors.Join(merr, fmt.Errorf("USAGE_LOG_PATH is required"))
	}

	if err := cfg.Meridian.Validate(); err != nil {
		merr = errors.Join(merr, err)
	}

	return merr
}

// ToFlags binds the config to the given [cli.FlagSet] and returns it.
func (cfg *Config) ToFlags(set *cli.FlagSet) *cli.FlagSet {
	f := set.NewSection("USAGE OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:    "port",
		Target:  &cfg.Port,
		EnvVar:  "PORT",
		Default: "8080",
		Usage:   `The port the usage log server listens to.`,
	})

	f.StringVar(&cli.StringVar{
		Name:    "usage-log-path",
		Target:  &cfg.LogPath,
		EnvVar:  "USAGE_LOG_PATH",
		Default: DefaultLogPath,
		Usage:   `The CSV file query run rows are appended to.`,
	})

	cfg.Meridian.ToFlags(set)

	return set
}
