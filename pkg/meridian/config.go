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
	"errors"
	"fmt"
	"strings"

	"github.com/abcxyz/pkg/cli"
)

// DefaultBaseURL is the public Meridian endpoint.
const DefaultBaseURL = "https://meridianbi.com/"

// Config represents the shared Meridian API configuration.
type Config struct {
	// BaseURL is the root of the Meridian web and API surface.
	BaseURL string

	// APIToken and APIPassword are the basic-auth credential pair for the
	// Meridian REST API.
	APIToken    string
	APIPassword string
}

// Validate does sanity checking on the configuration.
func (c *Config) Validate() error {
	var merr error

	if c.BaseURL == "" {
		merr = errors.Join(merr, fmt.Errorf("MERIDIAN_BASE_URL is required"))
	} else if !strings.HasPrefix(c.BaseURL, "https://") && !strings.HasPrefix(c.BaseURL, "http://") {
		merr = errors.Join(merr, fmt.Errorf(`MERIDIAN_BASE_URL must start with "https://" or "http://"`))
	}

	if c.APIToken == "" {
		merr = errors.Join(merr, fmt.Errorf("MERIDIAN_API_TOKEN is required"))
	}

	if c.APIPassword == "" {
		merr = errors.Join(merr, fmt.Errorf("MERIDIAN_API_PASSWORD is required"))
	}

	return merr
}

// ToFlags registers the Meridian flags.
func (c *Config) ToFlags(set *cli.FlagSet) {
	f := set.NewSection("MERIDIAN OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:    "meridian-base-url",
		Target:  &c.BaseURL,
		EnvVar:  "MERIDIAN_BASE_URL",
		Default: DefaultBaseURL,
		Usage:   `The Meridian base URL, format "http(s)://[hostname]/".`,
	})

	f.StringVar(&cli.StringVar{
		Name:   "meridian-api-token",
		Target: &c.APIToken,
		EnvVar: "MERIDIAN_API_TOKEN",
		Usage:  `The Meridian API token used as the basic-auth username.`,
	})

	f.StringVar(&cli.StringVar{
		Name:   "meridian-api-password",
		Target: &c.APIPassword,
		EnvVar: "MERIDIAN_API_PASSWORD",
		Usage:  `The Meridian API password paired with the token. This is typically sourced from a secret manager via the MERIDIAN_API_PASSWORD environment variable.`,
	})
}
