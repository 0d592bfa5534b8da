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
	"testing"

	"github.com/abcxyz/pkg/testutil"

	"github.com/meridianbi/webhook-relay/pkg/meridian"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	validMeridian := meridian.Config{
		BaseURL:     meridian.DefaultBaseURL,
		APIToken:    "test-api-token",
		APIPassword: "test-api-password",
	}

	cases := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{
			name: "missing_destination_url",
			cfg: &Config{
				Port:     "8080",
				Meridian: validMeridian,
			},
			wantErr: "DESTINATION_URL is required",
		},
		{
			name: "missing_meridian_token",
			cfg: &Config{
				Port:           "8080",
				DestinationURL: "https://bi-sink.acme.example/webhook",
				Meridian: meridian.Config{
					BaseURL:     meridian.DefaultBaseURL,
					APIPassword: "test-api-password",
				},
			},
			wantErr: "MERIDIAN_API_TOKEN is required",
		},
		{
			name: "success",
			cfg: &Config{
				Port:           "8080",
				DestinationURL: "https://bi-sink.acme.example/webhook",
				Meridian:       validMeridian,
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.cfg.Validate()
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Error(diff)
			}
		})
	}
}
