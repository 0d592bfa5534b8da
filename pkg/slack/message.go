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

// Attachment colors understood by Slack.
const (
	ColorGood    = "good"
	ColorWarning = "warning"
	ColorDanger  = "danger"
)

// senderName is the username and author name attached to every
// notification.
const senderName = "Meridian"

// Message is a Slack incoming-webhook payload.
type Message struct {
	Attachments []*Attachment `json:"attachments"`
	Username    string        `json:"username,omitempty"`
}

// Attachment is one Slack message attachment.
type Attachment struct {
	Fallback   string   `json:"fallback,omitempty"`
	Color      string   `json:"color,omitempty"`
	AuthorName string   `json:"author_name,omitempty"`
	AuthorLink string   `json:"author_link,omitempty"`
	Title      string   `json:"title,omitempty"`
	Text       string   `json:"text"`
	Fields     []*Field `json:"fields,omitempty"`
}

// Field is a short title/value pair rendered as a table inside an
// attachment. Values pass through as-is so numeric observations stay
// numbers in the posted JSON.
type Field struct {
	Title string `json:"title"`
	Value any    `json:"value"`
}
