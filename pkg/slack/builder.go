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
	"fmt"

	"github.com/meridianbi/webhook-relay/pkg/events"
)

// AlertRule is the watch rule for completed report runs: the report to
// watch, the result field to inspect, and the value the field must exceed
// to trigger a threshold alert.
type AlertRule struct {
	ReportID  int64
	Field     string
	Threshold float64
}

// MessageBuilder renders enriched webhook payloads into Slack messages. It
// is pure: the same event and payload always render the same message.
type MessageBuilder struct {
	authorLink string
	alert      AlertRule
}

// NewMessageBuilder creates a builder. Attachments link their author back
// to authorLink, the Meridian base URL.
func NewMessageBuilder(authorLink string, alert AlertRule) *MessageBuilder {
	return &MessageBuilder{
		authorLink: authorLink,
		alert:      alert,
	}
}

// Build renders the Slack message for an enriched event. A nil message with
// a nil error means no notification should be sent; only a watched report
// run that stayed under its threshold renders that way. Event kinds without
// a message form, report_run_started included, return an error wrapping
// [events.ErrUnsupportedEvent].
func (b *MessageBuilder) Build(eventName string, payload events.Payload) (*Message, error) {
	var att *Attachment
	var err error

	switch eventName {
	case events.EventReportRunCompleted:
		att, err = b.reportRunCompleted(payload)
	case events.EventReportCreated:
		att, err = b.reportCreated(payload)
	case events.EventMemberJoinedOrganization:
		att, err = b.memberJoinedOrganization(payload)
	case events.EventDefinitionCreated:
		att, err = b.definitionCreated(payload)
	case events.EventDefinitionUpdated:
		att, err = b.definitionUpdated(payload)
	case events.EventNewDatabaseConnection:
		att, err = b.newDatabaseConnection(payload)
	default:
		return nil, fmt.Errorf("%w: %q", events.ErrUnsupportedEvent, eventName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build %s message: %w", eventName, err)
	}
	if att == nil {
		return nil, nil
	}

	return &Message{
		Attachments: []*Attachment{att},
		Username:    senderName,
	}, nil
}

// attachment assembles an attachment with the fixed sender identity.
func (b *MessageBuilder) attachment(color, title, text string) *Attachment {
	return &Attachment{
		Fallback:   text,
		Color:      color,
		AuthorName: senderName,
		AuthorLink: b.authorLink,
		Title:      title,
		Text:       text,
	}
}

func (b *MessageBuilder) definitionCreated(payload events.Payload) (*Attachment, error) {
	creator, err := payload.StringAt("definition", "creator")
	if err != nil {
		return nil, err
	}
	url, err := payload.StringAt("definition", "url")
	if err != nil {
		return nil, err
	}
	name, err := payload.StringAt("definition", "name")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s just created the <%s|%s> definition.", creator, url, name)
	return b.attachment(ColorGood, "New Definition :plus1:", text), nil
}

func (b *MessageBuilder) definitionUpdated(payload events.Payload) (*Attachment, error) {
	url, err := payload.StringAt("definition", "url")
	if err != nil {
		return nil, err
	}
	name, err := payload.StringAt("definition", "name")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("The <%s|%s> definition was just updated.", url, name)
	return b.attachment(ColorWarning, "Definition Updated :heavy_exclamation_mark:", text), nil
}

func (b *MessageBuilder) memberJoinedOrganization(payload events.Payload) (*Attachment, error) {
	memberName, err := payload.StringAt("user", "name")
	if err != nil {
		return nil, err
	}
	memberURL, err := payload.StringAt("user", "url")
	if err != nil {
		return nil, err
	}
	orgName, err := payload.StringAt("organization", "name")
	if err != nil {
		return nil, err
	}
	orgURL, err := payload.StringAt("organization", "url")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Say hi! <%s|%s> just joined the <%s|%s> organization.", memberURL, memberName, orgURL, orgName)
	return b.attachment(ColorGood, "New Org Member :wave:", text), nil
}

func (b *MessageBuilder) newDatabaseConnection(payload events.Payload) (*Attachment, error) {
	url, err := payload.StringAt("connection", "url")
	if err != nil {
		return nil, err
	}
	name, err := payload.StringAt("connection", "name")
	if err != nil {
		return nil, err
	}
	vendor, err := payload.StringAt("connection", "vendor")
	if err != nil {
		return nil, err
	}
	provider, err := payload.StringAt("connection", "provider")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("The <%s|%s> data source was just connected.", url, name)
	att := b.attachment(ColorGood, "New Data Source :plus1:", text)
	att.Fields = []*Field{
		{Title: "Vendor", Value: vendor},
		{Title: "Provider", Value: provider},
	}
	return att, nil
}

func (b *MessageBuilder) reportCreated(payload events.Payload) (*Attachment, error) {
	creator, err := payload.StringAt("report", "creator")
	if err != nil {
		return nil, err
	}
	reportURL, err := payload.StringAt("report", "url")
	if err != nil {
		return nil, err
	}
	reportName, err := payload.StringAt("report", "name")
	if err != nil {
		return nil, err
	}
	spaceURL, err := payload.StringAt("space", "url")
	if err != nil {
		return nil, err
	}
	spaceName, err := payload.StringAt("space", "name")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s just created the <%s|%s> report in the <%s|%s> space.",
		creator, reportURL, reportName, spaceURL, spaceName)
	return b.attachment(ColorGood, "New Report Created :plus1:", text), nil
}

func (b *MessageBuilder) reportRunCompleted(payload events.Payload) (*Attachment, error) {
	state, err := payload.StringAt("report_run", "state")
	if err != nil {
		return nil, err
	}
	executor, err := payload.StringAt("report_run", "executed_by")
	if err != nil {
		return nil, err
	}
	reportURL, err := payload.StringAt("report", "url")
	if err != nil {
		return nil, err
	}
	reportName, err := payload.StringAt("report", "name")
	if err != nil {
		return nil, err
	}
	spaceURL, err := payload.StringAt("space", "url")
	if err != nil {
		return nil, err
	}
	spaceName, err := payload.StringAt("space", "name")
	if err != nil {
		return nil, err
	}

	watched := false
	if state == events.RunStateSucceeded {
		id, err := payload.IntAt("report", "id")
		if err != nil {
			return nil, err
		}
		watched = id == b.alert.ReportID
	}

	switch {
	case watched:
		rows, err := payload.RowsAt("report_run", "results")
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			v, ok := row[b.alert.Field]
			if !ok {
				return nil, fmt.Errorf("results row missing field %q", b.alert.Field)
			}
			observed, err := events.ToNumber(v)
			if err != nil {
				return nil, fmt.Errorf("results field %q: %w", b.alert.Field, err)
			}
			if observed <= b.alert.Threshold {
				continue
			}

			text := fmt.Sprintf("Heads up! %s just ran the <%s|%s> report in the <%s|%s> space and it succeeded, but the %s field exceeded the alert threshold.",
				executor, reportURL, reportName, spaceURL, spaceName, b.alert.Field)
			att := b.attachment(ColorWarning, "Threshold Alert :heavy_exclamation_mark:", text)
			att.Fields = []*Field{
				{Title: "Observed Value", Value: v},
				{Title: "Threshold Value", Value: b.alert.Threshold},
			}
			return att, nil
		}

		// A watched run that stays under the threshold sends nothing, not
		// even the plain success message.
		// TODO(product): confirm whether these runs should fall back to the
		// plain success message instead of going silent.
		return nil, nil

	case state == events.RunStateSucceeded:
		duration, err := payload.IntAt("report_run", "execution_duration")
		if err != nil {
			return nil, err
		}

		text := fmt.Sprintf("Good news! %s just ran the <%s|%s> report in the <%s|%s> space and it succeeded. It took %d seconds to run.",
			executor, reportURL, reportName, spaceURL, spaceName, duration)
		return b.attachment(ColorGood, "Successful Report Run :success:", text), nil

	case state == events.RunStateFailed:
		failures, err := payload.IntAt("report", "consecutive_run_failures")
		if err != nil {
			return nil, err
		}

		text := fmt.Sprintf("Oh no! %s just ran the <%s|%s> report in the <%s|%s> space and it failed. It has failed the last %d run(s).",
			executor, reportURL, reportName, spaceURL, spaceName, failures)
		return b.attachment(ColorDanger, "Failed Report Run :sad-error:", text), nil

	default:
		return nil, fmt.Errorf("unhandled report run state %q", state)
	}
}
