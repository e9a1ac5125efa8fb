// Package events carries the service's in-process notifications: group
// membership changes, content hidings and report filings. The rule engines
// stay synchronous and transactional; events are published after the
// triggering transaction has committed, for observers that must not affect
// its outcome.
package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	TopicMembershipChanged = "pulsifi.membership.changed"
	TopicContentHidden     = "pulsifi.content.hidden"
	TopicReportFiled       = "pulsifi.report.filed"
)

// MembershipChanged announces a profile entering or leaving a group.
type MembershipChanged struct {
	ProfileID string `json:"profile_id"`
	Group     string `json:"group"`
	Added     bool   `json:"added"`
}

// ContentHidden announces a visibility cascade root.
type ContentHidden struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
}

// ReportFiled announces a new report and its assignee.
type ReportFiled struct {
	ReportID    string `json:"report_id"`
	Category    string `json:"category"`
	ModeratorID string `json:"moderator_id"`
}

// Bus is a thin wrapper over a watermill gochannel pub/sub. A nil Bus is
// valid and drops publishes, which keeps the engines usable without any
// eventing wired up (unit tests, scripts).
type Bus struct {
	channel *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		channel: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, watermill.NopLogger{}),
	}
}

// Publish marshals the payload as JSON and hands it to subscribers. A failed
// publish never aborts the write that triggered it.
func (b *Bus) Publish(topic string, payload interface{}) error {
	if b == nil {
		return nil
	}
	bytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), bytes)
	return b.channel.Publish(topic, msg)
}

// Subscribe exposes the underlying subscription channel.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.channel.Subscribe(ctx, topic)
}

// Close shuts the bus down, terminating all subscriber channels.
func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	return b.channel.Close()
}
