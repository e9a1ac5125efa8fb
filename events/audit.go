package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	Logger "github.com/pulsifi-app/pulsifi-backend/utils/log"
)

// StartAuditLogger subscribes to every topic and writes each event to the
// service log, giving operators a trail of privilege and moderation changes.
// Consumers run until the context is cancelled.
func StartAuditLogger(ctx context.Context, bus *Bus) error {
	for _, topic := range []string{
		TopicMembershipChanged,
		TopicContentHidden,
		TopicReportFiled,
	} {
		messages, err := bus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		go consumeAuditTopic(topic, messages)
	}
	return nil
}

func consumeAuditTopic(topic string, messages <-chan *message.Message) {
	for msg := range messages {
		msg.Ack()
		Logger.LogV2.Info(fmt.Sprintf("audit %s: %s", topic, string(msg.Payload)))
	}
}
