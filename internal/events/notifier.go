package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// NotificationJob is the queued unit of outbound email work. Content
// rendering and delivery happen in a separate worker consuming the
// notifications topic.
type NotificationJob struct {
	Channel    string          `json:"channel"`
	Event      string          `json:"event"`
	ProposalID uint            `json:"proposal_id"`
	Payload    json.RawMessage `json:"payload"`
	QueuedAt   time.Time       `json:"queued_at"`
}

// NewNotificationRouter builds the watermill router that consumes the
// three domain event topics and dispatches a notification job per event.
func NewNotificationRouter(subscriber message.Subscriber, publisher message.Publisher, logger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	topics := []string{
		TopicProposalSubmitted,
		TopicProposalReviewed,
		TopicProposalStatusChanged,
	}

	for _, topic := range topics {
		router.AddHandler(
			"notify_"+topic,
			topic,
			subscriber,
			TopicNotifications,
			publisher,
			notificationHandler(topic),
		)
	}

	return router, nil
}

func notificationHandler(event string) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		var envelope struct {
			ProposalID uint `json:"proposal_id"`
		}
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			// Malformed payloads are dropped, not retried
			return nil, nil
		}

		job := NotificationJob{
			Channel:    "email",
			Event:      event,
			ProposalID: envelope.ProposalID,
			Payload:    json.RawMessage(msg.Payload),
			QueuedAt:   time.Now().UTC(),
		}

		data, err := json.Marshal(job)
		if err != nil {
			return nil, fmt.Errorf("marshal notification job: %w", err)
		}

		out := message.NewMessage(watermill.NewUUID(), data)
		return []*message.Message{out}, nil
	}
}
