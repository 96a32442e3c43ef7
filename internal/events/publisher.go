package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/confhub/proposal-service/internal/models"
)

// Topics carrying domain events.
const (
	TopicProposalSubmitted     = "proposal.submitted"
	TopicProposalReviewed      = "proposal.reviewed"
	TopicProposalStatusChanged = "proposal.status_changed"

	// TopicNotifications receives outbound notification jobs produced
	// from the domain events above.
	TopicNotifications = "notifications"
)

type ProposalSubmitted struct {
	ProposalID uint      `json:"proposal_id"`
	UserID     uint      `json:"user_id"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ProposalReviewed struct {
	ProposalID uint      `json:"proposal_id"`
	ReviewID   uint      `json:"review_id"`
	ReviewerID uint      `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ProposalStatusChanged struct {
	ProposalID uint                  `json:"proposal_id"`
	OldStatus  models.ProposalStatus `json:"old_status"`
	NewStatus  models.ProposalStatus `json:"new_status"`
	ChangedBy  uint                  `json:"changed_by"`
	OccurredAt time.Time             `json:"occurred_at"`
}

// Publisher emits the three domain events. Delivery is asynchronous;
// consumers dispatch notification jobs out-of-process.
type Publisher interface {
	PublishProposalSubmitted(ctx context.Context, event ProposalSubmitted) error
	PublishProposalReviewed(ctx context.Context, event ProposalReviewed) error
	PublishProposalStatusChanged(ctx context.Context, event ProposalStatusChanged) error
	Close() error
}

type watermillPublisher struct {
	publisher message.Publisher
}

// NewPublisher wraps a watermill publisher (Kafka in production, the
// in-process pub/sub in development) in the domain Publisher interface.
func NewPublisher(publisher message.Publisher) Publisher {
	return &watermillPublisher{publisher: publisher}
}

func (p *watermillPublisher) PublishProposalSubmitted(ctx context.Context, event ProposalSubmitted) error {
	return p.publish(ctx, TopicProposalSubmitted, event)
}

func (p *watermillPublisher) PublishProposalReviewed(ctx context.Context, event ProposalReviewed) error {
	return p.publish(ctx, TopicProposalReviewed, event)
}

func (p *watermillPublisher) PublishProposalStatusChanged(ctx context.Context, event ProposalStatusChanged) error {
	return p.publish(ctx, TopicProposalStatusChanged, event)
}

func (p *watermillPublisher) publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}
