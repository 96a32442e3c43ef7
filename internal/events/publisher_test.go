package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/confhub/proposal-service/internal/models"
)

func TestPublisherRoundtrip(t *testing.T) {
	pubSub := NewGoChannelPubSub(watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(context.Background(), TopicProposalStatusChanged)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	publisher := NewPublisher(pubSub)

	event := ProposalStatusChanged{
		ProposalID: 7,
		OldStatus:  models.StatusPending,
		NewStatus:  models.StatusApproved,
		ChangedBy:  1,
		OccurredAt: time.Now().UTC(),
	}
	if err := publisher.PublishProposalStatusChanged(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()

		var got ProposalStatusChanged
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.ProposalID != 7 || got.NewStatus != models.StatusApproved {
			t.Errorf("payload mismatch: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
}

func TestNotificationRouter(t *testing.T) {
	pubSub := NewGoChannelPubSub(watermill.NopLogger{})
	defer pubSub.Close()

	router, err := NewNotificationRouter(pubSub, pubSub, watermill.NopLogger{})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	jobs, err := pubSub.Subscribe(context.Background(), TopicNotifications)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := router.Run(ctx); err != nil {
			t.Logf("router stopped: %v", err)
		}
	}()
	select {
	case <-router.Running():
	case <-time.After(time.Second):
		t.Fatal("router did not start")
	}

	publisher := NewPublisher(pubSub)
	if err := publisher.PublishProposalSubmitted(context.Background(), ProposalSubmitted{
		ProposalID: 3,
		UserID:     1,
		Title:      "Talk",
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-jobs:
		msg.Ack()

		var job NotificationJob
		if err := json.Unmarshal(msg.Payload, &job); err != nil {
			t.Fatalf("unmarshal job: %v", err)
		}
		if job.Event != TopicProposalSubmitted {
			t.Errorf("got event %q, want %q", job.Event, TopicProposalSubmitted)
		}
		if job.ProposalID != 3 {
			t.Errorf("got proposal %d, want 3", job.ProposalID)
		}
		if job.Channel != "email" {
			t.Errorf("got channel %q, want email", job.Channel)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no notification job received")
	}

	if err := router.Close(); err != nil {
		t.Logf("router close: %v", err)
	}
}
