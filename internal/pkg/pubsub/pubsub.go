package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelAgendaEvents = "agenda_events"
)

// Event types carried on the agenda channel.
const (
	EventAppointmentCreated = "appointment_created"
	EventAppointmentUpdated = "appointment_updated"
	EventAppointmentDeleted = "appointment_deleted"
	EventAgendaChanged      = "agenda_changed"
	EventReminderDue        = "reminder_due"
)

// AgendaEvent is the message fanned out to a user's live connections.
type AgendaEvent struct {
	Type    string      `json:"type"`
	UserID  int64       `json:"user_id"`
	Payload interface{} `json:"payload,omitempty"`
}

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishAgendaEvent(userID int64, eventType string, payload interface{}) error {
	event := &AgendaEvent{
		Type:    eventType,
		UserID:  userID,
		Payload: payload,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.client.Publish(context.Background(), ChannelAgendaEvents, data).Err()
}

type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe delivers agenda events to handler until ctx is cancelled.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*AgendaEvent)) error {
	sub := s.client.Subscribe(ctx, ChannelAgendaEvents)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event AgendaEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			handler(&event)
		}
	}
}
