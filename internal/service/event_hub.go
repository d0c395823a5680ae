package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-submit-api/internal/auth"
	"github.com/noah-isme/gema-submit-api/internal/observability"
)

const eventHubBufferSize = 32

// EventHub broadcasts submission events to in-process subscribers such as
// websocket streams. Slow subscribers lose events instead of blocking writers.
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[*eventSubscription]struct{}
	policy      auth.Policy
	logger      zerolog.Logger
}

type eventSubscription struct {
	events chan SubmissionEvent
	once   sync.Once
}

// NewEventHub constructs an empty hub. policy guards Authorize.
func NewEventHub(policy auth.Policy, logger zerolog.Logger) *EventHub {
	if policy == nil {
		policy = auth.TrustPolicy{}
	}
	return &EventHub{
		subscribers: make(map[*eventSubscription]struct{}),
		policy:      policy,
		logger:      logger.With().Str("component", "event_hub").Logger(),
	}
}

// Authorize reports whether the caller bound to ctx may watch the stream.
func (h *EventHub) Authorize(ctx context.Context) error {
	return h.policy.Authorize(ctx, auth.ActionWatchSubmissions)
}

// Subscribe registers a subscriber. The returned cancel func is idempotent and
// closes the channel.
func (h *EventHub) Subscribe() (<-chan SubmissionEvent, func()) {
	sub := &eventSubscription{events: make(chan SubmissionEvent, eventHubBufferSize)}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	observability.StreamSubscribers().Inc()

	cancel := func() {
		sub.once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, sub)
			close(sub.events)
			h.mu.Unlock()
			observability.StreamSubscribers().Dec()
		})
	}
	return sub.events, cancel
}

// Subscribers returns the number of open subscriptions.
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *EventHub) Publish(_ context.Context, event SubmissionEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers {
		select {
		case sub.events <- event:
		default:
			observability.StreamDropped().Inc()
			h.logger.Debug().Str("event", event.Type).Msg("dropping event for slow subscriber")
		}
	}
	return nil
}

// MultiPublisher delivers every event to each publisher in order. A failing
// publisher does not stop delivery to the rest.
type MultiPublisher []EventPublisher

// NewMultiPublisher drops nil publishers from pubs.
func NewMultiPublisher(pubs ...EventPublisher) MultiPublisher {
	out := make(MultiPublisher, 0, len(pubs))
	for _, pub := range pubs {
		if pub != nil {
			out = append(out, pub)
		}
	}
	return out
}

func (m MultiPublisher) Publish(ctx context.Context, event SubmissionEvent) error {
	var errs []error
	for _, pub := range m {
		if err := pub.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EventStream is the subscriber side of an EventHub.
type EventStream interface {
	Authorize(ctx context.Context) error
	Subscribe() (<-chan SubmissionEvent, func())
}

var (
	_ EventPublisher = (*EventHub)(nil)
	_ EventStream    = (*EventHub)(nil)
)
