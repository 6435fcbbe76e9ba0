package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Change streams the workflow publishes on. Stream names double as Redis
// channel suffixes in the RedisBus.
const (
	StreamAssignments         = "assignments"
	StreamFinalReports        = "final_reports"
	StreamContractorResponses = "contractor_responses"
	StreamReportStatus        = "report_status"
)

// Streams lists every change stream, in the order dashboards show them.
var Streams = []string{
	StreamAssignments,
	StreamFinalReports,
	StreamContractorResponses,
	StreamReportStatus,
}

// Event is a refresh hint, not a data payload: consumers re-fetch state
// themselves. Delivery is at-least-once and order-independent, so events
// carry an ID for duplicate suppression downstream.
type Event struct {
	ID       string    `json:"id"`
	Stream   string    `json:"stream"`
	Action   string    `json:"action"` // "insert", "update" or "delete"
	RecordID string    `json:"record_id"`
	At       time.Time `json:"at"`
}

// NewEvent builds an event with a fresh ID and UTC timestamp.
func NewEvent(stream, action, recordID string) Event {
	return Event{
		ID:       uuid.NewString(),
		Stream:   stream,
		Action:   action,
		RecordID: recordID,
		At:       time.Now().UTC(),
	}
}

// Bus carries change events from the workflow to notification subscribers.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe returns a channel of events for one stream plus a cancel
	// function. Cancel closes the channel and releases the subscription.
	Subscribe(stream string) (<-chan Event, func())
}

// LocalBus is the in-process Bus used for single-node deployments and tests.
type LocalBus struct {
	mu   sync.Mutex
	subs map[string][]chan Event
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[string][]chan Event)}
}

func (b *LocalBus) Publish(ctx context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[ev.Stream] {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop rather than block the writer. Events are
			// refresh hints, the consumer re-fetches on the next one.
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(stream string) (<-chan Event, func()) {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[stream] = append(b.subs[stream], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[stream]
		for i, c := range subs {
			if c == ch {
				b.subs[stream] = append(subs[:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}
