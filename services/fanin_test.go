package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maintainly/api-go/services"
)

const testWindow = 100 * time.Millisecond

func newFanInForTest() (*services.LocalBus, *services.FanIn) {
	bus := services.NewLocalBus()
	fanIn := services.NewFanInWindow(bus, testWindow)
	fanIn.Start()
	return bus, fanIn
}

func waitAlert(t *testing.T, s *services.Session, timeout time.Duration) services.Alert {
	t.Helper()
	select {
	case a, ok := <-s.Alerts():
		assert.True(t, ok, "alert channel closed unexpectedly")
		return a
	case <-time.After(timeout):
		t.Fatal("timed out waiting for alert")
		return services.Alert{}
	}
}

func assertNoAlert(t *testing.T, s *services.Session, within time.Duration) {
	t.Helper()
	select {
	case a, ok := <-s.Alerts():
		if ok {
			t.Fatalf("unexpected alert: %+v", a)
		}
	case <-time.After(within):
	}
}

func TestBurstCoalescesIntoOneSummary(t *testing.T) {
	bus, fanIn := newFanInForTest()
	defer fanIn.Stop()

	session := fanIn.Open("helpdesk-1", nil)
	defer session.Close()

	ctx := context.Background()
	assert.NoError(t, bus.Publish(ctx, services.NewEvent(services.StreamAssignments, "update", "r1")))

	first := waitAlert(t, session, time.Second)
	assert.Equal(t, 1, first.Count)
	assert.False(t, first.Summary)

	for i := 0; i < 4; i++ {
		assert.NoError(t, bus.Publish(ctx, services.NewEvent(services.StreamAssignments, "update", "r1")))
	}

	summary := waitAlert(t, session, time.Second)
	assert.True(t, summary.Summary)
	assert.Equal(t, 5, summary.Count)
	assert.Equal(t, services.StreamAssignments, summary.Stream)

	assertNoAlert(t, session, 2*testWindow)
}

func TestMixedStreamSummaryHasNoStreamLabel(t *testing.T) {
	bus, fanIn := newFanInForTest()
	defer fanIn.Stop()

	session := fanIn.Open("helpdesk-1", nil)
	defer session.Close()

	ctx := context.Background()
	assert.NoError(t, bus.Publish(ctx, services.NewEvent(services.StreamAssignments, "update", "r1")))
	first := waitAlert(t, session, time.Second)
	assert.Equal(t, services.StreamAssignments, first.Stream)

	// Followers from a different stream: the summary must not be labeled
	// with the first event's stream.
	assert.NoError(t, bus.Publish(ctx, services.NewEvent(services.StreamFinalReports, "update", "a1")))
	assert.NoError(t, bus.Publish(ctx, services.NewEvent(services.StreamAssignments, "update", "r2")))

	summary := waitAlert(t, session, time.Second)
	assert.True(t, summary.Summary)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, "", summary.Stream)
}

func TestSingleEventEmitsOnlyImmediateAlert(t *testing.T) {
	bus, fanIn := newFanInForTest()
	defer fanIn.Stop()

	session := fanIn.Open("helpdesk-1", nil)
	defer session.Close()

	assert.NoError(t, bus.Publish(context.Background(), services.NewEvent(services.StreamFinalReports, "update", "a1")))

	first := waitAlert(t, session, time.Second)
	assert.Equal(t, services.StreamFinalReports, first.Stream)
	assert.Equal(t, 1, first.Count)
	assert.False(t, first.Summary)

	// Window closes with no followers: no summary.
	assertNoAlert(t, session, 3*testWindow)
}

func TestDuplicateEventsNotDoubleCounted(t *testing.T) {
	bus, fanIn := newFanInForTest()
	defer fanIn.Stop()

	session := fanIn.Open("helpdesk-1", nil)
	defer session.Close()

	ctx := context.Background()
	e1 := services.NewEvent(services.StreamAssignments, "update", "r1")
	assert.NoError(t, bus.Publish(ctx, e1))

	first := waitAlert(t, session, time.Second)
	assert.Equal(t, 1, first.Count)

	// At-least-once delivery redelivers e1; only the distinct follower
	// counts.
	assert.NoError(t, bus.Publish(ctx, e1))
	assert.NoError(t, bus.Publish(ctx, e1))
	assert.NoError(t, bus.Publish(ctx, services.NewEvent(services.StreamAssignments, "update", "r2")))

	summary := waitAlert(t, session, time.Second)
	assert.True(t, summary.Summary)
	assert.Equal(t, 2, summary.Count)
}

func TestRecipientWindowsAreIndependent(t *testing.T) {
	bus, fanIn := newFanInForTest()
	defer fanIn.Stop()

	alice := fanIn.Open("alice", nil)
	defer alice.Close()
	bob := fanIn.Open("bob", nil)
	defer bob.Close()

	assert.NoError(t, bus.Publish(context.Background(), services.NewEvent(services.StreamAssignments, "update", "r1")))

	a := waitAlert(t, alice, time.Second)
	b := waitAlert(t, bob, time.Second)
	assert.Equal(t, 1, a.Count)
	assert.Equal(t, 1, b.Count)
}

func TestStreamFilter(t *testing.T) {
	bus, fanIn := newFanInForTest()
	defer fanIn.Stop()

	session := fanIn.Open("helpdesk-1", []string{services.StreamAssignments})
	defer session.Close()

	ctx := context.Background()
	assert.NoError(t, bus.Publish(ctx, services.NewEvent(services.StreamFinalReports, "update", "a1")))
	assertNoAlert(t, session, 2*testWindow)

	assert.NoError(t, bus.Publish(ctx, services.NewEvent(services.StreamAssignments, "update", "r1")))
	first := waitAlert(t, session, time.Second)
	assert.Equal(t, services.StreamAssignments, first.Stream)
}

func TestMalformedEventsAreDropped(t *testing.T) {
	bus, fanIn := newFanInForTest()
	defer fanIn.Stop()

	session := fanIn.Open("helpdesk-1", nil)
	defer session.Close()

	// No ID: dropped before it reaches any session.
	assert.NoError(t, bus.Publish(context.Background(), services.Event{
		Stream: services.StreamAssignments,
		Action: "update",
	}))
	assertNoAlert(t, session, 2*testWindow)
}

func TestCloseDiscardsPendingWindow(t *testing.T) {
	bus, fanIn := newFanInForTest()
	defer fanIn.Stop()

	session := fanIn.Open("helpdesk-1", nil)

	ctx := context.Background()
	assert.NoError(t, bus.Publish(ctx, services.NewEvent(services.StreamAssignments, "update", "r1")))
	_ = waitAlert(t, session, time.Second)
	assert.NoError(t, bus.Publish(ctx, services.NewEvent(services.StreamAssignments, "update", "r2")))

	// Close before the window fires: the buffered count is discarded and
	// the alert channel closes without a summary.
	session.Close()

	select {
	case a, ok := <-session.Alerts():
		assert.False(t, ok, "expected closed channel, got %+v", a)
	case <-time.After(3 * testWindow):
		t.Fatal("alert channel not closed")
	}
}

func TestReopenReplacesSession(t *testing.T) {
	bus, fanIn := newFanInForTest()
	defer fanIn.Stop()

	old := fanIn.Open("helpdesk-1", nil)
	replacement := fanIn.Open("helpdesk-1", nil)
	defer replacement.Close()

	// The old session is closed by the replacement.
	select {
	case _, ok := <-old.Alerts():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("old session not closed")
	}

	assert.NoError(t, bus.Publish(context.Background(), services.NewEvent(services.StreamAssignments, "update", "r1")))
	first := waitAlert(t, replacement, time.Second)
	assert.Equal(t, 1, first.Count)
}
