package services

import (
	"sync"
	"time"
)

// DefaultCoalesceWindow is how long a recipient's alert window stays open
// after its first event.
const DefaultCoalesceWindow = 2 * time.Second

// Alert is a refresh hint pushed to one recipient. The first event in a
// window produces an immediate alert with Count 1; a burst produces one
// summary with Count = number of distinct events in the window. Stream is
// empty on a summary whose window spanned more than one stream.
type Alert struct {
	Stream  string    `json:"stream"`
	Count   int       `json:"count"`
	Summary bool      `json:"summary"`
	At      time.Time `json:"at"`
}

// Session is one recipient's live subscription. It owns its own timer,
// counter and duplicate-suppression set; nothing is shared between
// recipients, so there is no cross-recipient locking.
type Session struct {
	recipient string
	streams   map[string]bool // empty = all streams
	window    time.Duration

	mu          sync.Mutex
	open        bool // a coalescing window is running
	count       int  // distinct events seen in the current window
	streamsSeen map[string]bool
	timer       *time.Timer
	seen        map[string]bool
	closed      bool

	alerts chan Alert
	done   chan struct{}
}

// Alerts is the channel the transport (SSE handler) drains. Closed when the
// session is torn down.
func (s *Session) Alerts() <-chan Alert { return s.alerts }

// Close tears the session down: the timer is cancelled and any unflushed
// count is discarded. There is no final flush.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	close(s.done)
	close(s.alerts)
}

func (s *Session) wants(stream string) bool {
	if len(s.streams) == 0 {
		return true
	}
	return s.streams[stream]
}

// handle buckets one raw event into the session's coalescing window. Raw
// delivery is at-least-once and unordered: duplicates (same event ID) within
// a window are dropped so they never inflate the summary count.
func (s *Session) handle(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.wants(ev.Stream) {
		return
	}
	if s.seen[ev.ID] {
		return
	}
	s.seen[ev.ID] = true

	if !s.open {
		s.open = true
		s.count = 1
		s.streamsSeen = map[string]bool{ev.Stream: true}
		s.timer = time.AfterFunc(s.window, s.flush)
		s.emit(Alert{Stream: ev.Stream, Count: 1, At: time.Now().UTC()})
		return
	}
	s.count++
	s.streamsSeen[ev.Stream] = true
}

// flush closes the window. A count above one means a burst happened after
// the immediate alert, so a single summary replaces the per-event noise.
func (s *Session) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.count > 1 {
		stream := ""
		if len(s.streamsSeen) == 1 {
			for name := range s.streamsSeen {
				stream = name
			}
		}
		s.emit(Alert{Stream: stream, Count: s.count, Summary: true, At: time.Now().UTC()})
	}
	s.open = false
	s.count = 0
	s.streamsSeen = nil
	s.seen = make(map[string]bool)
}

func (s *Session) emit(a Alert) {
	select {
	case s.alerts <- a:
	default:
		// Consumer not draining; the alert is only a refresh hint, so
		// dropping it loses nothing the next event won't resurface.
	}
}

// FanIn observes the four change streams and routes each event into every
// open session that wants it.
type FanIn struct {
	bus    Bus
	window time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	cancels  []func()
}

func NewFanIn(bus Bus) *FanIn {
	return &FanIn{
		bus:      bus,
		window:   DefaultCoalesceWindow,
		sessions: make(map[string]*Session),
	}
}

// NewFanInWindow is NewFanIn with a custom coalescing window.
func NewFanInWindow(bus Bus, window time.Duration) *FanIn {
	f := NewFanIn(bus)
	f.window = window
	return f
}

// Start subscribes to every change stream. Call once before opening sessions.
func (f *FanIn) Start() {
	for _, stream := range Streams {
		ch, cancel := f.bus.Subscribe(stream)
		f.mu.Lock()
		f.cancels = append(f.cancels, cancel)
		f.mu.Unlock()
		go func() {
			for ev := range ch {
				f.dispatch(ev)
			}
		}()
	}
}

// Stop cancels the bus subscriptions and closes every open session.
func (f *FanIn) Stop() {
	f.mu.Lock()
	cancels := f.cancels
	f.cancels = nil
	sessions := make([]*Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		sessions = append(sessions, s)
	}
	f.sessions = make(map[string]*Session)
	f.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	for _, s := range sessions {
		s.Close()
	}
}

// Open registers a recipient session. streams filters which change streams
// the recipient gets alerts for; nil or empty means all of them. Opening a
// second session for the same recipient replaces the first.
func (f *FanIn) Open(recipientID string, streams []string) *Session {
	s := &Session{
		recipient: recipientID,
		streams:   make(map[string]bool, len(streams)),
		window:    f.window,
		seen:      make(map[string]bool),
		alerts:    make(chan Alert, 16),
		done:      make(chan struct{}),
	}
	for _, name := range streams {
		s.streams[name] = true
	}

	f.mu.Lock()
	old := f.sessions[recipientID]
	f.sessions[recipientID] = s
	f.mu.Unlock()
	if old != nil {
		old.Close()
	}

	// Drop the registry entry once the session is closed by either side.
	go func() {
		<-s.done
		f.mu.Lock()
		if f.sessions[recipientID] == s {
			delete(f.sessions, recipientID)
		}
		f.mu.Unlock()
	}()
	return s
}

func (f *FanIn) dispatch(ev Event) {
	if ev.Stream == "" || ev.ID == "" {
		return // malformed, drop silently
	}
	f.mu.Lock()
	targets := make([]*Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		targets = append(targets, s)
	}
	f.mu.Unlock()
	for _, s := range targets {
		s.handle(ev)
	}
}
