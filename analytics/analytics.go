// Package analytics records product events without ever blocking a request.
// Events are queued on a buffered channel and written to a Sink by one
// background worker. A full queue drops the event.
package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// DefaultBuffer is the queue size used when New is given zero.
const DefaultBuffer = 1000

var (
	eventsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dnounce",
			Name:      "analytics_events_total",
			Help:      "Analytics events written to the sink",
		},
		[]string{"event"},
	)
	eventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dnounce",
			Name:      "analytics_events_dropped_total",
			Help:      "Analytics events dropped because the queue was full or closed",
		},
	)
)

// Sink receives events from the worker.
type Sink interface {
	Write(ctx context.Context, e Event) error
}

// LogSink writes events as structured log lines.
type LogSink struct {
	Logger *zap.SugaredLogger
}

// Write implements Sink.
func (s LogSink) Write(_ context.Context, e Event) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.S()
	}
	logger.Infow("analytics event", "event", e.Name, "anonId", e.AnonID, "properties", e.Properties, "ts", e.Timestamp)
	return nil
}

// Service is the analytics pipeline. Construct one with New and hand it to the
// components that track events.
type Service struct {
	sink  Sink
	queue chan Event
	done  chan struct{}
	now   func() time.Time

	mu      sync.RWMutex
	started bool
	closed  bool
}

// New returns a service writing to sink. A nil sink logs through zap.
func New(sink Sink, buffer int) *Service {
	if sink == nil {
		sink = LogSink{}
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Service{
		sink:  sink,
		queue: make(chan Event, buffer),
		done:  make(chan struct{}),
		now:   time.Now,
	}
}

// Init starts the worker. Calling it again is a no-op.
func (s *Service) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	go s.run()
}

func (s *Service) run() {
	defer close(s.done)
	for e := range s.queue {
		if err := s.sink.Write(context.Background(), e); err != nil {
			zap.S().Warnw("analytics sink write failed", "event", e.Name, "error", err)
			continue
		}
		eventsTracked.WithLabelValues(e.Name).Inc()
	}
}

// Track queues an event. It never blocks and reports whether the event was
// accepted.
func (s *Service) Track(name, anonID string, props map[string]interface{}) bool {
	if s == nil {
		return false
	}
	e := Event{Name: name, AnonID: anonID, Properties: scrub(props), Timestamp: s.now().UTC()}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		eventsDropped.Inc()
		return false
	}
	select {
	case s.queue <- e:
		return true
	default:
		eventsDropped.Inc()
		return false
	}
}

// TrackCaseFormCompleted records a finished case submission.
func (s *Service) TrackCaseFormCompleted(anonID, caseID, relationship string, hasCity, hasState bool) bool {
	return s.Track(EventCaseFormCompleted, anonID, map[string]interface{}{
		"case_id":      caseID,
		"relationship": relationship,
		"has_city":     hasCity,
		"has_state":    hasState,
	})
}

// TrackPrelaunchOptIn records a waitlist signup. Only the e-mail domain and
// hash are kept.
func (s *Service) TrackPrelaunchOptIn(anonID, email, source, caseID string) bool {
	props := map[string]interface{}{
		"email_domain": EmailDomain(email),
		"email_hash":   HashEmail(email),
		"source":       source,
	}
	if caseID != "" {
		props["case_id"] = caseID
	}
	return s.Track(EventPrelaunchOptIn, anonID, props)
}

// Close stops accepting events and waits until the queue is drained or ctx
// ends.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	started := s.started
	s.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
