package logging

import (
	"context"
	"log"
	"os"
	"sync/atomic"
	"time"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock. Simulation timestamps still come from the
// tick counter carried on each event.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

// sinkState pairs an attached sink with its write-failure backoff. Only the
// dispatch goroutine touches it.
type sinkState struct {
	name     string
	sink     Sink
	failures int
	retryAt  time.Time
}

// Router fans events out to the attached sinks from a single dispatch
// goroutine. Publish never blocks the simulation loop: when the queue is
// full the event is dropped and counted.
type Router struct {
	cfg         Config
	clock       Clock
	minSeverity Severity
	fields      map[string]any
	queue       chan Event
	stop        chan struct{}
	done        chan struct{}
	sinks       []*sinkState
	fallback    *log.Logger
	closed      atomic.Bool

	eventsTotal  atomic.Uint64
	droppedTotal atomic.Uint64
	lastDropLog  atomic.Int64
}

type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

func NewRouter(clock Clock, cfg Config, namedSinks []NamedSink) (*Router, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 512
	}
	r := &Router{
		cfg:         cfg,
		clock:       clock,
		minSeverity: cfg.MinimumSeverity,
		fields:      cfg.CloneFields(),
		queue:       make(chan Event, bufferSize),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		fallback:    log.New(os.Stderr, "[logging] ", log.LstdFlags),
	}
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		r.sinks = append(r.sinks, &sinkState{name: named.Name, sink: named.Sink})
	}
	go r.dispatch()
	return r, nil
}

// Publish enqueues the event for dispatch. Events with an empty type are
// ignored, as is anything published after Close.
func (r *Router) Publish(ctx context.Context, event Event) {
	if event.Type == "" || r.closed.Load() {
		return
	}
	select {
	case r.queue <- event:
	default:
		r.noteDrop(event)
	}
}

func (r *Router) dispatch() {
	defer close(r.done)
	for {
		select {
		case <-r.stop:
			for {
				select {
				case event := <-r.queue:
					r.deliver(event)
				default:
					return
				}
			}
		case event := <-r.queue:
			r.deliver(event)
		}
	}
}

// deliver filters, stamps, and writes one event to every sink in order.
func (r *Router) deliver(event Event) {
	if event.Severity < r.minSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	event = r.withGlobalFields(event)
	r.eventsTotal.Add(1)
	for _, s := range r.sinks {
		r.write(s, event)
	}
}

// withGlobalFields merges the configured run-wide fields into Extra without
// overriding anything the event already carries.
func (r *Router) withGlobalFields(event Event) Event {
	if len(r.fields) == 0 {
		return event
	}
	event = cloneEvent(event)
	if event.Extra == nil {
		event.Extra = make(map[string]any, len(r.fields))
	}
	for k, v := range r.fields {
		if _, exists := event.Extra[k]; !exists {
			event.Extra[k] = v
		}
	}
	return event
}

// write hands the event to one sink, holding off while the sink is in
// backoff after a failed write.
func (r *Router) write(s *sinkState, event Event) {
	if s.failures > 0 {
		if wait := time.Until(s.retryAt); wait > 0 {
			time.Sleep(wait)
		}
	}
	if err := s.sink.Write(event); err != nil {
		s.failures++
		backoff := time.Duration(1<<min(s.failures, 5)) * time.Second
		s.retryAt = time.Now().Add(backoff)
		r.fallback.Printf("sink %s write failed: %v (retry in %s)", s.name, err, backoff)
		return
	}
	s.failures = 0
	s.retryAt = time.Time{}
}

func (r *Router) noteDrop(event Event) {
	r.droppedTotal.Add(1)
	interval := r.cfg.DropWarnInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	now := time.Now().UnixNano()
	last := r.lastDropLog.Load()
	if last == 0 || now >= last {
		if r.lastDropLog.CompareAndSwap(last, now+interval.Nanoseconds()) {
			r.fallback.Printf("event queue full, dropped type=%s tick=%d", event.Type, event.Tick)
		}
	}
}

// Close stops the dispatcher, drains the queue, and closes every sink. A
// second Close waits for the first to finish.
func (r *Router) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		select {
		case <-r.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	close(r.stop)
	select {
	case <-r.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	var firstErr error
	for _, s := range r.sinks {
		if err := s.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) Stats() RouterStats {
	return RouterStats{
		EventsTotal:  r.eventsTotal.Load(),
		DroppedTotal: r.droppedTotal.Load(),
	}
}

// Sink returns the attached sink registered under name, or nil.
func (r *Router) Sink(name string) Sink {
	for _, s := range r.sinks {
		if s.name == name {
			return s.sink
		}
	}
	return nil
}
