package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"dungeon-crawlers/sim/logging"
)

// JSONSink emits newline-delimited structured events, optionally gzipped.
type JSONSink struct {
	mu        sync.Mutex
	writer    *bufio.Writer
	gz        *gzip.Writer
	encoder   *json.Encoder
	autoFlush bool
}

// NewJSONSink constructs a JSONL sink writing to the provided io.Writer. When
// compress is set the stream is gzip-framed; Close finalizes the frame.
func NewJSONSink(w io.Writer, compress bool, flushInterval time.Duration) *JSONSink {
	if w == nil {
		w = io.Discard
	}
	sink := &JSONSink{autoFlush: flushInterval <= 0}
	if compress {
		sink.gz = gzip.NewWriter(w)
		sink.writer = bufio.NewWriter(sink.gz)
	} else {
		sink.writer = bufio.NewWriter(w)
	}
	sink.encoder = json.NewEncoder(sink.writer)
	if flushInterval > 0 {
		go sink.periodicFlush(flushInterval)
	}
	return sink
}

// Write satisfies logging.Sink.
func (s *JSONSink) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wire := map[string]any{
		"type":     event.Type,
		"tick":     event.Tick,
		"time":     event.Time.Format(time.RFC3339Nano),
		"severity": event.Severity,
		"category": event.Category,
		"actor":    event.Actor,
		"targets":  event.Targets,
		"payload":  event.Payload,
		"extra":    event.Extra,
	}
	if err := s.encoder.Encode(wire); err != nil {
		return err
	}
	if s.autoFlush {
		return s.flushLocked()
	}
	return nil
}

// Close flushes buffers and finalizes the gzip frame when compressing.
func (s *JSONSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writer.Flush(); err != nil {
		return err
	}
	if s.gz != nil {
		return s.gz.Close()
	}
	return nil
}

func (s *JSONSink) flushLocked() error {
	if err := s.writer.Flush(); err != nil {
		return err
	}
	if s.gz != nil {
		return s.gz.Flush()
	}
	return nil
}

func (s *JSONSink) periodicFlush(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		s.flushLocked()
		s.mu.Unlock()
	}
}
