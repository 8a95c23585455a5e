package telemetry

import (
	"log"
	"sync"
)

// Logger exposes the logging capabilities required by simulation components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// Metrics exposes the counter methods required by simulation components.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// NewCounters returns an in-process Metrics backed by a map.
func NewCounters() *Counters {
	return &Counters{values: make(map[string]uint64)}
}

// Counters is a concurrency-safe map-backed Metrics implementation.
type Counters struct {
	mu     sync.RWMutex
	values map[string]uint64
}

func (c *Counters) Add(key string, delta uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.values[key] += delta
	c.mu.Unlock()
}

func (c *Counters) Store(key string, value uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
}

// Snapshot copies the current counter values.
func (c *Counters) Snapshot() map[string]uint64 {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	copied := make(map[string]uint64, len(c.values))
	for k, v := range c.values {
		copied[k] = v
	}
	return copied
}

type nopMetrics struct{}

func (nopMetrics) Add(string, uint64)   {}
func (nopMetrics) Store(string, uint64) {}

// NopMetrics returns a Metrics that discards everything.
func NopMetrics() Metrics {
	return nopMetrics{}
}
