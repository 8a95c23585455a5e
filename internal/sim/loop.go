package sim

import (
	"time"
)

// LoopHooks lets the wiring layer observe the loop without the engine knowing
// about transports.
type LoopHooks struct {
	// AfterStep runs on the tick goroutine after each completed step.
	AfterStep func(StepResult)
}

// StepResult summarizes one completed tick.
type StepResult struct {
	Tick     uint64
	Now      time.Time
	Duration time.Duration
	Budget   time.Duration
	Snapshot Snapshot
}

// Loop drives the engine on a fixed timestep.
type Loop struct {
	engine *Engine
	hooks  LoopHooks
}

// NewLoop wraps an engine with fixed-timestep orchestration.
func NewLoop(engine *Engine, hooks LoopHooks) *Loop {
	if engine == nil {
		return nil
	}
	return &Loop{engine: engine, hooks: hooks}
}

// Engine exposes the wrapped engine for command posting.
func (l *Loop) Engine() *Engine {
	if l == nil {
		return nil
	}
	return l.engine
}

// Run steps the engine until the stop channel closes. All engine mutation
// happens on this goroutine.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	tickRate := l.engine.cfg.TickRate
	budget := time.Second / time.Duration(tickRate)
	ticker := time.NewTicker(budget)
	defer ticker.Stop()

	clock := l.engine.deps.Clock
	metrics := l.engine.deps.Metrics
	logger := l.engine.deps.Logger

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			start := clock.Now()
			l.engine.Step()
			duration := clock.Now().Sub(start)

			if duration > budget {
				metrics.Add(MetricSlowTicks, 1)
				if logger != nil {
					logger.Printf("loop: tick %d took %s (budget %s)", l.engine.Tick(), duration, budget)
				}
			}

			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(StepResult{
					Tick:     l.engine.Tick(),
					Now:      start,
					Duration: duration,
					Budget:   budget,
					Snapshot: l.engine.Snapshot(),
				})
			}
		}
	}
}
