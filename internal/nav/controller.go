package nav

import (
	"math"

	"dungeon-crawlers/sim/internal/world"
)

// Config tunes probe geometry and stuck detection.
type Config struct {
	ProbeLength   float64
	ArriveRadius  float64
	StuckWindow   int
	StuckEpsilon  float64
	RetreatFactor float64
}

func (c Config) normalized() Config {
	if c.ProbeLength <= 0 {
		c.ProbeLength = 40
	}
	if c.ArriveRadius <= 0 {
		c.ArriveRadius = 12
	}
	if c.StuckWindow <= 0 {
		c.StuckWindow = 30
	}
	if c.StuckEpsilon <= 0 {
		c.StuckEpsilon = 6
	}
	if c.RetreatFactor <= 0 {
		c.RetreatFactor = 0.4
	}
	return c
}

// Controller converts a goal position into a steering direction using ray
// probes against the spatial-query service, and watches a rolling window of
// positions for stuck detection.
type Controller struct {
	cfg     Config
	history []world.Vec2
	head    int
	filled  int
}

func NewController(cfg Config) *Controller {
	cfg = cfg.normalized()
	return &Controller{
		cfg:     cfg,
		history: make([]world.Vec2, cfg.StuckWindow),
	}
}

// ArriveRadius exposes the configured arrival threshold.
func (c *Controller) ArriveRadius() float64 {
	return c.cfg.ArriveRadius
}

// Steer returns a unit steering direction toward goal, deflecting around
// obstacles. Within the arrival radius it returns the zero vector. When every
// probe is blocked it returns a small reverse vector instead of stalling.
func (c *Controller) Steer(pos, goal world.Vec2, q world.Query) world.Vec2 {
	if c == nil || q == nil {
		return world.Vec2{}
	}
	offset := goal.Sub(pos)
	if offset.Length() <= c.cfg.ArriveRadius {
		return world.Vec2{}
	}
	direct := offset.Normalized()
	if c.probeClear(pos, direct, q) {
		return direct
	}

	left := direct.Rotated(-math.Pi / 4)
	right := direct.Rotated(math.Pi / 4)
	leftClear := c.probeClear(pos, left, q)
	rightClear := c.probeClear(pos, right, q)

	switch {
	case leftClear && rightClear:
		// Alternate by position parity so columns of crawlers split around
		// the same obstacle.
		if (int(math.Floor(pos.X))+int(math.Floor(pos.Y)))%2 == 0 {
			return left
		}
		return right
	case leftClear:
		return left
	case rightClear:
		return right
	}

	perp := direct.Rotated(math.Pi / 2)
	if c.probeClear(pos, perp, q) {
		return perp
	}
	return direct.Scale(-c.cfg.RetreatFactor)
}

func (c *Controller) probeClear(pos, dir world.Vec2, q world.Query) bool {
	tip := pos.Add(dir.Scale(c.cfg.ProbeLength))
	return q.LineOfSight(pos, tip)
}

// Record appends the position to the rolling stuck-detection window.
func (c *Controller) Record(pos world.Vec2) {
	if c == nil || len(c.history) == 0 {
		return
	}
	c.history[c.head] = pos
	c.head = (c.head + 1) % len(c.history)
	if c.filled < len(c.history) {
		c.filled++
	}
}

// Stuck reports whether net displacement over the full window stayed below
// the epsilon. It only fires once the window has filled.
func (c *Controller) Stuck() bool {
	if c == nil || c.filled < len(c.history) {
		return false
	}
	oldest := c.history[c.head]
	newest := c.history[(c.head+len(c.history)-1)%len(c.history)]
	return world.Dist(oldest, newest) < c.cfg.StuckEpsilon
}

// Displacement returns the net movement across the current window.
func (c *Controller) Displacement() float64 {
	if c == nil || c.filled == 0 {
		return 0
	}
	oldest := c.history[(c.head+len(c.history)-c.filled)%len(c.history)]
	newest := c.history[(c.head+len(c.history)-1)%len(c.history)]
	return world.Dist(oldest, newest)
}

// Window returns the stuck-detection window length in ticks.
func (c *Controller) Window() int {
	return c.cfg.StuckWindow
}

// Reset clears the rolling window, typically after re-targeting.
func (c *Controller) Reset() {
	if c == nil {
		return
	}
	c.head = 0
	c.filled = 0
}
