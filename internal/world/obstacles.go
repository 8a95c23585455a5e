package world

// Obstacle is an axis-aligned blocking rectangle.
type Obstacle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Pit is an axis-aligned rectangle with no valid floor.
type Pit struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (o Obstacle) contains(p Vec2) bool {
	return p.X >= o.X && p.X <= o.X+o.Width && p.Y >= o.Y && p.Y <= o.Y+o.Height
}

func (p Pit) contains(pt Vec2) bool {
	return pt.X >= p.X && pt.X <= p.X+p.Width && pt.Y >= p.Y && pt.Y <= p.Y+p.Height
}

// segmentIntersectsRect reports whether the segment a-b crosses the rectangle,
// using the slab method.
func segmentIntersectsRect(a, b Vec2, o Obstacle) bool {
	if o.contains(a) || o.contains(b) {
		return true
	}
	d := b.Sub(a)
	tMin, tMax := 0.0, 1.0

	for axis := 0; axis < 2; axis++ {
		var origin, delta, lo, hi float64
		if axis == 0 {
			origin, delta, lo, hi = a.X, d.X, o.X, o.X+o.Width
		} else {
			origin, delta, lo, hi = a.Y, d.Y, o.Y, o.Y+o.Height
		}
		if delta == 0 {
			if origin < lo || origin > hi {
				return false
			}
			continue
		}
		t1 := (lo - origin) / delta
		t2 := (hi - origin) / delta
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}
