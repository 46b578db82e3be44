package game

import "math"

// Rect is an axis-aligned bounding region in screen pixels.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectAround returns a size×size square centered on (x, y).
func RectAround(x, y, size float64) Rect {
	half := size / 2
	return Rect{Left: x - half, Top: y - half, Right: x + half, Bottom: y + half}
}

// Overlaps reports whether two regions share interior area.
// Touching edges do not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// distance between two points.
func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stepToward moves (x, y) toward (tx, ty) by at most step pixels.
func stepToward(x, y, tx, ty, step float64) (float64, float64) {
	dx, dy := tx-x, ty-y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return x, y
	}
	if d <= step {
		return tx, ty
	}
	return x + dx/d*step, y + dy/d*step
}
