package geometry

// AABB is an axis-aligned rectangle with its derived edges cached, since the
// quadtree reads them on every insert and query.
type AABB struct {
	X, Y, W, H float64

	CenterX, CenterY float64
	Right, Bottom    float64
}

// NewAABB builds a rectangle anchored at its top-left corner.
func NewAABB(x, y, w, h float64) AABB {
	return AABB{
		X: x, Y: y, W: w, H: h,
		CenterX: x + w/2,
		CenterY: y + h/2,
		Right:   x + w,
		Bottom:  y + h,
	}
}

// Center returns the rectangle center as a vector.
func (r AABB) Center() Vector2D {
	return Vector2D{X: r.CenterX, Y: r.CenterY}
}

// Contains reports whether p lies inside the rectangle. The left and top
// edges are inclusive, the right and bottom edges exclusive, so adjacent
// rectangles never both claim a point.
func (r AABB) Contains(p Vector2D) bool {
	return p.X >= r.X && p.X < r.Right && p.Y >= r.Y && p.Y < r.Bottom
}

// ClosestPoint clamps p into the rectangle (edges included).
func (r AABB) ClosestPoint(p Vector2D) Vector2D {
	return Vector2D{
		X: Clamp(p.X, r.X, r.Right),
		Y: Clamp(p.Y, r.Y, r.Bottom),
	}
}

// IntersectsCircle reports whether a circle overlaps the rectangle.
func (r AABB) IntersectsCircle(c Vector2D, radius float64) bool {
	return r.ClosestPoint(c).DistanceSquaredTo(c) <= radius*radius
}

// ClosestPerimeterPoint returns the point on the rectangle outline nearest to p.
// For an outside point this is the clamped point; for an inside point the
// nearest edge is chosen. A degenerate (zero-size) rectangle returns its center.
func (r AABB) ClosestPerimeterPoint(p Vector2D) Vector2D {
	if r.W <= 0 && r.H <= 0 {
		return r.Center()
	}
	q := r.ClosestPoint(p)
	inside := p.X > r.X && p.X < r.Right && p.Y > r.Y && p.Y < r.Bottom
	if !inside {
		return q
	}

	dl := p.X - r.X
	dr := r.Right - p.X
	dt := p.Y - r.Y
	db := r.Bottom - p.Y

	switch min(dl, dr, dt, db) {
	case dl:
		return Vector2D{X: r.X, Y: p.Y}
	case dr:
		return Vector2D{X: r.Right, Y: p.Y}
	case dt:
		return Vector2D{X: p.X, Y: r.Y}
	default:
		return Vector2D{X: p.X, Y: r.Bottom}
	}
}
