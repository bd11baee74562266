// Package spatial holds the per-tick neighbour index: one quadtree for ground
// units and one for airborne units, rebuilt from scratch every tick.
package spatial

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
)

// Settings bounds the quadtree shape.
type Settings struct {
	Capacity int `json:"capacity"`
	MaxDepth int `json:"maxDepth"`
}

// DefaultSettings returns leaf capacity 8 and depth 8.
func DefaultSettings() Settings {
	return Settings{Capacity: 8, MaxDepth: 8}
}

// Quadtree stores unit pointers by center position. A node is either a leaf
// holding up to Capacity units or an inner node with exactly four children.
type Quadtree struct {
	Bounds   geometry.AABB
	settings Settings
	depth    int
	units    []*entity.Unit
	children *[4]*Quadtree // NE, NW, SE, SW
}

// NewQuadtree creates an empty tree covering bounds.
func NewQuadtree(bounds geometry.AABB, settings Settings) *Quadtree {
	if settings.Capacity < 1 {
		settings.Capacity = 1
	}
	if settings.MaxDepth < 0 {
		settings.MaxDepth = 0
	}
	return &Quadtree{Bounds: bounds, settings: settings}
}

// Insert places u in the leaf covering its center. Units outside the tree or
// with a non-finite center are dropped and false is returned.
func (q *Quadtree) Insert(u *entity.Unit) bool {
	c := u.Center()
	if !c.IsFinite() || !q.Bounds.Contains(c) {
		return false
	}
	q.insert(u, c)
	return true
}

func (q *Quadtree) insert(u *entity.Unit, c geometry.Vector2D) {
	node := q
	for node.children != nil {
		node = node.children[node.quadrant(c)]
	}
	node.units = append(node.units, u)
	if len(node.units) > node.settings.Capacity && node.depth < node.settings.MaxDepth {
		node.subdivide()
	}
}

// quadrant picks the child whose half-open bounds contain c.
func (q *Quadtree) quadrant(c geometry.Vector2D) int {
	east := c.X >= q.Bounds.CenterX
	south := c.Y >= q.Bounds.CenterY
	switch {
	case east && !south:
		return 0
	case !east && !south:
		return 1
	case east && south:
		return 2
	default:
		return 3
	}
}

func (q *Quadtree) subdivide() {
	b := q.Bounds
	hw, hh := b.W/2, b.H/2
	s := q.settings
	d := q.depth + 1
	q.children = &[4]*Quadtree{
		{Bounds: geometry.NewAABB(b.CenterX, b.Y, b.Right-b.CenterX, hh), settings: s, depth: d},
		{Bounds: geometry.NewAABB(b.X, b.Y, hw, hh), settings: s, depth: d},
		{Bounds: geometry.NewAABB(b.CenterX, b.CenterY, b.Right-b.CenterX, b.Bottom-b.CenterY), settings: s, depth: d},
		{Bounds: geometry.NewAABB(b.X, b.CenterY, hw, b.Bottom-b.CenterY), settings: s, depth: d},
	}
	units := q.units
	q.units = nil
	for _, u := range units {
		q.insert(u, u.Center())
	}
}

// Clear empties the tree, keeping the root leaf's backing array.
func (q *Quadtree) Clear() {
	q.units = q.units[:0]
	q.children = nil
}

// QueryCircle appends to buf every unit whose center lies within radius of
// center, except excludeID, and returns the extended slice.
func (q *Quadtree) QueryCircle(center geometry.Vector2D, radius float64, excludeID entity.ID, buf []*entity.Unit) []*entity.Unit {
	if radius < 0 || !center.IsFinite() || !q.Bounds.IntersectsCircle(center, radius) {
		return buf
	}
	rSq := radius * radius
	for _, u := range q.units {
		if u.ID == excludeID {
			continue
		}
		if u.Center().DistanceSquaredTo(center) <= rSq {
			buf = append(buf, u)
		}
	}
	if q.children != nil {
		for _, child := range q.children {
			buf = child.QueryCircle(center, radius, excludeID, buf)
		}
	}
	return buf
}

// Len counts the units stored in the tree.
func (q *Quadtree) Len() int {
	n := len(q.units)
	if q.children != nil {
		for _, child := range q.children {
			n += child.Len()
		}
	}
	return n
}

// Walk visits every node depth first with its bounds and depth.
func (q *Quadtree) Walk(fn func(bounds geometry.AABB, depth int, leaf bool)) {
	fn(q.Bounds, q.depth, q.children == nil)
	if q.children != nil {
		for _, child := range q.children {
			child.Walk(fn)
		}
	}
}
