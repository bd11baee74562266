package spatial

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
)

// Index pairs a ground tree and an air tree over the same map rectangle.
type Index struct {
	ground *Quadtree
	air    *Quadtree
	buf    []*entity.Unit
}

// NewIndex creates an index covering a width x height pixel map.
func NewIndex(width, height float64, settings Settings) *Index {
	bounds := geometry.NewAABB(0, 0, width, height)
	return &Index{
		ground: NewQuadtree(bounds, settings),
		air:    NewQuadtree(bounds, settings),
		buf:    make([]*entity.Unit, 0, 64),
	}
}

// Rebuild clears both trees and reinserts every live unit by domain,
// refreshing its cached center first.
func (ix *Index) Rebuild(units []*entity.Unit) {
	if ix == nil {
		return
	}
	ix.ground.Clear()
	ix.air.Clear()
	for _, u := range units {
		if !u.Alive() {
			continue
		}
		u.UpdateCenter()
		ix.tree(u.Domain()).Insert(u)
	}
}

// QueryNearby returns the live units of domain within radius of center,
// excluding excludeID. The returned slice is borrowed: it is overwritten by
// the next query on this Index, so callers that keep results must copy them.
func (ix *Index) QueryNearby(center geometry.Vector2D, radius float64, domain entity.Domain, excludeID entity.ID) []*entity.Unit {
	if ix == nil {
		return nil
	}
	ix.buf = ix.tree(domain).QueryCircle(center, radius, excludeID, ix.buf[:0])
	// units may have died since the rebuild
	out := ix.buf[:0]
	for _, u := range ix.buf {
		if u.Alive() {
			out = append(out, u)
		}
	}
	ix.buf = out
	return out
}

// Len returns the number of indexed units in domain.
func (ix *Index) Len(domain entity.Domain) int {
	if ix == nil {
		return 0
	}
	return ix.tree(domain).Len()
}

// Tree exposes a domain tree for read-only walks (debug overlays).
func (ix *Index) Tree(domain entity.Domain) *Quadtree {
	return ix.tree(domain)
}

func (ix *Index) tree(domain entity.Domain) *Quadtree {
	if domain == entity.DomainAir {
		return ix.air
	}
	return ix.ground
}
