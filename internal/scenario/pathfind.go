package scenario

import (
	"slices"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

var steps = [8]tilemap.TilePos{
	{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1},
	{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1},
}

// FindPath is a breadth-first search over passable tiles, 8-connected with no
// corner cutting. The returned path starts at start and ends at goal; it is
// nil when goal is blocked or unreachable. A building tile is a valid goal so
// trucks can be sent into their ram target. Occupancy is ignored: units flow
// around each other through steering and dodging.
func FindPath(start, goal tilemap.TilePos, grid *tilemap.Grid, _ *tilemap.Occupancy) []tilemap.TilePos {
	if grid == nil || !grid.InBounds(start.X, start.Y) || !enterable(grid, goal) {
		return nil
	}
	if start == goal {
		return []tilemap.TilePos{start}
	}

	idx := func(p tilemap.TilePos) int { return p.Y*grid.Width + p.X }
	prev := make([]int, grid.Width*grid.Height)
	for i := range prev {
		prev[i] = -1
	}
	prev[idx(start)] = idx(start)

	queue := []tilemap.TilePos{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, s := range steps {
			next := tilemap.TilePos{X: cur.X + s.X, Y: cur.Y + s.Y}
			if !grid.InBounds(next.X, next.Y) || prev[idx(next)] != -1 {
				continue
			}
			if next != goal && !grid.Passable(next.X, next.Y) {
				continue
			}
			if s.X != 0 && s.Y != 0 && (!grid.Passable(cur.X+s.X, cur.Y) || !grid.Passable(cur.X, cur.Y+s.Y)) {
				continue
			}
			prev[idx(next)] = idx(cur)
			if next == goal {
				return walkBack(prev, start, goal, grid.Width)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func enterable(grid *tilemap.Grid, p tilemap.TilePos) bool {
	t, ok := grid.At(p.X, p.Y)
	return ok && (t.Passable() || t.Kind == tilemap.KindBuilding)
}

func walkBack(prev []int, start, goal tilemap.TilePos, width int) []tilemap.TilePos {
	var path []tilemap.TilePos
	for p := goal; ; {
		path = append(path, p)
		if p == start {
			break
		}
		i := prev[p.Y*width+p.X]
		p = tilemap.TilePos{X: i % width, Y: i / width}
	}
	slices.Reverse(path)
	return path
}
