package viewer

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/ui"
)

const unitRadius = 12

var (
	selectedColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	pathColor     = color.RGBA{R: 255, G: 255, B: 120, A: 160}
	arrowColor    = color.RGBA{R: 120, G: 200, B: 255, A: 140}
	groundQuad    = color.RGBA{R: 80, G: 255, B: 80, A: 90}
	airQuad       = color.RGBA{R: 80, G: 160, B: 255, A: 90}
	wreckColor    = color.RGBA{R: 90, G: 80, B: 70, A: 255}
	towColor      = color.RGBA{R: 200, G: 160, B: 60, A: 255}
	radiusColor   = color.RGBA{R: 255, G: 80, B: 80, A: 120}
	labelColor    = color.RGBA{R: 230, G: 230, B: 230, A: 255}
)

// tileColor is the fill of a terrain tile.
func tileColor(k tilemap.Kind) color.RGBA {
	switch k {
	case tilemap.KindWater:
		return color.RGBA{R: 30, G: 70, B: 140, A: 255}
	case tilemap.KindRock:
		return color.RGBA{R: 110, G: 100, B: 90, A: 255}
	case tilemap.KindWall:
		return color.RGBA{R: 70, G: 70, B: 75, A: 255}
	case tilemap.KindSeedCrystal:
		return color.RGBA{R: 150, G: 60, B: 170, A: 255}
	case tilemap.KindBuilding:
		return color.RGBA{R: 60, G: 55, B: 50, A: 255}
	default:
		return color.RGBA{R: 45, G: 60, B: 40, A: 255}
	}
}

// ownerColor picks the faction tint of units and buildings.
func ownerColor(owner string) color.RGBA {
	switch owner {
	case "player":
		return color.RGBA{R: 60, G: 140, B: 255, A: 255}
	case "enemy":
		return color.RGBA{R: 230, G: 70, B: 60, A: 255}
	default:
		return color.RGBA{R: 200, G: 200, B: 200, A: 255}
	}
}

// unitLetter labels a unit circle by type.
func unitLetter(t entity.UnitType) string {
	switch t {
	case entity.TypeTank:
		return "T"
	case entity.TypeRocketTank:
		return "R"
	case entity.TypeHarvester:
		return "H"
	case entity.TypeRecoveryTank:
		return "V"
	case entity.TypeDemolitionTruck:
		return "D"
	case entity.TypeHelicopter:
		return "A"
	}
	return "?"
}

func drawTiles(screen *ebiten.Image, g *tilemap.Grid) {
	if g == nil {
		return
	}
	for y := range g.Height {
		for x := range g.Width {
			t, _ := g.At(x, y)
			px, py := tilemap.TilePos{X: x, Y: y}.Origin()
			vector.FillRect(screen, float32(px), float32(py), tilemap.TileSize, tilemap.TileSize, tileColor(t.Kind), false)
		}
	}
}

func drawBuildings(screen *ebiten.Image, buildings []entity.Building) {
	for i := range buildings {
		b := &buildings[i]
		r := b.Rect()
		clr := ownerColor(b.Owner)
		if b.Health <= 0 {
			clr = color.RGBA{R: 40, G: 40, B: 40, A: 255}
		}
		vector.StrokeRect(screen, float32(r.X)+1, float32(r.Y)+1, float32(r.W)-2, float32(r.H)-2, 2, clr, false)
		ui.DrawLabel(screen, string(b.Type), r.X+4, r.Y+4, labelColor)
	}
}

func drawWrecks(screen *ebiten.Image, wrecks []simulation.WreckState) {
	for _, w := range wrecks {
		vector.FillRect(screen, float32(w.Center.X)-10, float32(w.Center.Y)-8, 20, 16, wreckColor, false)
		if w.TowedBy != 0 {
			vector.StrokeRect(screen, float32(w.Center.X)-10, float32(w.Center.Y)-8, 20, 16, 1, towColor, false)
		}
	}
}

func drawFlowFields(screen *ebiten.Image, fields []simulation.FieldState) {
	const arrowLen = tilemap.TileSize * 0.35
	for _, f := range fields {
		for _, a := range f.Arrows {
			if a.Dir.IsZero() {
				continue
			}
			cx, cy := a.Tile.Center()
			tip := geometry.Vector2D{X: cx, Y: cy}.Add(a.Dir.Mul(arrowLen))
			vector.StrokeLine(screen, float32(cx), float32(cy), float32(tip.X), float32(tip.Y), 1, arrowColor, true)
			vector.FillCircle(screen, float32(tip.X), float32(tip.Y), 1.5, arrowColor, true)
		}
	}
}

func drawQuadtree(screen *ebiten.Image, nodes []simulation.QuadNode) {
	for _, n := range nodes {
		clr := groundQuad
		if n.Air {
			clr = airQuad
		}
		b := n.Bounds
		vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), 1, clr, false)
	}
}

// drawPaths draws the remaining path of every selected unit, or of every unit
// when nothing is selected.
func drawPaths(screen *ebiten.Image, units []simulation.UnitState, selected map[entity.ID]bool) {
	for _, u := range units {
		if len(u.Path) == 0 || (len(selected) > 0 && !selected[u.ID]) {
			continue
		}
		from := u.Center
		for _, p := range u.Path {
			x, y := p.Center()
			vector.StrokeLine(screen, float32(from.X), float32(from.Y), float32(x), float32(y), 1, pathColor, true)
			from = geometry.Vector2D{X: x, Y: y}
		}
		vector.StrokeCircle(screen, float32(from.X), float32(from.Y), 4, 1, pathColor, true)
	}
}

func drawUnits(screen *ebiten.Image, units []simulation.UnitState, selected map[entity.ID]bool, collisionRadius float64) {
	// ground first so helicopters stay on top
	for _, air := range []bool{false, true} {
		for _, u := range units {
			if u.Airborne == air {
				drawUnit(screen, u, selected[u.ID], collisionRadius)
			}
		}
	}
}

func drawUnit(screen *ebiten.Image, u simulation.UnitState, selected bool, collisionRadius float64) {
	cx, cy := float32(u.Center.X), float32(u.Center.Y)
	clr := ownerColor(u.Owner)
	if u.Airborne {
		vector.FillCircle(screen, cx+4, cy+6, unitRadius, color.RGBA{A: 80}, true)
		clr.A = 200
	}
	if u.Dodging {
		clr = color.RGBA{R: 255, G: 170, B: 40, A: 255}
	}
	vector.FillCircle(screen, cx, cy, unitRadius, clr, true)

	hx := cx + float32(math.Cos(u.Rotation))*unitRadius
	hy := cy + float32(math.Sin(u.Rotation))*unitRadius
	vector.StrokeLine(screen, cx, cy, hx, hy, 2, color.Black, true)
	ui.DrawLabel(screen, unitLetter(u.Type), u.Center.X-3, u.Center.Y-6, color.Black)

	if selected {
		vector.StrokeCircle(screen, cx, cy, unitRadius+3, 1.5, selectedColor, true)
	}
	if collisionRadius > 0 {
		vector.StrokeCircle(screen, cx, cy, float32(collisionRadius), 1, radiusColor, true)
	}
}

func drawSelection(screen *ebiten.Image, a, b geometry.Vector2D) {
	x, y := min(a.X, b.X), min(a.Y, b.Y)
	w, h := math.Abs(a.X-b.X), math.Abs(a.Y-b.Y)
	vector.FillRect(screen, float32(x), float32(y), float32(w), float32(h), color.RGBA{R: 255, G: 255, B: 255, A: 30}, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, selectedColor, false)
}
