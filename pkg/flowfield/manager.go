package flowfield

import (
	"slices"
	"time"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// Settings tunes chokepoint detection and the field cache.
type Settings struct {
	ChokepointWidth        int     `json:"chokepointWidth"`
	FieldRadius            int     `json:"fieldRadius"`
	TTLSeconds             float64 `json:"ttlSeconds"`
	MaxFields              int     `json:"maxFields"`
	OccupiedPenalty        float64 `json:"occupiedPenalty"`
	CleanupIntervalSeconds float64 `json:"cleanupIntervalSeconds"`
}

func DefaultSettings() Settings {
	return Settings{
		ChokepointWidth:        3,
		FieldRadius:            10,
		TTLSeconds:             5,
		MaxFields:              50,
		OccupiedPenalty:        0.5,
		CleanupIntervalSeconds: 1,
	}
}

func (s Settings) ttl() time.Duration {
	return time.Duration(s.TTLSeconds * float64(time.Second))
}

func (s Settings) cleanupInterval() time.Duration {
	return time.Duration(s.CleanupIntervalSeconds * float64(time.Second))
}

type fieldKey struct {
	center, dest tilemap.TilePos
}

// Manager owns the flow-field cache. It is not safe for concurrent use; the
// engine calls it from a single goroutine.
type Manager struct {
	settings    Settings
	now         func() time.Time
	fields      map[fieldKey]*FlowField
	lastCleanup time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(settings Settings, opts ...Option) *Manager {
	m := &Manager{
		settings: settings,
		now:      time.Now,
		fields:   make(map[fieldKey]*FlowField),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lastCleanup = m.now()
	return m
}

// Settings returns the active settings.
func (m *Manager) Settings() Settings {
	return m.settings
}

// SetSettings swaps the tuning and drops every cached field, since their
// shape depends on it.
func (m *Manager) SetSettings(s Settings) {
	m.settings = s
	clear(m.fields)
}

// DetectChokepoint applies Detect with the configured width threshold.
func (m *Manager) DetectChokepoint(tx, ty int, grid *tilemap.Grid) (Chokepoint, bool) {
	return Detect(tx, ty, grid, m.settings.ChokepointWidth)
}

// GenerateFlowField returns the cached field for (center, dest) when it is
// younger than the TTL, refreshing its LastUsed stamp; otherwise it builds
// and caches a new one.
func (m *Manager) GenerateFlowField(center, dest tilemap.TilePos, grid *tilemap.Grid, occ *tilemap.Occupancy) *FlowField {
	if m == nil || grid == nil {
		return nil
	}
	now := m.now()
	if now.Sub(m.lastCleanup) >= m.settings.cleanupInterval() {
		m.Cleanup()
	}

	key := fieldKey{center: center, dest: dest}
	if f, ok := m.fields[key]; ok && now.Sub(f.CreatedAt) < m.settings.ttl() {
		f.LastUsed = now
		return f
	}

	f := build(center, dest, max(m.settings.FieldRadius, 0), grid, occ, m.settings.OccupiedPenalty, now)
	m.fields[key] = f
	if m.settings.MaxFields > 0 && len(m.fields) > m.settings.MaxFields {
		m.evictLRU()
	}
	return f
}

// Cleanup drops expired fields, then evicts least-recently-used fields while
// the cache is over MaxFields. It returns how many fields were removed.
func (m *Manager) Cleanup() int {
	if m == nil {
		return 0
	}
	now := m.now()
	m.lastCleanup = now
	before := len(m.fields)
	ttl := m.settings.ttl()
	for k, f := range m.fields {
		if now.Sub(f.CreatedAt) >= ttl {
			delete(m.fields, k)
		}
	}
	if m.settings.MaxFields > 0 && len(m.fields) > m.settings.MaxFields {
		m.evictLRU()
	}
	return before - len(m.fields)
}

func (m *Manager) evictLRU() {
	keys := make([]fieldKey, 0, len(m.fields))
	for k := range m.fields {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b fieldKey) int {
		return m.fields[a].LastUsed.Compare(m.fields[b].LastUsed)
	})
	for _, k := range keys[:len(keys)-m.settings.MaxFields] {
		delete(m.fields, k)
	}
}

// FlowDirectionForUnit returns the field entry under the unit's center when
// the unit stands on a chokepoint tile; false everywhere else.
func (m *Manager) FlowDirectionForUnit(u *entity.Unit, dest tilemap.TilePos, grid *tilemap.Grid, occ *tilemap.Occupancy) (Direction, bool) {
	if m == nil || u == nil || grid == nil {
		return Direction{}, false
	}
	tile := tilemap.TileAt(u.CX, u.CY)
	cp, ok := m.DetectChokepoint(tile.X, tile.Y, grid)
	if !ok {
		return Direction{}, false
	}
	f := m.GenerateFlowField(cp.Center, dest, grid, occ)
	if f == nil {
		return Direction{}, false
	}
	return f.At(tile)
}

// Len returns the number of cached fields.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.fields)
}

// Fields returns the cached fields ordered by center then destination.
func (m *Manager) Fields() []*FlowField {
	if m == nil {
		return nil
	}
	out := make([]*FlowField, 0, len(m.fields))
	for _, f := range m.fields {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b *FlowField) int {
		if c := cmpTile(a.Center, b.Center); c != 0 {
			return c
		}
		return cmpTile(a.Destination, b.Destination)
	})
	return out
}

func cmpTile(a, b tilemap.TilePos) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}
