package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/alde/glassmap/pkg/encoder"
	"github.com/alde/glassmap/pkg/glassmap"
)

// Kind selects which of the two maps an entry holds
type Kind string

const (
	KindDisplacement Kind = "displacement"
	KindSpecular     Kind = "specular"
)

// Key identifies one encoded map
type Key struct {
	Geometry glassmap.Geometry
	Kind     Kind
	Format   encoder.Format
}

// NewKey builds the key for one map of g. Parameters the map does not
// depend on are zeroed: displacement ignores the light angle and specular
// ignores glass thickness.
func NewKey(g glassmap.Geometry, kind Kind, format encoder.Format) Key {
	switch kind {
	case KindDisplacement:
		g.LightAngle = 0
	case KindSpecular:
		g.GlassThickness = 0
	}
	return Key{Geometry: g, Kind: kind, Format: format}
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Kind, k.Format, k.Geometry)
}

// Entry is an encoded map ready to be served
type Entry struct {
	Data            []byte
	MediaType       string
	MaxDisplacement float64
}

// Stats are cumulative cache counters
type Stats struct {
	Hits   uint64
	Misses uint64
	Len    int
}

// Maps memoizes encoded maps in a fixed-size LRU
type Maps struct {
	entries *lru.Cache[Key, Entry]
	hits    atomic.Uint64
	misses  atomic.Uint64

	// concurrent misses on one key render once
	builds singleflight.Group
}

// New creates a cache holding at most size encoded maps
func New(size int) (*Maps, error) {
	entries, err := lru.New[Key, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create map cache: %w", err)
	}
	return &Maps{entries: entries}, nil
}

// Get returns a cached entry
func (m *Maps) Get(key Key) (Entry, bool) {
	e, ok := m.entries.Get(key)
	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return e, ok
}

// GetOrBuild returns the cached entry for key, calling build on a miss.
// Builds of different keys run concurrently. Failed builds are not cached.
func (m *Maps) GetOrBuild(key Key, build func() (Entry, error)) (Entry, error) {
	if e, ok := m.Get(key); ok {
		return e, nil
	}

	v, err, _ := m.builds.Do(key.String(), func() (any, error) {
		if e, ok := m.entries.Peek(key); ok {
			return e, nil
		}
		e, err := build()
		if err != nil {
			return nil, err
		}
		m.entries.Add(key, e)
		return e, nil
	})
	if err != nil {
		return Entry{}, err
	}
	return v.(Entry), nil
}

// Purge drops every entry
func (m *Maps) Purge() {
	m.entries.Purge()
}

// Stats returns the current counters
func (m *Maps) Stats() Stats {
	return Stats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
		Len:    m.entries.Len(),
	}
}
