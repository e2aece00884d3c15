// Package registry keeps the latest admitted report for every tracked vessel.
//
// The registry applies a geographic admission filter, upserts by MMSI with
// last-write-wins semantics and caps the population by evicting the
// earliest-inserted vessel. It is owned by a single goroutine and does no
// locking of its own.
package registry

import (
	"container/list"

	"github.com/theoremus-urban-solutions/ais-shipdomain/ais"
	"github.com/theoremus-urban-solutions/ais-shipdomain/geo"
)

// DefaultMaxVessels is the population cap used when none is configured.
const DefaultMaxVessels = 10000

// DefaultBounds is the region of interest for admission.
var DefaultBounds = geo.Bounds{MinLon: 120.036, MaxLon: 120.503, MinLat: 35.9, MaxLat: 36.3}

// State is the current state of one vessel.
type State struct {
	Report ais.Report
	// Updates counts admitted reports for this vessel, starting at 1.
	Updates int
}

// Result describes what Admit did with a report.
type Result struct {
	Admitted bool
	New      bool
	// Evicted is the MMSI removed to make room, or "" when nothing was evicted.
	Evicted string
}

// Registry is an insertion-ordered, capped set of vessel states.
type Registry struct {
	bounds geo.Bounds
	limit  int

	order *list.List // of string MMSIs, oldest first
	state map[string]*State
}

// New returns an empty registry. limit <= 0 selects DefaultMaxVessels.
func New(bounds geo.Bounds, limit int) *Registry {
	if limit <= 0 {
		limit = DefaultMaxVessels
	}
	return &Registry{
		bounds: bounds,
		limit:  limit,
		order:  list.New(),
		state:  map[string]*State{},
	}
}

// Admit filters r by position and upserts it. Reports outside the bounds are
// dropped without touching the registry. A report for a known vessel replaces
// its state in place; a report for a new vessel is appended, evicting the
// oldest vessel first when the registry is full.
func (g *Registry) Admit(r ais.Report) Result {
	if !g.bounds.Contains(r.Lon, r.Lat) {
		return Result{}
	}

	if st, ok := g.state[r.MMSI]; ok {
		st.Report = r
		st.Updates++
		return Result{Admitted: true}
	}

	res := Result{Admitted: true, New: true}
	if g.order.Len() >= g.limit {
		res.Evicted = g.evictOldest()
	}
	g.order.PushBack(r.MMSI)
	g.state[r.MMSI] = &State{Report: r, Updates: 1}
	return res
}

func (g *Registry) evictOldest() string {
	front := g.order.Front()
	if front == nil {
		return ""
	}
	id := g.order.Remove(front).(string)
	delete(g.state, id)
	return id
}

// Get returns a copy of the state for id.
func (g *Registry) Get(id string) (State, bool) {
	st, ok := g.state[id]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Len returns the number of tracked vessels.
func (g *Registry) Len() int { return g.order.Len() }

// Max returns the population cap.
func (g *Registry) Max() int { return g.limit }

// Bounds returns the admission box.
func (g *Registry) Bounds() geo.Bounds { return g.bounds }

// Snapshot returns a copy of every state in insertion order.
func (g *Registry) Snapshot() []State {
	out := make([]State, 0, g.order.Len())
	g.Each(func(st State) {
		out = append(out, st)
	})
	return out
}

// Each calls fn for every state in insertion order.
func (g *Registry) Each(fn func(State)) {
	for e := g.order.Front(); e != nil; e = e.Next() {
		fn(*g.state[e.Value.(string)])
	}
}
