package kdtree

import (
	"fmt"
	"sync/atomic"
)

// Observer receives profiling callbacks from build and search. Callbacks
// must not modify the tree; they never influence results. Implementations
// shared between concurrent searchers must be safe for concurrent use.
type Observer interface {
	// VectorDistance is called for every vector-to-vector distance.
	VectorDistance()
	// NodeDistance is called for every vector-to-node bound.
	NodeDistance()
	// PivotComputed is called for every pivot (mean, middle or median).
	PivotComputed()
	// PlaneComputed is called for every hyperplane constructed.
	PlaneComputed()
	// SearchDone is called once per search with the number of results.
	SearchDone(found int)
	// StackDepth is called with the stack size after each push.
	StackDepth(depth int)
}

// Profile is an Observer counting internal operations.
type Profile struct {
	v2v        atomic.Int64
	v2n        atomic.Int64
	mean       atomic.Int64
	hyper      atomic.Int64
	searches   atomic.Int64
	neighbours atomic.Int64
	maxStack   atomic.Int64
}

// ProfileCounts is a point-in-time copy of a Profile.
type ProfileCounts struct {
	V2V        int64 // vector to vector distances
	V2N        int64 // vector to node distances
	Mean       int64 // pivot calculations
	Hyper      int64 // split plane calculations
	Searches   int64 // searches performed
	Neighbours int64 // neighbours found
	MaxStack   int64 // highest stack size
}

var _ Observer = (*Profile)(nil)

func (p *Profile) VectorDistance() { p.v2v.Add(1) }
func (p *Profile) NodeDistance()   { p.v2n.Add(1) }
func (p *Profile) PivotComputed()  { p.mean.Add(1) }
func (p *Profile) PlaneComputed()  { p.hyper.Add(1) }

func (p *Profile) SearchDone(found int) {
	p.searches.Add(1)
	p.neighbours.Add(int64(found))
}

func (p *Profile) StackDepth(depth int) {
	d := int64(depth)
	for {
		cur := p.maxStack.Load()
		if d <= cur || p.maxStack.CompareAndSwap(cur, d) {
			return
		}
	}
}

// Reset sets all counters to zero.
func (p *Profile) Reset() {
	p.v2v.Store(0)
	p.v2n.Store(0)
	p.mean.Store(0)
	p.hyper.Store(0)
	p.searches.Store(0)
	p.neighbours.Store(0)
	p.maxStack.Store(0)
}

// Snapshot returns the current counter values.
func (p *Profile) Snapshot() ProfileCounts {
	return ProfileCounts{
		V2V:        p.v2v.Load(),
		V2N:        p.v2n.Load(),
		Mean:       p.mean.Load(),
		Hyper:      p.hyper.Load(),
		Searches:   p.searches.Load(),
		Neighbours: p.neighbours.Load(),
		MaxStack:   p.maxStack.Load(),
	}
}

func (p *Profile) String() string {
	c := p.Snapshot()
	return fmt.Sprintf("v2v=%d v2n=%d mean=%d hyper=%d searches=%d neighbours=%d maxstack=%d",
		c.V2V, c.V2N, c.Mean, c.Hyper, c.Searches, c.Neighbours, c.MaxStack)
}

// nopObserver is installed when Config.Observer is nil.
type nopObserver struct{}

func (nopObserver) VectorDistance() {}
func (nopObserver) NodeDistance()   {}
func (nopObserver) PivotComputed()  {}
func (nopObserver) PlaneComputed()  {}
func (nopObserver) SearchDone(int)  {}
func (nopObserver) StackDepth(int)  {}
