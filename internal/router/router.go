// Package router implements wire-level circuit bookkeeping: allocating
// circuit IDs and tracking the current hop position along a path. Grounded
// on original_source/node/src/routing.rs's Router almost directly.
package router

import (
	"sync"

	"github.com/freedomnet/node/internal/identity"
)

// Circuit is the wire-level circuit: a u32 ID, an ordered list of hops, and
// the index of the hop currently being traversed.
type Circuit struct {
	ID         uint32
	Hops       []identity.NodeID
	CurrentHop int
}

// Router allocates circuit IDs from a monotonic wrapping counter and stores
// circuits in a concurrent map keyed by ID.
type Router struct {
	mu       sync.RWMutex
	circuits map[uint32]*Circuit
	nextID   uint32
}

// New creates an empty Router. The first allocated circuit ID is 1, matching
// the original source's counter start.
func New() *Router {
	return &Router{circuits: make(map[uint32]*Circuit), nextID: 1}
}

// BuildCircuit allocates a new circuit ID and stores a Circuit over hops,
// starting at hop index 0.
func (r *Router) BuildCircuit(hops []identity.NodeID) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++ // wraps naturally on overflow, per spec.md §3

	r.circuits[id] = &Circuit{ID: id, Hops: hops, CurrentHop: 0}
	return id
}

// GetCircuit returns a copy of the circuit for id, if any.
func (r *Router) GetCircuit(id uint32) (Circuit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.circuits[id]
	if !ok {
		return Circuit{}, false
	}
	return *c, true
}

// AdvanceHop increments the circuit's hop index and reports whether more
// hops remain.
func (r *Router) AdvanceHop(id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.circuits[id]
	if !ok {
		return false
	}
	c.CurrentHop++
	return c.CurrentHop < len(c.Hops)
}

// GetNextHop returns the hop at the circuit's current index, or false past
// the end.
func (r *Router) GetNextHop(id uint32) (identity.NodeID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.circuits[id]
	if !ok || c.CurrentHop >= len(c.Hops) {
		return identity.NodeID{}, false
	}
	return c.Hops[c.CurrentHop], true
}

// GetExitNode returns the last hop of the circuit, if any.
func (r *Router) GetExitNode(id uint32) (identity.NodeID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.circuits[id]
	if !ok || len(c.Hops) == 0 {
		return identity.NodeID{}, false
	}
	return c.Hops[len(c.Hops)-1], true
}

// DestroyCircuit removes the circuit's bookkeeping entirely.
func (r *Router) DestroyCircuit(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.circuits, id)
}
