// Package onion implements route selection, per-hop key scheduling, layered
// encrypt/decrypt, and circuit lifecycle management for onion-routed
// payloads. Grounded on original_source/node/src/onion.rs (OnionRouter),
// hardened per spec.md §9's open question using the teacher's
// beacon_encrypt.go/keywrap.go AEAD framing as the hardened-mode reference.
package onion

import (
	cryptorand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/freedomnet/node/internal/cryptoutil"
	"github.com/freedomnet/node/internal/identity"
)

// RouteTTL is how long a freshly built route remains valid.
const RouteTTL = time.Hour

// CipherMode selects the layered-cipher strategy an OnionRouter uses.
type CipherMode int

const (
	// LegacyXORMode is the spec's faithful default: cycled XOR against a
	// CSPRNG-generated key. Not confidential against a passive observer and
	// not authenticated — documented in spec.md §9 as a deliberate,
	// acknowledged weakness of the reference scheme.
	LegacyXORMode CipherMode = iota
	// HardenedMode layers ChaCha20-Poly1305 AEAD with HKDF-derived per-hop
	// keys and a random nonce per layer, the concrete answer to spec.md §9's
	// open question.
	HardenedMode
)

// CircuitState is a stage in an OnionCircuit's lifecycle.
type CircuitState int

const (
	Building CircuitState = iota
	Ready
	Closing
	Closed
)

func (s CircuitState) String() string {
	switch s {
	case Building:
		return "building"
	case Ready:
		return "ready"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// OnionRoute is an ordered path through the overlay plus the per-hop
// symmetric keys used to layer-encrypt payloads along it.
type OnionRoute struct {
	RouteID       string
	Hops          []identity.NodeID
	SymmetricKeys [][]byte
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// OnionCircuit binds a route to a circuit ID and lifecycle state.
type OnionCircuit struct {
	CircuitID string
	Route     OnionRoute
	State     CircuitState
}

var (
	// ErrNotEnoughNodes is returned when fewer nodes are registered than a
	// requested route's hop count.
	ErrNotEnoughNodes = errors.New("onion: not enough nodes available")
	// ErrUnknownCircuit is returned by operations on an unregistered circuit ID.
	ErrUnknownCircuit = errors.New("onion: unknown circuit id")
)

// Router selects routes from a registered node pool, tracks circuits, and
// performs layered encryption. All maps are held under a single async-style
// RWMutex never held across external I/O, per spec.md §5.
type Router struct {
	mode CipherMode

	mu             sync.RWMutex
	circuits       map[string]*OnionCircuit
	availableNodes []identity.NodeID
	routeCache     map[string]OnionRoute
}

// NewRouter creates an empty onion Router using the given cipher mode.
func NewRouter(mode CipherMode) *Router {
	return &Router{
		mode:       mode,
		circuits:   make(map[string]*OnionCircuit),
		routeCache: make(map[string]OnionRoute),
	}
}

// RegisterNode adds a node to the pool available for route selection.
func (r *Router) RegisterNode(id identity.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.availableNodes {
		if existing == id {
			return
		}
	}
	r.availableNodes = append(r.availableNodes, id)
}

// BuildRoute selects numHops nodes uniformly at random from the pool,
// synthesizes a fresh key per hop, and computes the route ID as
// SHA3-256(h1‖h2‖…‖hn) hex-encoded.
func (r *Router) BuildRoute(numHops int) (OnionRoute, error) {
	r.mu.RLock()
	pool := make([]identity.NodeID, len(r.availableNodes))
	copy(pool, r.availableNodes)
	r.mu.RUnlock()

	if len(pool) < numHops {
		return OnionRoute{}, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughNodes, len(pool), numHops)
	}

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	hops := pool[:numHops]

	keys := make([][]byte, numHops)
	for i := range keys {
		key, err := cryptoutil.NewSymmetricKey()
		if err != nil {
			return OnionRoute{}, err
		}
		keys[i] = key
	}

	parts := make([][]byte, len(hops))
	for i, h := range hops {
		hb := h
		parts[i] = hb[:]
	}
	routeID := cryptoutil.HashConcatHex(parts...)

	now := time.Now()
	route := OnionRoute{
		RouteID:       routeID,
		Hops:          append([]identity.NodeID(nil), hops...),
		SymmetricKeys: keys,
		CreatedAt:     now,
		ExpiresAt:     now.Add(RouteTTL),
	}
	return route, nil
}

// EstablishCircuit builds a route and registers a new Building circuit over
// it, returning the fresh circuit ID.
func (r *Router) EstablishCircuit(numHops int) (string, error) {
	route, err := r.BuildRoute(numHops)
	if err != nil {
		return "", err
	}
	circuitID, err := newCircuitID()
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.circuits[circuitID] = &OnionCircuit{CircuitID: circuitID, Route: route, State: Building}
	r.routeCache[circuitID] = route
	return circuitID, nil
}

// ActivateCircuit transitions a Building circuit to Ready.
func (r *Router) ActivateCircuit(circuitID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.circuits[circuitID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCircuit, circuitID)
	}
	c.State = Ready
	return nil
}

// CloseCircuit transitions a circuit through Closing to Closed atomically.
func (r *Router) CloseCircuit(circuitID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.circuits[circuitID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCircuit, circuitID)
	}
	c.State = Closing
	c.State = Closed
	return nil
}

// GetCircuit returns a copy of the circuit for circuitID, if any.
func (r *Router) GetCircuit(circuitID string) (OnionCircuit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.circuits[circuitID]
	if !ok {
		return OnionCircuit{}, false
	}
	return *c, true
}

// EncryptPayload layers the configured cipher over payload using keys in
// reverse order (innermost hop first), so the exit node strips it last.
func (r *Router) EncryptPayload(payload []byte, keys [][]byte) ([]byte, error) {
	out := append([]byte(nil), payload...)
	var err error
	for i := len(keys) - 1; i >= 0; i-- {
		out, err = r.layerSeal(out, keys[i], i)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DecryptPayload reverses EncryptPayload, applying keys in forward order.
func (r *Router) DecryptPayload(encrypted []byte, keys [][]byte) ([]byte, error) {
	out := append([]byte(nil), encrypted...)
	var err error
	for i := 0; i < len(keys); i++ {
		out, err = r.layerOpen(out, keys[i], i)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Router) layerSeal(data, key []byte, hopIndex int) ([]byte, error) {
	switch r.mode {
	case HardenedMode:
		return aeadLayerSeal(data, key, hopIndex)
	default:
		return xorCycle(data, key), nil
	}
}

func (r *Router) layerOpen(data, key []byte, hopIndex int) ([]byte, error) {
	switch r.mode {
	case HardenedMode:
		return aeadLayerOpen(data, key, hopIndex)
	default:
		return xorCycle(data, key), nil
	}
}

// xorCycle XORs data against key, cycling the key across the payload. XOR is
// its own inverse and commutative, so this same function serves both
// directions — the property spec.md §4.4/§8 requires.
func xorCycle(data, key []byte) []byte {
	if len(key) == 0 {
		return append([]byte(nil), data...)
	}
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}

// aeadLayerSeal derives an independent per-hop AEAD key via HKDF and seals
// data with ChaCha20-Poly1305 (cryptoutil.Seal prefixes its own random
// nonce, so replay across layers is not a concern).
func aeadLayerSeal(data, key []byte, hopIndex int) ([]byte, error) {
	layerKey, err := deriveLayerKey(key, hopIndex)
	if err != nil {
		return nil, err
	}
	return cryptoutil.Seal(layerKey, data)
}

func aeadLayerOpen(data, key []byte, hopIndex int) ([]byte, error) {
	layerKey, err := deriveLayerKey(key, hopIndex)
	if err != nil {
		return nil, err
	}
	return cryptoutil.Open(layerKey, data)
}

func deriveLayerKey(key []byte, hopIndex int) ([]byte, error) {
	info := fmt.Sprintf("onion-layer-%d", hopIndex)
	return cryptoutil.DeriveKey(key, info, cryptoutil.KeySize)
}

func newCircuitID() (string, error) {
	buf := make([]byte, 16) // 128 random bits, per spec.md §3
	if _, err := io.ReadFull(cryptorand.Reader, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
