// Package resolver implements .freedom overlay-name resolution with an
// in-process cache, backed today by the local directory and tomorrow by a
// bootstrap peer (original_source/node/src/resolver.rs).
package resolver

import (
	"strings"
	"sync"

	"github.com/freedomnet/node/internal/directory"
	"github.com/freedomnet/node/internal/identity"
)

const suffix = ".freedom"

// SiteMetadata describes a resolved overlay site.
type SiteMetadata struct {
	Domain          string
	OwnerNodeID     identity.NodeID
	Host            string
	Port            uint16
	ProtocolVersion uint32
}

// Directory is the subset of *directory.Directory the resolver depends on,
// kept narrow so tests can supply a fake.
type Directory interface {
	LookupDomain(domain string) (directory.FreedomAddress, bool)
}

// Resolver normalizes and resolves .freedom names, caching results.
type Resolver struct {
	dir Directory

	mu    sync.RWMutex
	cache map[string]SiteMetadata
}

// New creates a Resolver backed by dir.
func New(dir Directory) *Resolver {
	return &Resolver{dir: dir, cache: make(map[string]SiteMetadata)}
}

// Normalize appends the .freedom suffix if not already present.
func Normalize(name string) string {
	if strings.HasSuffix(name, suffix) {
		return name
	}
	return name + suffix
}

// Resolve normalizes name, checks the cache, and on miss queries the
// directory, populating the cache before returning.
func (r *Resolver) Resolve(name string) (SiteMetadata, bool) {
	domain := Normalize(name)

	r.mu.RLock()
	cached, ok := r.cache[domain]
	r.mu.RUnlock()
	if ok {
		return cached, true
	}

	addr, ok := r.dir.LookupDomain(domain)
	if !ok {
		return SiteMetadata{}, false
	}

	meta := SiteMetadata{
		Domain:          domain,
		OwnerNodeID:     addr.NodeID,
		Host:            "127.0.0.1",
		Port:            5000,
		ProtocolVersion: 1,
	}

	r.mu.Lock()
	r.cache[domain] = meta
	r.mu.Unlock()

	return meta, true
}

// AddMapping injects a cache entry directly, for tests and local overrides.
func (r *Resolver) AddMapping(name string, meta SiteMetadata) {
	domain := Normalize(name)
	meta.Domain = domain

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[domain] = meta
}

// ClearCache empties the resolution cache.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]SiteMetadata)
}

// ListCached returns every domain currently cached.
func (r *Resolver) ListCached() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.cache))
	for name := range r.cache {
		out = append(out, name)
	}
	return out
}
