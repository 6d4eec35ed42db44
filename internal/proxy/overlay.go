package proxy

import (
	"fmt"
	"strings"

	"github.com/freedomnet/node/internal/identity"
	"github.com/freedomnet/node/internal/onion"
	"github.com/freedomnet/node/internal/resolver"
	"github.com/freedomnet/node/internal/router"
)

// Resolver is the subset of *resolver.Resolver the gateway needs to turn a
// .freedom host into site metadata.
type Resolver interface {
	Resolve(name string) (resolver.SiteMetadata, bool)
}

// ContentStore is the subset of *directory.Directory the gateway needs to
// fetch a resolved site's stored bytes.
type ContentStore interface {
	GetContent(domain string) ([]byte, bool)
}

// OverlayBridge routes .freedom requests through the resolver, builds a
// wire circuit for the fetch, and serves the content store's bytes — the
// proxy-side half of SPEC_FULL.md §4.10/§4.11's overlay-namespace path
// described in spec.md's Overview ("parallel overlay namespace... through a
// single local forward proxy"). It holds the onion router, but Fetch builds
// no onion route through it.
type OverlayBridge struct {
	resolver Resolver
	content  ContentStore
	onion    *onion.Router
	router   *router.Router
}

// NewOverlayBridge wires a resolver, content store, onion router, and wire
// router together for overlay-namespace fetches.
func NewOverlayBridge(r Resolver, content ContentStore, onionRouter *onion.Router, wireRouter *router.Router) *OverlayBridge {
	return &OverlayBridge{resolver: r, content: content, onion: onionRouter, router: wireRouter}
}

// IsOverlayHost reports whether host names a .freedom overlay site.
func IsOverlayHost(host string) bool {
	return strings.HasSuffix(host, ".freedom")
}

// Fetch resolves domain, builds a one-hop circuit through the resolved
// owner, and returns the content store's bytes for it. A resolver or
// content-store miss is reported via ok=false, not an error — mirroring
// spec.md §7's "absence, not failure" rule for directory lookups.
func (b *OverlayBridge) Fetch(domain string) (content []byte, circuitID uint32, ok bool, err error) {
	meta, found := b.resolver.Resolve(domain)
	if !found {
		return nil, 0, false, nil
	}

	circuitID = b.router.BuildCircuit([]identity.NodeID{meta.OwnerNodeID})

	blob, found := b.content.GetContent(meta.Domain)
	if !found {
		return nil, circuitID, false, nil
	}
	return blob, circuitID, true, nil
}

func notFoundOverlayResponse() string {
	return "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"
}

func overlayContentResponse(content []byte) string {
	return fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: application/octet-stream\r\nContent-Length: %d\r\n\r\n%s",
		len(content), content,
	)
}
