// Package directory implements the node's distributed directory: a
// Kademlia-style k-bucket table indexed by 256-bit node IDs, a .freedom
// domain registry, and a rudimentary content blob store. Grounded on
// original_source/node/src/protocol.rs's DHT struct, generalized per spec.md
// §4.1 to fix the bucket-0-only insertion bug spec.md §9 flags.
package directory

import (
	"sort"
	"sync"
	"time"

	"github.com/freedomnet/node/internal/identity"
)

// BucketCount is the number of k-buckets, one per possible leading-differing
// bit position across a 256-bit identifier.
const BucketCount = identity.Size * 8

// DefaultBucketSize is the classical Kademlia "k" — the max peers held per
// bucket before least-recently-seen eviction kicks in.
const DefaultBucketSize = 20

// PeerInfo is a directory entry: a NodeID and its "host:port" socket address.
type PeerInfo struct {
	NodeID   identity.NodeID
	Addr     string
	lastSeen time.Time
}

// FreedomAddress binds a .freedom domain name to an owning NodeID and its
// public key bytes. A domain maps to at most one address; re-registration
// replaces it (spec.md §3).
type FreedomAddress struct {
	Domain    string
	NodeID    identity.NodeID
	PublicKey []byte
}

// Directory is the node's DHT: k-buckets, domain registry, and content store,
// each behind its own reader/writer lock so reads on one never block writes
// on another (spec.md §4.1, §5).
type Directory struct {
	self identity.NodeID

	bucketsMu sync.RWMutex
	buckets   [BucketCount][]PeerInfo
	size      int

	domainsMu sync.RWMutex
	domains   map[string]FreedomAddress

	contentMu sync.RWMutex
	content   map[string][]byte
}

// New creates an empty Directory for the given local node ID. bucketSize of
// 0 uses DefaultBucketSize.
func New(self identity.NodeID, bucketSize int) *Directory {
	if bucketSize <= 0 {
		bucketSize = DefaultBucketSize
	}
	return &Directory{
		self:    self,
		size:    bucketSize,
		domains: make(map[string]FreedomAddress),
		content: make(map[string][]byte),
	}
}

// RegisterPeer inserts or refreshes a peer in its k-bucket, indexed by the
// leading-differing-bit position between the peer and the local node ID.
// Overcapacity triggers least-recently-seen eviction, never refusal
// (spec.md §4.1, §7).
func (d *Directory) RegisterPeer(p PeerInfo) {
	idx := identity.LeadingDifferingBit(d.self, p.NodeID)
	if idx >= BucketCount {
		// p.NodeID == d.self; nothing meaningful to route to.
		idx = BucketCount - 1
	}
	p.lastSeen = time.Now()

	d.bucketsMu.Lock()
	defer d.bucketsMu.Unlock()

	bucket := d.buckets[idx]
	for i, existing := range bucket {
		if existing.NodeID == p.NodeID {
			bucket[i] = p
			return
		}
	}
	if len(bucket) < d.size {
		d.buckets[idx] = append(bucket, p)
		return
	}
	// Bucket full: evict the least-recently-seen entry. No liveness probe is
	// made first, so an entry that is still live is evicted all the same.
	oldest := 0
	for i := 1; i < len(bucket); i++ {
		if bucket[i].lastSeen.Before(bucket[oldest].lastSeen) {
			oldest = i
		}
	}
	bucket[oldest] = p
}

// RegisterDomain inserts or replaces a .freedom domain mapping.
func (d *Directory) RegisterDomain(addr FreedomAddress) {
	d.domainsMu.Lock()
	defer d.domainsMu.Unlock()
	d.domains[addr.Domain] = addr
}

// LookupDomain returns the address registered for domain, if any. A miss is
// absence, not an error (spec.md §7).
func (d *Directory) LookupDomain(domain string) (FreedomAddress, bool) {
	d.domainsMu.RLock()
	defer d.domainsMu.RUnlock()
	addr, ok := d.domains[domain]
	return addr, ok
}

// ListDomains returns every currently-registered domain name, used by the
// dashboard's /api/sites/list supplement (SPEC_FULL.md §4.10).
func (d *Directory) ListDomains() []string {
	d.domainsMu.RLock()
	defer d.domainsMu.RUnlock()
	out := make([]string, 0, len(d.domains))
	for name := range d.domains {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// StoreContent stores content bytes keyed by domain name.
func (d *Directory) StoreContent(domain string, content []byte) {
	d.contentMu.Lock()
	defer d.contentMu.Unlock()
	d.content[domain] = content
}

// GetContent retrieves content previously stored for domain.
func (d *Directory) GetContent(domain string) ([]byte, bool) {
	d.contentMu.RLock()
	defer d.contentMu.RUnlock()
	content, ok := d.content[domain]
	return content, ok
}

// FindClosestPeers flattens all k-buckets into a single list, sorts ascending
// by XOR distance to target, and returns at most k entries. Ties are broken
// by the full 256-bit comparison so the ordering is total (spec.md §4.1).
func (d *Directory) FindClosestPeers(target identity.NodeID, k int) []PeerInfo {
	d.bucketsMu.RLock()
	all := make([]PeerInfo, 0, d.size)
	for _, bucket := range d.buckets {
		all = append(all, bucket...)
	}
	d.bucketsMu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return identity.XORDistance(all[i].NodeID, target).Cmp(identity.XORDistance(all[j].NodeID, target)) < 0
	})
	if k < len(all) {
		all = all[:k]
	}
	return all
}
