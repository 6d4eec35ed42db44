package directory

import (
	"testing"

	"github.com/freedomnet/node/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeID(b byte) identity.NodeID {
	var id identity.NodeID
	id[0] = b
	return id
}

func TestDomainRegistrationIdempotentByKey(t *testing.T) {
	d := New(nodeID(0xEE), 0)

	x := FreedomAddress{Domain: "example.freedom", NodeID: nodeID(0x01), PublicKey: []byte{1}}
	y := FreedomAddress{Domain: "example.freedom", NodeID: nodeID(0x02), PublicKey: []byte{2}}

	d.RegisterDomain(x)
	d.RegisterDomain(y)

	got, ok := d.LookupDomain("example.freedom")
	require.True(t, ok)
	assert.Equal(t, y, got)
}

func TestLookupDomainMissIsAbsence(t *testing.T) {
	d := New(nodeID(0xEE), 0)
	_, ok := d.LookupDomain("nope.freedom")
	assert.False(t, ok)
}

func TestContentStoreRoundTrip(t *testing.T) {
	d := New(nodeID(0xEE), 0)
	d.StoreContent("blog.freedom", []byte("hello"))
	got, ok := d.GetContent("blog.freedom")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got)

	_, ok = d.GetContent("missing.freedom")
	assert.False(t, ok)
}

func TestFindClosestPeersOrderingAndLimit(t *testing.T) {
	d := New(nodeID(0xEE), 0)

	ids := []identity.NodeID{nodeID(0x00), nodeID(0x01), nodeID(0xFF)}
	for _, id := range ids {
		d.RegisterPeer(PeerInfo{NodeID: id, Addr: "127.0.0.1:1"})
	}

	target := nodeID(0x00)
	closest := d.FindClosestPeers(target, 3)
	require.Len(t, closest, 3)
	assert.Equal(t, nodeID(0x00), closest[0].NodeID)
	assert.Equal(t, nodeID(0x01), closest[1].NodeID)
	assert.Equal(t, nodeID(0xFF), closest[2].NodeID)

	// non-decreasing by XOR distance to target
	for i := 1; i < len(closest); i++ {
		prev := identity.XORDistance(closest[i-1].NodeID, target)
		cur := identity.XORDistance(closest[i].NodeID, target)
		assert.True(t, prev.Cmp(cur) <= 0)
	}

	limited := d.FindClosestPeers(target, 1)
	assert.Len(t, limited, 1)
}

func TestRegisterPeerEvictsLeastRecentlySeenOnOverflow(t *testing.T) {
	// All of these share the same leading-differing bit against self (0xEE…00)
	// by construction: vary only the low byte, always setting its top bit, so
	// they land in the same bucket.
	self := nodeID(0xEE)
	peerA := self
	peerA[identity.Size-1] = 0x81
	peerB := self
	peerB[identity.Size-1] = 0x82
	peerC := self
	peerC[identity.Size-1] = 0x83

	dd := New(self, 2)
	dd.RegisterPeer(PeerInfo{NodeID: peerA, Addr: "a"})
	dd.RegisterPeer(PeerInfo{NodeID: peerB, Addr: "b"})
	dd.RegisterPeer(PeerInfo{NodeID: peerC, Addr: "c"}) // should evict peerA (oldest)

	all := dd.FindClosestPeers(self, 10)
	var seen []identity.NodeID
	for _, p := range all {
		seen = append(seen, p.NodeID)
	}
	assert.Contains(t, seen, peerB)
	assert.Contains(t, seen, peerC)
	assert.NotContains(t, seen, peerA)
}
