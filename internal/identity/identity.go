// Package identity implements the node's 256-bit identifier space: derivation
// from a public key and the XOR distance metric used throughout the directory
// and onion-routing components.
package identity

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"
)

// Size is the length in bytes of a NodeId.
const Size = 32

// NodeID is a 256-bit opaque identifier. Equality and hashing are byte-wise.
type NodeID [Size]byte

// FromPublicKey derives a NodeID deterministically from a node's public key
// by SHA3-256, per spec.md §3.
func FromPublicKey(pubKey []byte) NodeID {
	return NodeID(sha3.Sum256(pubKey))
}

// String renders the NodeID as lowercase hex.
func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// ParseHex parses a NodeID previously rendered by String.
func ParseHex(s string) (NodeID, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return NodeID{}, err
	}
	if len(raw) != Size {
		return NodeID{}, fmt.Errorf("identity: want %d bytes, got %d", Size, len(raw))
	}
	var id NodeID
	copy(id[:], raw)
	return id, nil
}

// IsZero reports whether id is the all-zero identifier.
func (id NodeID) IsZero() bool {
	return id == NodeID{}
}

// XORDistance returns the bitwise XOR of a and b interpreted as a big unsigned
// integer, used for ordering proximity in the directory (spec.md §3).
func XORDistance(a, b NodeID) *big.Int {
	var out [Size]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return new(big.Int).SetBytes(out[:])
}

// LeadingDifferingBit returns the index (0 = most significant bit) of the
// first bit at which a and b differ, or Size*8 if they are identical. This is
// the k-bucket index a correct Kademlia-style table maintains peers under,
// fixing the bucket-0-only bug spec.md §9 calls out in the original source.
func LeadingDifferingBit(a, b NodeID) int {
	for byteIdx := 0; byteIdx < Size; byteIdx++ {
		diff := a[byteIdx] ^ b[byteIdx]
		if diff == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if diff&(0x80>>uint(bit)) != 0 {
				return byteIdx*8 + bit
			}
		}
	}
	return Size * 8
}

// Equal reports whether a and b are the same identifier.
func Equal(a, b NodeID) bool { return a == b }
