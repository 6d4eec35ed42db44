package identity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPublicKeyDeterministic(t *testing.T) {
	pk := []byte("some-public-key-bytes")
	a := FromPublicKey(pk)
	b := FromPublicKey(pk)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, FromPublicKey([]byte("other-key")))
}

func TestXORDistanceSymmetricAndZero(t *testing.T) {
	a := FromPublicKey([]byte("node-a"))
	b := FromPublicKey([]byte("node-b"))

	require.Equal(t, 0, XORDistance(a, a).Cmp(big.NewInt(0)))
	assert.Equal(t, 0, XORDistance(a, b).Cmp(XORDistance(b, a)))
}

func TestLeadingDifferingBit(t *testing.T) {
	var a, b NodeID
	// identical IDs
	assert.Equal(t, Size*8, LeadingDifferingBit(a, b))

	// differ at the very first bit
	b[0] = 0x80
	assert.Equal(t, 0, LeadingDifferingBit(a, b))

	// differ only in the last byte's last bit
	var c, d NodeID
	d[Size-1] = 0x01
	assert.Equal(t, Size*8-1, LeadingDifferingBit(c, d))
}

func TestParseHexRoundTrip(t *testing.T) {
	id := FromPublicKey([]byte("round-trip-me"))
	parsed, err := ParseHex(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseHexRejectsWrongLength(t *testing.T) {
	_, err := ParseHex("abcd")
	assert.Error(t, err)
}

func TestParseHexRejectsInvalidHex(t *testing.T) {
	_, err := ParseHex("not-hex-at-all-xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx")
	assert.Error(t, err)
}
