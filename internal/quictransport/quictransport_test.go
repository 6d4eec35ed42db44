package quictransport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freedomnet/node/internal/identity"
)

func TestGenerateSelfSignedCertProducesValidTLSConfig(t *testing.T) {
	certDER, tlsConf, err := generateSelfSignedCert()
	require.NoError(t, err)
	assert.NotEmpty(t, certDER)
	require.Len(t, tlsConf.Certificates, 1)
	assert.Equal(t, certDER, tlsConf.Certificates[0].Certificate[0])
}

func TestNodeIDDerivedFromCertIsDeterministicPerCert(t *testing.T) {
	certDER, _, err := generateSelfSignedCert()
	require.NoError(t, err)

	id1 := identity.FromPublicKey(certDER)
	id2 := identity.FromPublicKey(certDER)
	assert.Equal(t, id1, id2)
}

func TestDistinctCertsYieldDistinctNodeIDs(t *testing.T) {
	certA, _, err := generateSelfSignedCert()
	require.NoError(t, err)
	certB, _, err := generateSelfSignedCert()
	require.NoError(t, err)

	assert.NotEqual(t, identity.FromPublicKey(certA), identity.FromPublicKey(certB))
}
