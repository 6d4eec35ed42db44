package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionLifecycleCounters(t *testing.T) {
	m := New()
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.TotalConnections)
	assert.Equal(t, uint64(1), snap.ActiveConnections)
}

func TestConnectionClosedSaturatesAtZero(t *testing.T) {
	m := New()
	m.ConnectionClosed()
	m.ConnectionClosed()

	assert.Equal(t, uint64(0), m.Snapshot().ActiveConnections)
}

func TestByteCountersAccumulate(t *testing.T) {
	m := New()
	m.AddBytesSent(100)
	m.AddBytesSent(50)
	m.AddBytesReceived(25)

	snap := m.Snapshot()
	assert.Equal(t, uint64(150), snap.BytesSent)
	assert.Equal(t, uint64(25), snap.BytesReceived)
}
