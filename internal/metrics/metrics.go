// Package metrics holds the proxy gateway's traffic counters as a single
// type shared by internal/proxy and internal/dashboard, avoiding an import
// cycle between the two. Grounded on original_source/node/src/proxy.rs's
// ProxyMetrics (four Arc<RwLock<u64>> fields).
package metrics

import "sync"

// ProxyMetrics tracks cumulative byte counts and connection counts for the
// forward-proxy gateway. All fields are protected by one RWMutex, per
// SPEC_FULL.md §5's lock-collapse note.
type ProxyMetrics struct {
	mu               sync.RWMutex
	bytesSent        uint64
	bytesReceived    uint64
	totalConnections uint64
	activeConns      uint64
}

// New creates a zeroed ProxyMetrics.
func New() *ProxyMetrics {
	return &ProxyMetrics{}
}

// ConnectionOpened records a newly accepted connection.
func (m *ProxyMetrics) ConnectionOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalConnections++
	m.activeConns++
}

// ConnectionClosed decrements the active count, saturating at zero.
func (m *ProxyMetrics) ConnectionClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeConns > 0 {
		m.activeConns--
	}
}

// AddBytesSent adds n to the cumulative bytes-sent counter.
func (m *ProxyMetrics) AddBytesSent(n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytesSent += n
}

// AddBytesReceived adds n to the cumulative bytes-received counter.
func (m *ProxyMetrics) AddBytesReceived(n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytesReceived += n
}

// Snapshot is a point-in-time copy of all counters, safe to marshal.
type Snapshot struct {
	BytesSent         uint64 `json:"bytes_sent"`
	BytesReceived     uint64 `json:"bytes_received"`
	TotalConnections  uint64 `json:"total_connections"`
	ActiveConnections uint64 `json:"active_connections"`
}

// Snapshot returns a consistent copy of the current counters.
func (m *ProxyMetrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		BytesSent:         m.bytesSent,
		BytesReceived:     m.bytesReceived,
		TotalConnections:  m.totalConnections,
		ActiveConnections: m.activeConns,
	}
}
