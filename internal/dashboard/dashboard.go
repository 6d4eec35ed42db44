// Package dashboard implements the node's local management HTTP server: a
// static status page plus JSON endpoints for status/config/stats, extended
// with a read-only content-store browsing supplement (SPEC_FULL.md §4.10).
// Grounded on original_source/node/src/web.rs's WebDashboard almost
// directly; the HTML page is carried over byte-identical, matching
// spec.md's explicit "static HTML/JS dashboard assets" out-of-scope note.
package dashboard

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/freedomnet/node/internal/directory"
	"github.com/freedomnet/node/internal/identity"
	"github.com/freedomnet/node/internal/logging"
	"github.com/freedomnet/node/internal/metrics"
)

const readBufferSize = 4096

const corsHeaders = "Access-Control-Allow-Origin: *\r\n" +
	"Access-Control-Allow-Methods: GET, OPTIONS\r\n" +
	"Access-Control-Allow-Headers: Content-Type\r\n"

// ContentStore is the subset of *directory.Directory the sites supplement
// depends on, kept narrow so tests can supply a fake.
type ContentStore interface {
	ListDomains() []string
	GetContent(domain string) ([]byte, bool)
}

// PeerRegistrar is the subset of *directory.Directory the peer-announce
// maintenance route (SPEC_FULL.md §4.11) depends on.
type PeerRegistrar interface {
	RegisterPeer(directory.PeerInfo)
}

// Server is the dashboard HTTP server.
type Server struct {
	listener  net.Listener
	metrics   *metrics.ProxyMetrics
	content   ContentStore
	peers     PeerRegistrar
	startedAt time.Time
	log       *logging.Logger
}

// Listen binds the dashboard to addr (e.g. "127.0.0.1:9090").
func Listen(addr string, m *metrics.ProxyMetrics, content ContentStore) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dashboard: listen %s: %w", addr, err)
	}
	return &Server{
		listener:  ln,
		metrics:   m,
		content:   content,
		startedAt: time.Now(),
		log:       logging.New("dashboard"),
	}, nil
}

// SetPeerRegistrar attaches the POST /api/peers maintenance route's target.
// Without one, that route reports 404 like any unrecognized path.
func (s *Server) SetPeerRegistrar(p PeerRegistrar) {
	s.peers = p
}

// Addr returns the dashboard's bound address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Run accepts connections forever, spawning one goroutine per request.
func (s *Server) Run() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return fmt.Errorf("dashboard: accept: %w", err)
		}
		go s.handleRequest(conn)
	}
}

func (s *Server) handleRequest(conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, readBufferSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return
	}
	s.log.Printf("request (%s) from %s", humanize.Bytes(uint64(n)), conn.RemoteAddr())

	lines := strings.Split(string(buf[:n]), "\r\n")
	if len(lines) == 0 {
		return
	}
	parts := strings.Fields(lines[0])
	if len(parts) < 2 {
		return
	}
	method, path := parts[0], parts[1]
	_, body, _ := strings.Cut(string(buf[:n]), "\r\n\r\n")

	response := s.route(method, path, body)
	_, writeErr := conn.Write([]byte(response))
	if writeErr != nil {
		s.log.Printf("write response: %v", writeErr)
	}
}

func (s *Server) route(method, path, body string) string {
	rawPath, query, _ := strings.Cut(path, "?")

	switch {
	case method == "GET" && rawPath == "/":
		return htmlDashboardResponse()
	case method == "GET" && rawPath == "/api/status":
		return s.apiStatus()
	case method == "GET" && rawPath == "/api/config":
		return apiConfig()
	case method == "GET" && rawPath == "/api/stats":
		return s.apiStats()
	case method == "GET" && rawPath == "/api/sites/list":
		return s.apiSitesList()
	case method == "GET" && rawPath == "/api/sites/content":
		return s.apiSitesContent(query)
	case method == "POST" && rawPath == "/api/peers":
		return s.apiRegisterPeer(body)
	case method == "OPTIONS":
		return "HTTP/1.1 204 No Content\r\n" + corsHeaders + "Content-Length: 0\r\n\r\n"
	default:
		return notFoundResponse()
	}
}

func corsJSONResponse(body string) string {
	return fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: %d\r\n%s\r\n%s",
		len(body), corsHeaders, body,
	)
}

func notFoundResponse() string {
	return "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"
}

type statusResponse struct {
	Status            string `json:"status"`
	UptimeMs          int64  `json:"uptime_ms"`
	ConnectionsActive uint64 `json:"connections_active"`
	ConnectionsTotal  uint64 `json:"connections_total"`
}

func (s *Server) apiStatus() string {
	snap := s.metrics.Snapshot()
	body, _ := json.Marshal(statusResponse{
		Status:            "running",
		UptimeMs:          time.Since(s.startedAt).Milliseconds(),
		ConnectionsActive: snap.ActiveConnections,
		ConnectionsTotal:  snap.TotalConnections,
	})
	return corsJSONResponse(string(body))
}

func apiConfig() string {
	const body = `{"proxy_enabled":true,"proxy_address":"127.0.0.1:8080","quic_address":"127.0.0.1:5000","dashboard_address":"127.0.0.1:9090","dht_enabled":true,"onion_routing":true}`
	return corsJSONResponse(body)
}

type statsResponse struct {
	BytesSent         uint64 `json:"bytes_sent"`
	BytesReceived     uint64 `json:"bytes_received"`
	ConnectionsTotal  uint64 `json:"connections_total"`
	ConnectionsActive uint64 `json:"connections_active"`
}

func (s *Server) apiStats() string {
	snap := s.metrics.Snapshot()
	body, _ := json.Marshal(statsResponse{
		BytesSent:         snap.BytesSent,
		BytesReceived:     snap.BytesReceived,
		ConnectionsTotal:  snap.TotalConnections,
		ConnectionsActive: snap.ActiveConnections,
	})
	return corsJSONResponse(string(body))
}

type sitesListResponse struct {
	Domains []string `json:"domains"`
}

func (s *Server) apiSitesList() string {
	body, _ := json.Marshal(sitesListResponse{Domains: s.content.ListDomains()})
	return corsJSONResponse(string(body))
}

type sitesContentResponse struct {
	Domain     string `json:"domain"`
	ContentB64 string `json:"content_b64"`
	Bytes      int    `json:"bytes"`
}

func (s *Server) apiSitesContent(query string) string {
	values := parseQuery(query)
	domain := values["domain"]
	if domain == "" {
		return notFoundResponse()
	}
	blob, ok := s.content.GetContent(domain)
	if !ok {
		return notFoundResponse()
	}
	body, _ := json.Marshal(sitesContentResponse{
		Domain:     domain,
		ContentB64: base64.StdEncoding.EncodeToString(blob),
		Bytes:      len(blob),
	})
	return corsJSONResponse(string(body))
}

type registerPeerRequest struct {
	NodeID string `json:"node_id"`
	Addr   string `json:"addr"`
}

// apiRegisterPeer announces a peer into the local directory, letting a
// second local node process register itself for manual testing without a
// real QUIC join handshake (SPEC_FULL.md §4.11).
func (s *Server) apiRegisterPeer(body string) string {
	if s.peers == nil {
		return notFoundResponse()
	}

	var req registerPeerRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return badRequestResponse()
	}
	nodeID, err := identity.ParseHex(req.NodeID)
	if err != nil || req.Addr == "" {
		return badRequestResponse()
	}

	s.peers.RegisterPeer(directory.PeerInfo{NodeID: nodeID, Addr: req.Addr})
	return corsJSONResponse(`{"registered":true}`)
}

func badRequestResponse() string {
	return "HTTP/1.1 400 Bad Request\r\nContent-Length: 0\r\n\r\n"
}

func parseQuery(query string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		out[key] = value
	}
	return out
}

var _ ContentStore = (*directory.Directory)(nil)
