// Package proxy implements the HTTP/1.1 forward-proxy gateway: CONNECT
// tunneling, absolute-form/origin-form rewriting, and bidirectional byte
// splicing. Grounded on original_source/node/src/proxy.rs's ProxyServer,
// generalized from its "keep connection alive" CONNECT stub into a real
// splice+rewrite per spec.md §4.6. Raw-socket handling style grounded on
// the teacher's discover.go/server-public.go manual net.SplitHostPort use.
package proxy

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/google/uuid"

	"github.com/freedomnet/node/internal/logging"
	"github.com/freedomnet/node/internal/metrics"
)

const readBufferSize = 8192

var connectEstablished = []byte("HTTP/1.1 200 Connection Established\r\n\r\n")

// Server is the forward-proxy gateway.
type Server struct {
	listener net.Listener
	metrics  *metrics.ProxyMetrics
	overlay  *OverlayBridge
	log      *logging.Logger
}

// Listen binds the gateway to addr (e.g. "127.0.0.1:8080").
func Listen(addr string, m *metrics.ProxyMetrics) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("proxy: listen %s: %w", addr, err)
	}
	return &Server{listener: ln, metrics: m, log: logging.New("proxy")}, nil
}

// SetOverlay attaches the .freedom overlay-namespace bridge. Without one,
// requests to a .freedom host are answered with 404 Not Found and no
// upstream connection is dialed.
func (s *Server) SetOverlay(bridge *OverlayBridge) {
	s.overlay = bridge
}

// Addr returns the gateway's bound address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Run accepts connections forever, spawning one goroutine per session.
func (s *Server) Run() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return fmt.Errorf("proxy: accept: %w", err)
		}
		go s.handleSession(conn)
	}
}

func (s *Server) handleSession(conn net.Conn) {
	sessionID := uuid.NewString()
	s.metrics.ConnectionOpened()
	defer s.metrics.ConnectionClosed()
	defer conn.Close()

	buf := make([]byte, readBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		if err != io.EOF {
			s.log.Printf("session %s: read request: %v", sessionID, err)
		}
		return
	}
	if n == 0 {
		return
	}
	s.metrics.AddBytesReceived(uint64(n))

	req := buf[:n]
	method, target, _, headers, ok := parseRequestLine(req)
	if !ok {
		s.log.Printf("session %s: malformed request line", sessionID)
		return
	}

	if method == "CONNECT" {
		s.handleConnect(sessionID, conn, target)
		return
	}
	s.handleForward(sessionID, conn, method, target, headers, req)
}

// parseRequestLine splits the leading "METHOD TARGET VERSION\r\n" line from
// a raw request buffer and returns the remaining header block, scanned for
// Host: by the forward path.
func parseRequestLine(req []byte) (method, target, version string, headers []string, ok bool) {
	text := string(req)
	lines := strings.Split(text, "\r\n")
	if len(lines) == 0 {
		return "", "", "", nil, false
	}
	parts := strings.Fields(lines[0])
	if len(parts) != 3 {
		return "", "", "", nil, false
	}
	return parts[0], parts[1], parts[2], lines[1:], true
}

func (s *Server) handleConnect(sessionID string, client net.Conn, target string) {
	host := target
	if !strings.Contains(host, ":") {
		host += ":443"
	}

	upstream, err := net.Dial("tcp", host)
	if err != nil {
		s.log.Printf("session %s: CONNECT dial %s: %v", sessionID, host, err)
		return
	}
	defer upstream.Close()

	n, err := client.Write(connectEstablished)
	if err != nil {
		s.log.Printf("session %s: CONNECT ack: %v", sessionID, err)
		return
	}
	s.metrics.AddBytesSent(uint64(n))

	s.splice(client, upstream)
}

func (s *Server) handleForward(sessionID string, client net.Conn, method, target string, headers []string, rawRequest []byte) {
	host, port, err := resolveUpstream(target, headers)
	if err != nil {
		s.log.Printf("session %s: %v", sessionID, err)
		return
	}

	if IsOverlayHost(host) {
		s.handleOverlayFetch(sessionID, client, host)
		return
	}

	upstreamAddr := net.JoinHostPort(host, port)
	upstream, err := net.Dial("tcp", upstreamAddr)
	if err != nil {
		s.log.Printf("session %s: forward dial %s: %v", sessionID, upstreamAddr, err)
		return
	}
	defer upstream.Close()

	rewritten := rewriteRequestLine(rawRequest, method, target)
	n, err := upstream.Write(rewritten)
	if err != nil {
		s.log.Printf("session %s: forward write: %v", sessionID, err)
		return
	}
	s.metrics.AddBytesSent(uint64(n))

	s.splice(client, upstream)
}

// handleOverlayFetch serves a .freedom request from the local content store
// via a wire circuit built through the resolver/router singletons, instead
// of dialing an upstream TCP connection.
func (s *Server) handleOverlayFetch(sessionID string, client net.Conn, host string) {
	if s.overlay == nil {
		s.log.Printf("session %s: overlay request for %s but no overlay bridge configured", sessionID, host)
		s.writeResponse(client, notFoundOverlayResponse())
		return
	}

	content, circuitID, ok, err := s.overlay.Fetch(host)
	if err != nil {
		s.log.Printf("session %s: overlay fetch %s: %v", sessionID, host, err)
		s.writeResponse(client, notFoundOverlayResponse())
		return
	}
	if !ok {
		s.writeResponse(client, notFoundOverlayResponse())
		return
	}

	s.log.Printf("session %s: overlay fetch %s via circuit %d", sessionID, host, circuitID)
	s.writeResponse(client, overlayContentResponse(content))
}

func (s *Server) writeResponse(client net.Conn, response string) {
	n, err := client.Write([]byte(response))
	if err != nil {
		return
	}
	s.metrics.AddBytesSent(uint64(n))
}

// resolveUpstream derives the upstream host:port per spec.md §4.6: absolute
// http(s):// targets take priority, falling back to a case-insensitive
// Host: header scan for origin-form requests.
func resolveUpstream(target string, headers []string) (host, port string, err error) {
	switch {
	case strings.HasPrefix(target, "http://"):
		host, port = splitTargetHost(strings.TrimPrefix(target, "http://"), "80")
	case strings.HasPrefix(target, "https://"):
		host, port = splitTargetHost(strings.TrimPrefix(target, "https://"), "443")
	default:
		host, port = hostFromHeaders(headers)
	}
	if host == "" {
		return "", "", fmt.Errorf("proxy: no host determinable for target %q", target)
	}
	return host, port, nil
}

func splitTargetHost(rest, defaultPort string) (host, port string) {
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		rest = rest[:idx]
	}
	if h, p, err := net.SplitHostPort(rest); err == nil {
		return h, p
	}
	return rest, defaultPort
}

func hostFromHeaders(headers []string) (host, port string) {
	for _, line := range headers {
		if line == "" {
			break
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(line[:colon]), "host") {
			continue
		}
		value := strings.TrimSpace(line[colon+1:])
		if h, p, err := net.SplitHostPort(value); err == nil {
			return h, p
		}
		return value, "80"
	}
	return "", ""
}

// rewriteRequestLine replaces an absolute-form target with its origin-form
// equivalent (path+query, or "/"), leaving method/version/headers untouched.
func rewriteRequestLine(raw []byte, method, target string) []byte {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return raw
	}

	originForm := "/"
	withoutScheme := target
	if strings.HasPrefix(target, "http://") {
		withoutScheme = strings.TrimPrefix(target, "http://")
	} else {
		withoutScheme = strings.TrimPrefix(target, "https://")
	}
	if idx := strings.IndexByte(withoutScheme, '/'); idx >= 0 {
		originForm = withoutScheme[idx:]
	}

	text := string(raw)
	lines := strings.SplitN(text, "\r\n", 2)
	rest := ""
	if len(lines) == 2 {
		rest = lines[1]
	}
	version := "HTTP/1.1"
	if parts := strings.Fields(lines[0]); len(parts) == 3 {
		version = parts[2]
	}
	newFirst := method + " " + originForm + " " + version
	return []byte(newFirst + "\r\n" + rest)
}

// splice copies bytes in both directions until either side closes, tallying
// each direction into the shared metrics.
func (s *Server) splice(client, upstream net.Conn) {
	done := make(chan struct{}, 2)

	go func() {
		n, _ := io.Copy(upstream, bufio.NewReader(client))
		s.metrics.AddBytesReceived(uint64(n))
		done <- struct{}{}
	}()
	go func() {
		n, _ := io.Copy(client, bufio.NewReader(upstream))
		s.metrics.AddBytesSent(uint64(n))
		done <- struct{}{}
	}()

	<-done
}
