// Package quictransport implements the node's inter-node transport: a
// self-signed TLS 1.3 QUIC server accepting bidirectional streams with a
// single-send/single-ACK framing. Grounded on
// original_source/node/src/main.rs's quinn+rcgen setup, ported 1:1 onto
// quic-go — the Go ecosystem's equivalent of the Rust quinn crate (and the
// one concern promoted out of the teacher's otherwise-dropped libp2p
// dependency closure; see DESIGN.md).
package quictransport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"math/big"
	"net"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/freedomnet/node/internal/identity"
	"github.com/freedomnet/node/internal/logging"
)

const streamReadBufferSize = 8192

// ackMessage is written back to the peer after every stream read, matching
// the original's placeholder handshake.
var ackMessage = []byte("ACK")

// Server is the node's QUIC listener.
type Server struct {
	listener *quic.Listener
	nodeID   identity.NodeID
	log      *logging.Logger
}

// Listen generates a self-signed TLS 1.3 certificate for "localhost", derives
// the local NodeId from its DER encoding, and binds a QUIC server on addr
// (e.g. "127.0.0.1:5000").
func Listen(addr string) (*Server, error) {
	certDER, tlsConf, err := generateSelfSignedCert()
	if err != nil {
		return nil, fmt.Errorf("quictransport: generate cert: %w", err)
	}

	ln, err := quic.ListenAddr(addr, tlsConf, &quic.Config{})
	if err != nil {
		return nil, fmt.Errorf("quictransport: listen %s: %w", addr, err)
	}

	return &Server{
		listener: ln,
		nodeID:   identity.FromPublicKey(certDER),
		log:      logging.New("quic"),
	}, nil
}

// NodeID returns the local node's identity, derived from the server's
// certificate DER.
func (s *Server) NodeID() identity.NodeID {
	return s.nodeID
}

// Addr returns the listener's bound address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Run accepts connections until ctx is cancelled, spawning one goroutine per
// connection.
func (s *Server) Run(ctx context.Context) error {
	s.log.Printf("listening on %s, node id %s", s.listener.Addr(), s.nodeID)
	for {
		conn, err := s.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("quictransport: accept: %w", err)
		}
		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn quic.Connection) {
	s.log.Printf("connection established from %s", conn.RemoteAddr())
	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			return
		}
		go s.handleStream(stream)
	}
}

func (s *Server) handleStream(stream quic.Stream) {
	defer stream.Close()

	buf := make([]byte, streamReadBufferSize)
	n, err := stream.Read(buf)
	if err != nil && err != io.EOF {
		s.log.Printf("stream read: %v", err)
		return
	}
	s.log.Printf("stream: received %d bytes", n)

	if _, err := stream.Write(ackMessage); err != nil {
		s.log.Printf("stream write ACK: %v", err)
	}
}

// generateSelfSignedCert mirrors rcgen::generate_simple_self_signed: a
// single self-signed leaf certificate for "localhost" with a fresh ECDSA
// key, returned alongside a TLS config ready for quic-go.
func generateSelfSignedCert() (certDER []byte, tlsConf *tls.Config, err error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return nil, nil, err
	}

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "localhost"},
		DNSNames:              []string{"localhost"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * 365 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	certDER, err = x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, err
	}

	cert := tls.Certificate{
		Certificate: [][]byte{certDER},
		PrivateKey:  priv,
	}

	tlsConf = &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"freedom-node"},
		MinVersion:   tls.VersionTLS13,
	}
	return certDER, tlsConf, nil
}
