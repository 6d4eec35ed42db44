package dashboard

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freedomnet/node/internal/directory"
	"github.com/freedomnet/node/internal/identity"
	"github.com/freedomnet/node/internal/metrics"
)

type fakeContentStore struct {
	domains []string
	content map[string][]byte
}

func (f *fakeContentStore) ListDomains() []string { return f.domains }

func (f *fakeContentStore) GetContent(domain string) ([]byte, bool) {
	v, ok := f.content[domain]
	return v, ok
}

func newTestServer() *Server {
	return &Server{
		metrics:   metrics.New(),
		content:   &fakeContentStore{domains: []string{"a.freedom"}, content: map[string][]byte{"a.freedom": []byte("hello")}},
		startedAt: time.Now(),
	}
}

func TestRouteRootServesHTML(t *testing.T) {
	s := newTestServer()
	resp := s.route("GET", "/", "")
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200 OK"))
	assert.Contains(t, resp, "Freedom VPN")
}

func TestRouteStatusReturnsJSON(t *testing.T) {
	s := newTestServer()
	resp := s.route("GET", "/api/status", "")
	body := bodyOf(t, resp)

	var decoded statusResponse
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.Equal(t, "running", decoded.Status)
}

func TestRouteConfigIncludesCORS(t *testing.T) {
	s := newTestServer()
	resp := s.route("GET", "/api/config", "")
	assert.Contains(t, resp, "Access-Control-Allow-Origin: *")
}

func TestRouteOptionsReturns204(t *testing.T) {
	s := newTestServer()
	resp := s.route("OPTIONS", "/anything", "")
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 204 No Content"))
}

func TestRouteUnknownReturns404(t *testing.T) {
	s := newTestServer()
	resp := s.route("GET", "/nope", "")
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 404 Not Found"))
}

func TestRouteSitesListReturnsDomains(t *testing.T) {
	s := newTestServer()
	resp := s.route("GET", "/api/sites/list", "")
	body := bodyOf(t, resp)

	var decoded sitesListResponse
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.Equal(t, []string{"a.freedom"}, decoded.Domains)
}

func TestRouteSitesContentHitAndMiss(t *testing.T) {
	s := newTestServer()

	hit := s.route("GET", "/api/sites/content?domain=a.freedom", "")
	assert.True(t, strings.HasPrefix(hit, "HTTP/1.1 200 OK"))

	miss := s.route("GET", "/api/sites/content?domain=missing.freedom", "")
	assert.True(t, strings.HasPrefix(miss, "HTTP/1.1 404 Not Found"))
}

type fakePeerRegistrar struct {
	registered []directory.PeerInfo
}

func (f *fakePeerRegistrar) RegisterPeer(p directory.PeerInfo) {
	f.registered = append(f.registered, p)
}

func TestRouteRegisterPeerWithoutRegistrarIs404(t *testing.T) {
	s := newTestServer()
	resp := s.route("POST", "/api/peers", `{"node_id":"","addr":""}`)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 404 Not Found"))
}

func TestRouteRegisterPeerValidBody(t *testing.T) {
	s := newTestServer()
	registrar := &fakePeerRegistrar{}
	s.SetPeerRegistrar(registrar)

	id := identity.FromPublicKey([]byte("peer-under-test"))
	body := `{"node_id":"` + id.String() + `","addr":"127.0.0.1:5001"}`

	resp := s.route("POST", "/api/peers", body)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200 OK"))
	require.Len(t, registrar.registered, 1)
	assert.Equal(t, id, registrar.registered[0].NodeID)
	assert.Equal(t, "127.0.0.1:5001", registrar.registered[0].Addr)
}

func TestRouteRegisterPeerRejectsMalformedBody(t *testing.T) {
	s := newTestServer()
	s.SetPeerRegistrar(&fakePeerRegistrar{})

	resp := s.route("POST", "/api/peers", `not json`)
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 400 Bad Request"))
}

func bodyOf(t *testing.T, resp string) string {
	t.Helper()
	_, body, ok := strings.Cut(resp, "\r\n\r\n")
	require.True(t, ok)
	return body
}
