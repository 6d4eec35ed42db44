package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestLineExtractsMethodTargetVersion(t *testing.T) {
	req := []byte("GET http://example.com/path HTTP/1.1\r\nHost: example.com\r\n\r\n")
	method, target, version, headers, ok := parseRequestLine(req)
	require.True(t, ok)
	assert.Equal(t, "GET", method)
	assert.Equal(t, "http://example.com/path", target)
	assert.Equal(t, "HTTP/1.1", version)
	assert.Contains(t, headers, "Host: example.com")
}

func TestParseRequestLineRejectsMalformed(t *testing.T) {
	_, _, _, _, ok := parseRequestLine([]byte("garbage\r\n\r\n"))
	assert.False(t, ok)
}

func TestResolveUpstreamAbsoluteHTTP(t *testing.T) {
	host, port, err := resolveUpstream("http://example.com/path", nil)
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)
	assert.Equal(t, "80", port)
}

func TestResolveUpstreamAbsoluteHTTPSWithPort(t *testing.T) {
	host, port, err := resolveUpstream("https://example.com:8443/path", nil)
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)
	assert.Equal(t, "8443", port)
}

func TestResolveUpstreamOriginFormUsesHostHeader(t *testing.T) {
	headers := []string{"User-Agent: test", "Host: example.com:8080"}
	host, port, err := resolveUpstream("/path", headers)
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)
	assert.Equal(t, "8080", port)
}

func TestResolveUpstreamErrorsWithNoHost(t *testing.T) {
	_, _, err := resolveUpstream("/path", nil)
	assert.Error(t, err)
}

func TestRewriteRequestLineReplacesAbsoluteTarget(t *testing.T) {
	raw := []byte("GET http://example.com/a/b?x=1 HTTP/1.1\r\nHost: example.com\r\n\r\n")
	rewritten := rewriteRequestLine(raw, "GET", "http://example.com/a/b?x=1")
	assert.Equal(t, "GET /a/b?x=1 HTTP/1.1\r\nHost: example.com\r\n\r\n", string(rewritten))
}

func TestRewriteRequestLineDefaultsToSlash(t *testing.T) {
	raw := []byte("GET http://example.com HTTP/1.1\r\n\r\n")
	rewritten := rewriteRequestLine(raw, "GET", "http://example.com")
	assert.Equal(t, "GET / HTTP/1.1\r\n\r\n", string(rewritten))
}

func TestRewriteRequestLineLeavesOriginFormUntouched(t *testing.T) {
	raw := []byte("GET /a/b HTTP/1.1\r\n\r\n")
	rewritten := rewriteRequestLine(raw, "GET", "/a/b")
	assert.Equal(t, raw, rewritten)
}
