package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/crypto/formats"
	"github.com/anp-network/anp-go/crypto/keys"
	"github.com/anp-network/anp-go/did"
)

// redirectTransport pins every request's host to a test server, letting
// tests resolve a did:wba identifier with a normal-looking hostname
// without touching DNS.
type redirectTransport struct {
	target string
	base   http.RoundTripper
}

func (t redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.target
	return t.base.RoundTrip(req)
}

func newTestDIDServer(t *testing.T, signer sagecrypto.KeyPair, agentDID did.AgentDID) *httptest.Server {
	t.Helper()

	exporter := formats.NewJWKExporter()
	jwkBytes, err := exporter.ExportPublic(signer, sagecrypto.KeyFormatJWK)
	require.NoError(t, err)
	var jwk map[string]any
	require.NoError(t, json.Unmarshal(jwkBytes, &jwk))

	doc := did.Document{
		Context: []string{"https://www.w3.org/ns/did/v1"},
		ID:      agentDID,
		VerificationMethod: []did.VerificationMethod{
			{
				ID:           string(agentDID) + "#key-1",
				Type:         did.TypeJsonWebKey2020,
				Controller:   agentDID,
				PublicKeyJwk: jwk,
			},
		},
		Authentication: []did.MethodRef{{Reference: string(agentDID) + "#key-1"}},
	}

	// Serve the document at the path the resolver derives from agentDID,
	// e.g. /agents/alice/.well-known/did.json for a DID with path segments.
	host, port, segs, err := did.Parse(agentDID)
	require.NoError(t, err)
	wellKnown, err := url.Parse(did.WellKnownURL(host, port, segs))
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc(wellKnown.Path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(doc))
	})
	return httptest.NewServer(mux)
}

func resolverAgainst(srv *httptest.Server) *did.Resolver {
	client := &http.Client{Transport: redirectTransport{target: srv.Listener.Addr().String(), base: http.DefaultTransport}}
	return did.NewResolver(did.ResolverConfig{}, client)
}

func TestIssueAndVerifyHeaderEndToEnd(t *testing.T) {
	signer, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)

	agentDID := did.AgentDID("did:wba:example.com:agents:alice")
	srv := newTestDIDServer(t, signer, agentDID)
	defer srv.Close()

	header, err := IssueHeader(signer, string(agentDID), string(agentDID)+"#key-1", "anp-messaging")
	require.NoError(t, err)

	cfg := VerifyConfig{
		Resolver:  resolverAgainst(srv),
		Nonces:    NewNonceWindow(5*time.Minute, 1000),
		ClockSkew: 5 * time.Minute,
	}
	got, err := VerifyHeader(context.Background(), header, "anp-messaging", cfg)
	require.NoError(t, err)
	assert.Equal(t, agentDID, got)
}

func TestVerifyHeaderRejectsReplay(t *testing.T) {
	signer, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)

	agentDID := did.AgentDID("did:wba:example.com:agents:alice")
	srv := newTestDIDServer(t, signer, agentDID)
	defer srv.Close()

	header, err := IssueHeader(signer, string(agentDID), string(agentDID)+"#key-1", "anp-messaging")
	require.NoError(t, err)

	cfg := VerifyConfig{
		Resolver:  resolverAgainst(srv),
		Nonces:    NewNonceWindow(5*time.Minute, 1000),
		ClockSkew: 5 * time.Minute,
	}
	_, err = VerifyHeader(context.Background(), header, "anp-messaging", cfg)
	require.NoError(t, err)

	_, err = VerifyHeader(context.Background(), header, "anp-messaging", cfg)
	assert.ErrorIs(t, err, ErrNonceReplay)
}

func TestParseHeaderRejectsMalformed(t *testing.T) {
	_, err := ParseHeader(`DIDWba did="x"`)
	assert.ErrorIs(t, err, ErrHeaderMalformed)

	_, err = ParseHeader(`Bearer abc.def.ghi`)
	assert.ErrorIs(t, err, ErrHeaderMalformed)
}

func TestVerifyHeaderRejectsSkewedTimestamp(t *testing.T) {
	signer, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)
	agentDID := did.AgentDID("did:wba:example.com:agents:alice")

	nonce := "c29tZS1ub25jZQ"
	oldTimestamp := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	hash, err := payloadHash(nonce, oldTimestamp, "anp-messaging", string(agentDID))
	require.NoError(t, err)
	sig, err := signer.Sign(hash)
	require.NoError(t, err)

	header := `DIDWba did="` + string(agentDID) + `", nonce="` + nonce + `", timestamp="` + oldTimestamp +
		`", verification_method="` + string(agentDID) + `#key-1", signature="` + sagecrypto.Base64URLEncode(sig) + `"`

	cfg := VerifyConfig{
		Resolver:  did.NewResolver(did.ResolverConfig{}, nil),
		Nonces:    NewNonceWindow(5*time.Minute, 1000),
		ClockSkew: 5 * time.Minute,
	}
	_, err = VerifyHeader(context.Background(), header, "anp-messaging", cfg)
	assert.ErrorIs(t, err, ErrTimestampOutsideSkew)
}
