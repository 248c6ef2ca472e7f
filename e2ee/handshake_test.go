package e2ee

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/crypto/formats"
	"github.com/anp-network/anp-go/crypto/keys"
	"github.com/anp-network/anp-go/did"
)

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

func TestHandshakeRoundTrip(t *testing.T) {
	authKey, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)

	initiatorDID := did.AgentDID("did:wba:example.com:agents:alice")
	srv := newTestDIDServer(t, authKey, initiatorDID)
	defer srv.Close()

	initiator, hello, err := InitiateHandshake(authKey, string(initiatorDID), "did:wba:example.com:agents:bob")
	require.NoError(t, err)

	respSess, respHello, respFinished, err := RespondHandshake(
		context.Background(), resolverAgainst(srv), string(initiatorDID), string(initiatorDID)+"#key-1",
		hello, "did:wba:example.com:agents:bob")
	require.NoError(t, err)
	assert.Equal(t, StateHandshakeCompleting, respSess.State())

	initSess, initFinished, err := initiator.CompleteHandshake(respHello, respFinished)
	require.NoError(t, err)
	assert.Equal(t, StateActive, initSess.State())

	require.NoError(t, respSess.AcceptFinished(initFinished))
	assert.Equal(t, StateActive, respSess.State())

	assert.Equal(t, initSess.ID(), respSess.ID())

	plaintext := []byte("hello over e2ee")
	sealed, err := initSess.Seal(plaintext, true)
	require.NoError(t, err)
	opened, err := respSess.Open(sealed, true)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestRespondHandshakeRejectsBadSignature(t *testing.T) {
	authKey, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)
	otherKey, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)

	initiatorDID := did.AgentDID("did:wba:example.com:agents:alice")
	srv := newTestDIDServer(t, authKey, initiatorDID)
	defer srv.Close()

	_, hello, err := InitiateHandshake(otherKey, string(initiatorDID), "did:wba:example.com:agents:bob")
	require.NoError(t, err)

	_, _, _, err = RespondHandshake(
		context.Background(), resolverAgainst(srv), string(initiatorDID), string(initiatorDID)+"#key-1",
		hello, "did:wba:example.com:agents:bob")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
