package e2ee

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/json"
	"fmt"

	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/crypto/keys"
	"github.com/anp-network/anp-go/did"
	"github.com/anp-network/anp-go/internal/metrics"
)

// sessionKeyInfo is the fixed HKDF info string domain-separating session
// keys from any other secret derived with the same shared secret.
const sessionKeyInfo = "ANP encryption key"

// Hello is the handshake's first wire message from either side: an
// ephemeral public key, a fresh nonce, and (for the initiator) a signature
// over the body using the sender's DID authentication key.
type Hello struct {
	EphemeralPub []byte `json:"ephemeral_pub"`
	Nonce        []byte `json:"nonce"`
	Signature    []byte `json:"signature,omitempty"`
}

func helloSigningBody(ephemeralPub, nonce []byte) []byte {
	body, _ := json.Marshal(struct {
		EphemeralPub []byte `json:"ephemeral_pub"`
		Nonce        []byte `json:"nonce"`
	}{ephemeralPub, nonce})
	return body
}

// Finished authenticates the handshake's completion under the freshly
// derived AEAD key.
type Finished struct {
	Tag []byte `json:"tag"`
}

// Initiator holds the ephemeral state a handshake initiator keeps between
// sending its hello and processing the responder's reply.
type Initiator struct {
	ephemeral *ecdh.PrivateKey
	hello     Hello
	authKey   sagecrypto.KeyPair
	localDID  string
	remoteDID string
}

// InitiateHandshake generates the initiator's ephemeral key pair and hello
// message, signed with authKey (the initiator's DID authentication key).
func InitiateHandshake(authKey sagecrypto.KeyPair, localDID, remoteDID string) (*Initiator, Hello, error) {
	ephKeyPair, err := keys.GenerateX25519KeyPair()
	if err != nil {
		return nil, Hello{}, fmt.Errorf("e2ee: generate ephemeral key: %w", err)
	}
	eph := ephKeyPair.PrivateKey().(*ecdh.PrivateKey)
	ephPub := eph.PublicKey().Bytes()

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return nil, Hello{}, err
	}

	sig, err := authKey.Sign(helloSigningBody(ephPub, nonce))
	if err != nil {
		return nil, Hello{}, fmt.Errorf("e2ee: sign hello: %w", err)
	}

	hello := Hello{EphemeralPub: ephPub, Nonce: nonce, Signature: sig}
	metrics.HandshakesInitiated.WithLabelValues("initiator").Inc()
	return &Initiator{ephemeral: eph, hello: hello, authKey: authKey, localDID: localDID, remoteDID: remoteDID}, hello, nil
}

// RespondHandshake implements the responder side of the handshake: verify
// the initiator's DID signature through the DID resolver and proof
// verification key, generate a responder ephemeral pair, compute the
// shared secret, derive the AEAD key, and produce the responder's own
// hello plus an authenticated finished record.
func RespondHandshake(ctx context.Context, resolver *did.Resolver, initiatorDID, initiatorVerificationMethod string, remoteHello Hello, localDID string) (*Session, Hello, Finished, error) {
	metrics.HandshakesInitiated.WithLabelValues("responder").Inc()

	doc, err := resolver.Resolve(ctx, did.AgentDID(initiatorDID))
	if err != nil {
		metrics.HandshakesFailed.WithLabelValues("network").Inc()
		return nil, Hello{}, Finished{}, ErrHandshakeFailed
	}
	vm, err := did.PublicKeyFor(doc, initiatorVerificationMethod)
	if err != nil {
		metrics.HandshakesFailed.WithLabelValues("invalid").Inc()
		return nil, Hello{}, Finished{}, ErrAuthenticationFailed
	}
	verifier, err := did.DecodePublicKey(vm)
	if err != nil {
		metrics.HandshakesFailed.WithLabelValues("invalid").Inc()
		return nil, Hello{}, Finished{}, ErrAuthenticationFailed
	}
	if err := verifier.Verify(helloSigningBody(remoteHello.EphemeralPub, remoteHello.Nonce), remoteHello.Signature); err != nil {
		metrics.HandshakesFailed.WithLabelValues("invalid").Inc()
		return nil, Hello{}, Finished{}, ErrAuthenticationFailed
	}

	respEphKeyPair, err := keys.GenerateX25519KeyPair()
	if err != nil {
		return nil, Hello{}, Finished{}, ErrHandshakeFailed
	}
	respEph := respEphKeyPair.PrivateKey().(*ecdh.PrivateKey)
	respNonce := make([]byte, 16)
	if _, err := rand.Read(respNonce); err != nil {
		return nil, Hello{}, Finished{}, ErrHandshakeFailed
	}

	ss, err := keys.ECDHE(respEph, remoteHello.EphemeralPub)
	if err != nil {
		return nil, Hello{}, Finished{}, ErrHandshakeFailed
	}
	salt := append(append([]byte(nil), remoteHello.Nonce...), respNonce...)
	aeadKey, err := sagecrypto.HKDF(ss, salt, []byte(sessionKeyInfo), 32)
	if err != nil {
		return nil, Hello{}, Finished{}, ErrHandshakeFailed
	}

	sessionID := sagecrypto.Base64URLEncode(salt)
	sess := newSession(sessionID, localDID, initiatorDID, aeadKey, DefaultRekeyPolicy)
	sess.state = StateHandshakeCompleting

	finished, err := sess.sealFinished("responder")
	if err != nil {
		return nil, Hello{}, Finished{}, ErrHandshakeFailed
	}

	respHello := Hello{EphemeralPub: respEph.PublicKey().Bytes(), Nonce: respNonce}
	metrics.SessionsCreated.WithLabelValues("success").Inc()
	return sess, respHello, finished, nil
}

// CompleteHandshake implements the initiator's final step: compute the
// same shared secret and AEAD key from the responder's hello, verify the
// responder's finished record, and transition to Active.
func (in *Initiator) CompleteHandshake(respHello Hello, respFinished Finished) (*Session, Finished, error) {
	ss, err := keys.ECDHE(in.ephemeral, respHello.EphemeralPub)
	if err != nil {
		return nil, Finished{}, ErrHandshakeFailed
	}
	salt := append(append([]byte(nil), in.hello.Nonce...), respHello.Nonce...)
	aeadKey, err := sagecrypto.HKDF(ss, salt, []byte(sessionKeyInfo), 32)
	if err != nil {
		return nil, Finished{}, ErrHandshakeFailed
	}

	sessionID := sagecrypto.Base64URLEncode(salt)
	sess := newSession(sessionID, in.localDID, in.remoteDID, aeadKey, DefaultRekeyPolicy)
	sess.state = StateHandshakeCompleting

	if err := sess.verifyFinished("responder", respFinished); err != nil {
		metrics.HandshakesFailed.WithLabelValues("invalid").Inc()
		return nil, Finished{}, ErrAuthenticationFailed
	}

	finished, err := sess.sealFinished("initiator")
	if err != nil {
		return nil, Finished{}, ErrHandshakeFailed
	}

	sess.mu.Lock()
	sess.state = StateActive
	sess.mu.Unlock()

	metrics.SessionsCreated.WithLabelValues("success").Inc()
	metrics.SessionsActive.Inc()
	metrics.HandshakesCompleted.WithLabelValues("success").Inc()
	return sess, finished, nil
}

// AcceptFinished is the responder's last step: verify the initiator's
// finished record and move the session to Active.
func (s *Session) AcceptFinished(initFinished Finished) error {
	if err := s.verifyFinished("initiator", initFinished); err != nil {
		metrics.HandshakesFailed.WithLabelValues("invalid").Inc()
		return ErrAuthenticationFailed
	}
	s.mu.Lock()
	s.state = StateActive
	s.mu.Unlock()
	metrics.SessionsActive.Inc()
	metrics.HandshakesCompleted.WithLabelValues("success").Inc()
	return nil
}
