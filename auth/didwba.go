// Package auth implements the DIDWba/Bearer HTTP authentication scheme:
// DIDWba header issue/verify backed by a nonce replay window, and
// short-lived bearer token issue/verify on top of the proof package's JWS
// support.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/anp-network/anp-go/canon"
	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/did"
	"github.com/anp-network/anp-go/internal/metrics"
)

// Scheme is the HTTP Authorization scheme token emitted by IssueHeader
// ("DIDWba", compared case-insensitively on parse).
const Scheme = "DIDWba"

// HeaderParams is the parsed form of a DIDWba Authorization header.
type HeaderParams struct {
	DID                string
	Nonce              string
	Timestamp          string
	VerificationMethod string
	Signature          string
}

// IssueHeader builds a DIDWba Authorization header value: a random nonce,
// a payload hash over {nonce, timestamp, service, did}, and a signature
// over that hash using signer.
func IssueHeader(signer sagecrypto.KeyPair, signerDID, verificationMethod, targetService string) (string, error) {
	nonce, err := randomNonce()
	if err != nil {
		return "", err
	}
	timestamp := time.Now().UTC().Format(time.RFC3339)

	hash, err := payloadHash(nonce, timestamp, targetService, signerDID)
	if err != nil {
		return "", err
	}
	sig, err := signer.Sign(hash)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		`%s did="%s", nonce="%s", timestamp="%s", verification_method="%s", signature="%s"`,
		Scheme, signerDID, nonce, timestamp, verificationMethod, sagecrypto.Base64URLEncode(sig),
	), nil
}

func randomNonce() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return sagecrypto.Base64URLEncode(buf), nil
}

func payloadHash(nonce, timestamp, targetService, signerDID string) ([]byte, error) {
	payload := map[string]any{
		"nonce":     nonce,
		"timestamp": timestamp,
		"service":   targetService,
		"did":       signerDID,
	}
	b, err := canon.Marshal(payload)
	if err != nil {
		return nil, err
	}
	h := sha256.Sum256(b)
	return h[:], nil
}

// ParseHeader parses a DIDWba Authorization header value into its fields.
// The scheme token is matched case-insensitively; the five key=value pairs
// may appear in any order.
func ParseHeader(header string) (*HeaderParams, error) {
	fields := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(fields) != 2 || !strings.EqualFold(fields[0], Scheme) {
		return nil, ErrHeaderMalformed
	}

	params := map[string]string{}
	for _, part := range strings.Split(fields[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, ErrHeaderMalformed
		}
		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		if len(val) < 2 || val[0] != '"' || val[len(val)-1] != '"' {
			return nil, ErrHeaderMalformed
		}
		params[key] = val[1 : len(val)-1]
	}

	hp := &HeaderParams{
		DID:                params["did"],
		Nonce:              params["nonce"],
		Timestamp:          params["timestamp"],
		VerificationMethod: params["verification_method"],
		Signature:          params["signature"],
	}
	if hp.DID == "" || hp.Nonce == "" || hp.Timestamp == "" || hp.VerificationMethod == "" || hp.Signature == "" {
		return nil, ErrHeaderMalformed
	}
	return hp, nil
}

// VerifyConfig bundles the collaborators VerifyHeader needs: a DID
// resolver and a replay window, plus the clock-skew tolerance. These are
// owned collaborators passed explicitly, never process-wide statics.
type VerifyConfig struct {
	Resolver  *did.Resolver
	Nonces    *NonceWindow
	ClockSkew time.Duration // default 5 min, ties to the nonce window TTL
}

// VerifyHeader parses the header, checks timestamp skew, checks for
// replay, resolves the signer's DID/key, verifies the signature, then
// inserts the nonce. On success it returns the authenticated DID.
func VerifyHeader(ctx context.Context, header string, targetService string, cfg VerifyConfig) (did.AgentDID, error) {
	hp, err := ParseHeader(header)
	if err != nil {
		return "", err
	}

	ts, err := time.Parse(time.RFC3339, hp.Timestamp)
	if err != nil {
		return "", ErrHeaderMalformed
	}
	skew := cfg.ClockSkew
	if skew == 0 {
		skew = 5 * time.Minute
	}
	if diff := time.Since(ts); diff > skew || diff < -skew {
		metrics.NonceValidations.WithLabelValues("expired").Inc()
		return "", ErrTimestampOutsideSkew
	}

	if cfg.Nonces.Contains(hp.Nonce) {
		metrics.NonceValidations.WithLabelValues("invalid").Inc()
		metrics.ReplayAttacksDetected.Inc()
		return "", ErrNonceReplay
	}

	doc, err := cfg.Resolver.Resolve(ctx, did.AgentDID(hp.DID))
	if err != nil {
		return "", err
	}
	vm, err := did.PublicKeyFor(doc, hp.VerificationMethod)
	if err != nil {
		return "", ErrVerificationMethodMissing
	}
	verifier, err := did.DecodePublicKey(vm)
	if err != nil {
		return "", err
	}

	hash, err := payloadHash(hp.Nonce, hp.Timestamp, targetService, hp.DID)
	if err != nil {
		return "", err
	}
	sig, err := sagecrypto.Base64URLDecode(hp.Signature)
	if err != nil {
		return "", ErrHeaderMalformed
	}
	if err := verifier.Verify(hash, sig); err != nil {
		return "", err
	}

	if err := cfg.Nonces.Insert(hp.Nonce); err != nil {
		metrics.NonceValidations.WithLabelValues("invalid").Inc()
		metrics.ReplayAttacksDetected.Inc()
		return "", err
	}
	metrics.NonceValidations.WithLabelValues("valid").Inc()
	return did.AgentDID(hp.DID), nil
}
