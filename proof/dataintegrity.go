package proof

import (
	"crypto/sha256"
	"encoding/json"
	"time"

	"github.com/anp-network/anp-go/canon"
	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/internal/metrics"
)

// W3C Data-Integrity proof type tags.
const (
	TypeEcdsaSecp256k1Signature2019 = "EcdsaSecp256k1Signature2019"
	TypeEd25519Signature2020        = "Ed25519Signature2020"
)

// ProofOptions is the proof-generation input sibling object.
type ProofOptions struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	Domain             string `json:"domain,omitempty"`
	Challenge          string `json:"challenge,omitempty"`
}

// Proof is a W3C Data-Integrity proof object as embedded in a signed
// document's "proof" field.
type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	Domain             string `json:"domain,omitempty"`
	Challenge          string `json:"challenge,omitempty"`
	ProofValue         string `json:"proofValue"`
}

// Sign produces a Data-Integrity proof over document (excluding any
// "proof" field it may already carry) using opts and signer:
// h_opts = SHA-256(JCS(opts)), h_doc = SHA-256(JCS(document without
// "proof")), signed input = h_opts ‖ h_doc.
func Sign(document any, opts ProofOptions, signer sagecrypto.KeyPair) (*Proof, error) {
	start := time.Now()
	hOpts, err := hashOptions(opts)
	if err != nil {
		return nil, err
	}
	hDoc, err := hashDocumentWithoutProof(document)
	if err != nil {
		return nil, err
	}

	sig, err := signer.Sign(append(hOpts, hDoc...))
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("sign").Inc()
		return nil, err
	}
	metrics.CryptoOperations.WithLabelValues("sign", string(signer.Type())).Inc()
	metrics.CryptoOperationDuration.WithLabelValues("sign", string(signer.Type())).Observe(time.Since(start).Seconds())
	metrics.GetGlobalCollector().RecordSignature(time.Since(start))

	return &Proof{
		Type:               opts.Type,
		Created:            opts.Created,
		VerificationMethod: opts.VerificationMethod,
		ProofPurpose:       opts.ProofPurpose,
		Domain:             opts.Domain,
		Challenge:          opts.Challenge,
		ProofValue:         sagecrypto.Base64URLEncode(sig),
	}, nil
}

// VerifyOptions constrains Verify beyond signature validity.
type VerifyOptions struct {
	ExpectedDomain    string // empty means unchecked
	ExpectedChallenge string // empty means unchecked
}

// Verify checks a Data-Integrity proof embedded in documentWithProof
// (accessed via the "proof" key) against verifier. It strips "proof"
// before re-canonicalizing the document.
func Verify(documentWithProof map[string]any, verifier sagecrypto.KeyPair, vopts VerifyOptions) (err error) {
	start := time.Now()
	defer func() {
		metrics.GetGlobalCollector().RecordVerification(err == nil, time.Since(start))
		metrics.CryptoOperations.WithLabelValues("verify", string(verifier.Type())).Inc()
		metrics.CryptoOperationDuration.WithLabelValues("verify", string(verifier.Type())).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.CryptoErrors.WithLabelValues("verify").Inc()
		}
	}()

	proofRaw, ok := documentWithProof["proof"]
	if !ok {
		return ErrPayloadSchemaInvalid
	}
	proofBytes, err := json.Marshal(proofRaw)
	if err != nil {
		return ErrPayloadSchemaInvalid
	}
	var p Proof
	if err := json.Unmarshal(proofBytes, &p); err != nil {
		return ErrPayloadSchemaInvalid
	}

	if vopts.ExpectedDomain != "" && p.Domain != vopts.ExpectedDomain {
		return ErrAudienceMismatch
	}
	if vopts.ExpectedChallenge != "" && p.Challenge != vopts.ExpectedChallenge {
		return ErrAudienceMismatch
	}

	opts := ProofOptions{
		Type:               p.Type,
		Created:            p.Created,
		VerificationMethod: p.VerificationMethod,
		ProofPurpose:       p.ProofPurpose,
		Domain:             p.Domain,
		Challenge:          p.Challenge,
	}
	hOpts, err := hashOptions(opts)
	if err != nil {
		return err
	}

	withoutProof := make(map[string]any, len(documentWithProof))
	for k, v := range documentWithProof {
		if k == "proof" {
			continue
		}
		withoutProof[k] = v
	}
	hDoc, err := hashDocumentWithoutProof(withoutProof)
	if err != nil {
		return err
	}

	sig, err := sagecrypto.Base64URLDecode(p.ProofValue)
	if err != nil {
		return ErrSignatureMalformed
	}

	if err := verifier.Verify(append(hOpts, hDoc...), sig); err != nil {
		return ErrSignatureInvalid
	}
	return nil
}

func hashOptions(opts ProofOptions) ([]byte, error) {
	b, err := canon.Marshal(opts)
	if err != nil {
		return nil, err
	}
	h := sha256.Sum256(b)
	return h[:], nil
}

func hashDocumentWithoutProof(document any) ([]byte, error) {
	b, err := canon.Marshal(document)
	if err != nil {
		return nil, err
	}
	h := sha256.Sum256(b)
	return h[:], nil
}

// Now returns the current time formatted the way a Proof's "created"
// field expects (RFC 3339 UTC). Exposed so callers building ProofOptions
// share one clock convention with VerifyOptions.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
