package ap2

import (
	"crypto/sha256"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/anp-network/anp-go/canon"
	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/internal/metrics"
	"github.com/anp-network/anp-go/proof"
)

// DefaultCartMandateTTL is how long a CartMandate stays valid after it is
// signed.
const DefaultCartMandateTTL = 15 * time.Minute

// BuildCartMandateOptions carries the optional envelope extensions a
// CartMandate can carry: confirmation-key binding, selective-disclosure
// hash.
type BuildCartMandateOptions struct {
	Cnf    map[string]any
	SDHash string
	TTL    time.Duration
}

// BuildCartMandate hashes the cart contents, builds the JWS payload, and
// signs it with the merchant's key.
func BuildCartMandate(merchant sagecrypto.KeyPair, merchantKid, merchantDID, shopperDID string, contents CartContents, opts BuildCartMandateOptions) (*CartMandate, error) {
	cartHash, err := hashContents(contents)
	if err != nil {
		return nil, err
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultCartMandateTTL
	}
	now := time.Now()

	claims := jwt.MapClaims{
		"iss":       merchantDID,
		"sub":       merchantDID,
		"aud":       shopperDID,
		"iat":       jwt.NewNumericDate(now),
		"exp":       jwt.NewNumericDate(now.Add(ttl)),
		"jti":       uuid.NewString(),
		"cart_hash": cartHash,
	}
	if opts.Cnf != nil {
		claims["cnf"] = opts.Cnf
	}
	if opts.SDHash != "" {
		claims["sd_hash"] = opts.SDHash
	}

	jws, err := proof.SignJWS(claims, merchant, merchantKid)
	if err != nil {
		return nil, err
	}
	metrics.MandatesBuilt.WithLabelValues("cart").Inc()

	return &CartMandate{
		Contents:              contents,
		MerchantAuthorization: jws,
		Timestamp:             now.UTC().Format(time.RFC3339),
	}, nil
}

// VerifyCartMandateOptions constrains VerifyCartMandate beyond signature
// validity.
type VerifyCartMandateOptions struct {
	ExpectedAudience string
}

// VerifyCartMandate recomputes cart_hash from contents, verifies the JWS
// envelope, and requires the recomputed hash to match the signed claim.
func VerifyCartMandate(mandate *CartMandate, merchant sagecrypto.KeyPair, vopts VerifyCartMandateOptions) (jwt.MapClaims, error) {
	claims, err := proof.VerifyJWS(mandate.MerchantAuthorization, merchant, proof.VerifyJWSOptions{ExpectedAudience: vopts.ExpectedAudience})
	if err != nil {
		metrics.MandatesVerified.WithLabelValues("cart", "failure").Inc()
		return nil, err
	}

	recomputed, err := hashContents(mandate.Contents)
	if err != nil {
		metrics.MandatesVerified.WithLabelValues("cart", "failure").Inc()
		return nil, err
	}
	claimed, ok := claims["cart_hash"].(string)
	if !ok || claimed != recomputed {
		metrics.MandatesVerified.WithLabelValues("cart", "failure").Inc()
		return nil, ErrCartHashMismatch
	}
	metrics.MandatesVerified.WithLabelValues("cart", "success").Inc()
	return claims, nil
}

func hashContents(contents any) (string, error) {
	b, err := canon.Marshal(contents)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(b)
	return sagecrypto.Base64URLEncode(h[:]), nil
}
