package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/did"
	"github.com/anp-network/anp-go/proof"
)

// DefaultTokenLifetime is the default bearer token lifetime.
const DefaultTokenLifetime = time.Hour

// IssueToken mints a bearer token for subjectDID, signed with the server's
// own token key, carrying {did, iat, exp}. Called after a successful
// DIDWba header verification.
func IssueToken(tokenKey sagecrypto.KeyPair, tokenKid string, subjectDID did.AgentDID, lifetime time.Duration) (string, error) {
	if lifetime == 0 {
		lifetime = DefaultTokenLifetime
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"did": string(subjectDID),
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(lifetime)),
	}
	return proof.SignJWS(claims, tokenKey, tokenKid)
}

// VerifyToken validates a bearer token issued by IssueToken against the
// server's token key, enforcing the standard JWS checks plus exp > now.
// Callers must treat any error here as a signal to fall back to DIDWba
// re-authentication.
func VerifyToken(token string, tokenKey sagecrypto.KeyPair) (did.AgentDID, error) {
	claims, err := proof.VerifyJWS(token, tokenKey, proof.VerifyJWSOptions{})
	if err != nil {
		return "", err
	}
	subject, ok := claims["did"].(string)
	if !ok || subject == "" {
		return "", ErrHeaderMalformed
	}
	return did.AgentDID(subject), nil
}
