package proof

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	sagecrypto "github.com/anp-network/anp-go/crypto"
)

// jwtSigningMethods maps the JWS "alg" names the crypto package's
// algorithm registry hands back to the golang-jwt SigningMethod that
// actually performs the sign/verify call.
var jwtSigningMethods = map[string]jwt.SigningMethod{
	"RS256":  jwt.SigningMethodRS256,
	"ES256K": SigningMethodES256K,
	"EdDSA":  jwt.SigningMethodEdDSA,
}

// algForKeyType looks up the JWS alg header a key type signs/verifies
// with, using the crypto package's registry rather than a parallel
// switch. A header alg that does not match the resolved key's entry here
// is AlgorithmMismatch.
func algForKeyType(t sagecrypto.KeyType) (string, jwt.SigningMethod, error) {
	alg, err := sagecrypto.GetJWSAlgorithmName(t)
	if err != nil {
		return "", nil, ErrAlgorithmUnsupported
	}
	method, ok := jwtSigningMethods[alg]
	if !ok {
		return "", nil, ErrAlgorithmUnsupported
	}
	return alg, method, nil
}

// SignJWS produces a compact JWS (header.payload.sig) over claims, signed
// by signer, with kid set in the header.
func SignJWS(claims jwt.MapClaims, signer sagecrypto.KeyPair, kid string) (string, error) {
	alg, method, err := algForKeyType(signer.Type())
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(method, claims)
	token.Header["kid"] = kid
	token.Header["alg"] = alg

	return token.SignedString(signer.PrivateKey())
}

// VerifyJWSOptions constrains VerifyJWS beyond signature validity.
type VerifyJWSOptions struct {
	ExpectedAudience string        // empty means unchecked
	ClockSkew        time.Duration // default 0 if unset by caller
}

// VerifyJWS parses and verifies a compact JWS against verifier, enforcing
// alg/key-type agreement, iat <= now+skew, now <= exp, and optional aud
// equality.
func VerifyJWS(compact string, verifier sagecrypto.KeyPair, vopts VerifyJWSOptions) (jwt.MapClaims, error) {
	expectedAlg, _, err := algForKeyType(verifier.Type())
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	// The alg check lives in the key func and the time/audience checks below,
	// so golang-jwt's own claim validation is skipped to keep their errors.
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	token, err := parser.ParseWithClaims(compact, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != expectedAlg {
			return nil, ErrAlgorithmMismatch
		}
		return verifier.PublicKey(), nil
	})
	if err != nil {
		if errors.Is(err, ErrAlgorithmMismatch) {
			return nil, ErrAlgorithmMismatch
		}
		return nil, ErrSignatureInvalid
	}
	if !token.Valid {
		return nil, ErrSignatureInvalid
	}

	now := time.Now()
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		if iat.Time.After(now.Add(vopts.ClockSkew)) {
			return nil, ErrTimestampOutsideSkew
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if now.After(exp.Time) {
			return nil, ErrTokenExpired
		}
	}
	if vopts.ExpectedAudience != "" {
		aud, err := claims.GetAudience()
		if err != nil || len(aud) == 0 || !containsString(aud, vopts.ExpectedAudience) {
			return nil, ErrAudienceMismatch
		}
	}
	return claims, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
