package proof

import "errors"

// Error sentinels covering signature verification and JWS envelope
// checks.
var (
	ErrAlgorithmUnsupported = errors.New("proof: algorithm unsupported")
	ErrAlgorithmMismatch    = errors.New("proof: resolved key algorithm does not match header alg")
	ErrSignatureMalformed   = errors.New("proof: signature malformed")
	ErrSignatureInvalid     = errors.New("proof: signature invalid")
	ErrKeyEncodingInvalid   = errors.New("proof: key encoding invalid")

	ErrAudienceMismatch     = errors.New("proof: audience mismatch")
	ErrIssuerMismatch       = errors.New("proof: issuer mismatch")
	ErrPayloadSchemaInvalid = errors.New("proof: payload schema invalid")

	ErrTimestampOutsideSkew = errors.New("proof: timestamp outside clock-skew window")
	ErrTokenExpired         = errors.New("proof: token expired")
)
