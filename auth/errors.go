package auth

import "errors"

// Error sentinels specific to the DIDWba/Bearer exchange.
var (
	ErrHeaderMalformed           = errors.New("auth: authorization header malformed")
	ErrTimestampOutsideSkew      = errors.New("auth: timestamp outside clock-skew window")
	ErrNonceReplay               = errors.New("auth: nonce already seen within replay window")
	ErrTokenExpired              = errors.New("auth: token expired")
	ErrVerificationMethodMissing = errors.New("auth: verification method not found in DID document")
)
