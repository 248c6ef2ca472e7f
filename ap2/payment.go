package ap2

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/internal/metrics"
	"github.com/anp-network/anp-go/proof"
)

// DefaultPaymentMandateTTL is the default PaymentMandate lifetime.
const DefaultPaymentMandateTTL = 180 * 24 * time.Hour

// BuildPaymentMandateOptions carries the optional envelope extensions a
// PaymentMandate may include.
type BuildPaymentMandateOptions struct {
	Cnf    map[string]any
	SDHash string
	TTL    time.Duration
}

// BuildPaymentMandate stamps the chaining marker, hashes the payment
// contents, constructs the JWS payload with
// transaction_data = [cart_hash, pmt_hash], and signs with the user's
// key.
func BuildPaymentMandate(user sagecrypto.KeyPair, userKid, userDID, merchantDID string, contents PaymentMandateContents, cartHash string, opts BuildPaymentMandateOptions) (*PaymentMandate, error) {
	contents.PrevHash = cartHash

	pmtHash, err := hashContents(contents)
	if err != nil {
		return nil, err
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultPaymentMandateTTL
	}
	now := time.Now()

	claims := jwt.MapClaims{
		"iss":             userDID,
		"sub":             userDID,
		"aud":             merchantDID,
		"iat":             jwt.NewNumericDate(now),
		"exp":             jwt.NewNumericDate(now.Add(ttl)),
		"jti":             uuid.NewString(),
		"transaction_data": []string{cartHash, pmtHash},
	}
	if opts.Cnf != nil {
		claims["cnf"] = opts.Cnf
	}
	if opts.SDHash != "" {
		claims["sd_hash"] = opts.SDHash
	}

	jws, err := proof.SignJWS(claims, user, userKid)
	if err != nil {
		return nil, err
	}
	metrics.MandatesBuilt.WithLabelValues("payment").Inc()

	return &PaymentMandate{
		PaymentMandateContents: contents,
		UserAuthorization:      jws,
	}, nil
}

// VerifyPaymentMandateOptions constrains VerifyPaymentMandate beyond
// signature validity.
type VerifyPaymentMandateOptions struct {
	ExpectedAudience string
	ExpectedCartHash string
}

// VerifyPaymentMandate verifies the JWS envelope, recomputes pmt_hash,
// and requires transaction_data to be a two-string array
// [cart_hash, pmt_hash] whose pmt_hash equals the recomputed one. The
// cart_hash element is compared against vopts.ExpectedCartHash only when
// that option is non-empty.
func VerifyPaymentMandate(mandate *PaymentMandate, user sagecrypto.KeyPair, vopts VerifyPaymentMandateOptions) (jwt.MapClaims, error) {
	claims, err := proof.VerifyJWS(mandate.UserAuthorization, user, proof.VerifyJWSOptions{ExpectedAudience: vopts.ExpectedAudience})
	if err != nil {
		metrics.MandatesVerified.WithLabelValues("payment", "failure").Inc()
		return nil, err
	}

	recomputed, err := hashContents(mandate.PaymentMandateContents)
	if err != nil {
		metrics.MandatesVerified.WithLabelValues("payment", "failure").Inc()
		return nil, err
	}

	txData, ok := claims["transaction_data"].([]any)
	if !ok || len(txData) != 2 {
		metrics.MandatesVerified.WithLabelValues("payment", "failure").Inc()
		return nil, ErrTransactionDataMalformed
	}
	claimedCartHash, ok1 := txData[0].(string)
	claimedPmtHash, ok2 := txData[1].(string)
	if !ok1 || !ok2 {
		metrics.MandatesVerified.WithLabelValues("payment", "failure").Inc()
		return nil, ErrTransactionDataMalformed
	}

	if claimedPmtHash != recomputed {
		metrics.MandatesVerified.WithLabelValues("payment", "failure").Inc()
		return nil, ErrPmtHashMismatch
	}
	if vopts.ExpectedCartHash != "" && claimedCartHash != vopts.ExpectedCartHash {
		metrics.MandatesVerified.WithLabelValues("payment", "failure").Inc()
		return nil, ErrCartHashMismatch
	}
	metrics.MandatesVerified.WithLabelValues("payment", "success").Inc()
	return claims, nil
}
