package proof

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/golang-jwt/jwt/v5"
)

// signingMethodES256K implements golang-jwt's SigningMethod for ES256K
// (ECDSA over secp256k1, SHA-256), the algorithm secp256k1 verification
// methods sign AP2 mandates and bearer tokens with. golang-jwt ships
// ES256/384/512 (NIST curves) but not secp256k1, so this registers the
// missing member of that family.
type signingMethodES256K struct{}

// SigningMethodES256K is registered with golang-jwt under the "ES256K" alg
// name during package init.
var SigningMethodES256K = &signingMethodES256K{}

func init() {
	jwt.RegisterSigningMethod("ES256K", func() jwt.SigningMethod {
		return SigningMethodES256K
	})
}

func (m *signingMethodES256K) Alg() string { return "ES256K" }

func (m *signingMethodES256K) Verify(signingString string, sig []byte, key any) error {
	pub, ok := key.(*ecdsa.PublicKey)
	if !ok {
		if skPub, skOk := key.(*secp256k1.PublicKey); skOk {
			pub = skPub.ToECDSA()
		} else {
			return jwt.ErrInvalidKeyType
		}
	}
	if len(sig) != 64 {
		return ErrSignatureMalformed
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])

	hasher := crypto.SHA256.New()
	hasher.Write([]byte(signingString))

	if !ecdsa.Verify(pub, hasher.Sum(nil), r, s) {
		return ErrSignatureInvalid
	}
	return nil
}

func (m *signingMethodES256K) Sign(signingString string, key any) ([]byte, error) {
	priv, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		if skPriv, skOk := key.(*secp256k1.PrivateKey); skOk {
			priv = skPriv.ToECDSA()
		} else {
			return nil, jwt.ErrInvalidKeyType
		}
	}

	hasher := crypto.SHA256.New()
	hasher.Write([]byte(signingString))

	r, s, err := ecdsa.Sign(rand.Reader, priv, hasher.Sum(nil))
	if err != nil {
		return nil, err
	}
	curveBytes := 32
	out := make([]byte, curveBytes*2)
	rb := r.Bytes()
	sb := s.Bytes()
	if len(rb) > curveBytes || len(sb) > curveBytes {
		return nil, errors.New("proof: ES256K signature component overflow")
	}
	copy(out[curveBytes-len(rb):curveBytes], rb)
	copy(out[2*curveBytes-len(sb):], sb)
	return out, nil
}
