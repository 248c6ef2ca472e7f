package did

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/multiformats/go-multibase"

	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/crypto/formats"
	"github.com/anp-network/anp-go/crypto/keys"
)

// DecodePublicKey resolves a verification method's encoded key material
// into a verification-only KeyPair, selecting the decoder by the method's
// type. The method lookup itself is PublicKeyFor in document.go; this is
// the decode step that turns the looked-up entry into a usable key.
func DecodePublicKey(vm *VerificationMethod) (sagecrypto.KeyPair, error) {
	switch vm.Type {
	case TypeJsonWebKey2020:
		return decodeJWK(vm)
	case TypeEcdsaSecp256k1VerificationKey:
		return decodeMultibaseSecp256k1(vm)
	case TypeEd25519VerificationKey:
		return decodeMultibaseEd25519(vm)
	default:
		return nil, newError(CodeDidDocumentInvalid, fmt.Sprintf("did: unsupported verification method type %q", vm.Type))
	}
}

func decodeJWK(vm *VerificationMethod) (sagecrypto.KeyPair, error) {
	if vm.PublicKeyJwk == nil {
		return nil, newError(CodeDidDocumentInvalid, "did: JsonWebKey2020 method missing publicKeyJwk")
	}
	raw, err := json.Marshal(vm.PublicKeyJwk)
	if err != nil {
		return nil, newError(CodeDidDocumentInvalid, "did: malformed publicKeyJwk")
	}
	importer := formats.NewJWKImporter()
	pub, err := importer.ImportPublic(raw, sagecrypto.KeyFormatJWK)
	if err != nil {
		return nil, newError(CodeDidDocumentInvalid, fmt.Sprintf("did: invalid publicKeyJwk: %v", err))
	}
	switch p := pub.(type) {
	case ed25519.PublicKey:
		return keys.NewEd25519PublicKey(p, vm.ID), nil
	default:
		return nil, newError(CodeDidDocumentInvalid, fmt.Sprintf("did: unsupported JWK public key type %T", pub))
	}
}

func decodeMultibaseSecp256k1(vm *VerificationMethod) (sagecrypto.KeyPair, error) {
	_, data, err := multibase.Decode(vm.PublicKeyMultibase)
	if err != nil {
		return nil, newError(CodeDidDocumentInvalid, fmt.Sprintf("did: invalid publicKeyMultibase: %v", err))
	}
	pub, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, newError(CodeDidDocumentInvalid, fmt.Sprintf("did: invalid secp256k1 public key: %v", err))
	}
	return keys.NewSecp256k1PublicKey(pub, vm.ID), nil
}

func decodeMultibaseEd25519(vm *VerificationMethod) (sagecrypto.KeyPair, error) {
	_, data, err := multibase.Decode(vm.PublicKeyMultibase)
	if err != nil {
		return nil, newError(CodeDidDocumentInvalid, fmt.Sprintf("did: invalid publicKeyMultibase: %v", err))
	}
	if len(data) != ed25519.PublicKeySize {
		return nil, newError(CodeDidDocumentInvalid, "did: invalid Ed25519 public key length")
	}
	return keys.NewEd25519PublicKey(ed25519.PublicKey(data), vm.ID), nil
}

// multibaseEncoder is implemented by the key pair types that can publish
// themselves as a publicKeyMultibase value (Ed25519, Secp256k1). RSA and
// other JWK-only types are excluded on purpose: they encode via JWK
// instead, in encodeJWK below.
type multibaseEncoder interface {
	Multibase() (string, error)
}

// EncodeVerificationMethod is the inverse of DecodePublicKey: given a
// freshly generated or rotated KeyPair, it builds the VerificationMethod
// fragment a did:wba document would publish for it, selecting the
// encoding (multibase or JWK) by the key's algorithm. DecodePublicKey
// reverses it for Ed25519 and Secp256k1 keys; RSA and X25519 keys are
// published as JsonWebKey2020, and DecodePublicKey's JWK path decodes only
// Ed25519 keys, so it rejects those methods.
func EncodeVerificationMethod(kp sagecrypto.KeyPair, id string, controller AgentDID) (*VerificationMethod, error) {
	switch kp.Type() {
	case sagecrypto.KeyTypeEd25519, sagecrypto.KeyTypeSecp256k1:
		enc, ok := kp.(multibaseEncoder)
		if !ok {
			return nil, fmt.Errorf("did: key pair %T does not support multibase encoding", kp)
		}
		mb, err := enc.Multibase()
		if err != nil {
			return nil, fmt.Errorf("did: encode publicKeyMultibase: %w", err)
		}
		vmType := TypeEd25519VerificationKey
		if kp.Type() == sagecrypto.KeyTypeSecp256k1 {
			vmType = TypeEcdsaSecp256k1VerificationKey
		}
		return &VerificationMethod{
			ID:                 id,
			Type:               vmType,
			Controller:         controller,
			PublicKeyMultibase: mb,
		}, nil
	default:
		return encodeJWK(kp, id, controller)
	}
}

func encodeJWK(kp sagecrypto.KeyPair, id string, controller AgentDID) (*VerificationMethod, error) {
	exporter := formats.NewJWKExporter()
	raw, err := exporter.ExportPublic(kp, sagecrypto.KeyFormatJWK)
	if err != nil {
		return nil, fmt.Errorf("did: export publicKeyJwk: %w", err)
	}
	var jwk map[string]any
	if err := json.Unmarshal(raw, &jwk); err != nil {
		return nil, fmt.Errorf("did: malformed exported publicKeyJwk: %w", err)
	}
	return &VerificationMethod{
		ID:           id,
		Type:         TypeJsonWebKey2020,
		Controller:   controller,
		PublicKeyJwk: jwk,
	}, nil
}
