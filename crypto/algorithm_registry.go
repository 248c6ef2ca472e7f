// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package crypto

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"sync"
)

// AlgorithmInfo binds a KeyType to the proof machinery that can anchor a
// verification method of that type: the golang-jwt "alg" name signing an
// AP2 mandate or bearer token, and the W3C Data-Integrity proof type
// signing a canonicalized document. A key type with neither is
// registered for key agreement only (X25519).
type AlgorithmInfo struct {
	KeyType KeyType

	Name        string
	Description string

	// JWSAlgorithm is the golang-jwt SigningMethod name for this key type,
	// empty if the key type never signs a JWS.
	JWSAlgorithm string

	// DataIntegritySuite is the W3C Data-Integrity proof "type" this key
	// type produces, empty if it never anchors a Data-Integrity proof.
	DataIntegritySuite string

	SupportsKeyGeneration bool
	SupportsSignature     bool
	SupportsEncryption    bool
}

var (
	registry        = make(map[KeyType]*AlgorithmInfo)
	jwsAlgToKeyType = make(map[string]KeyType)
	registryMutex   sync.RWMutex

	ErrAlgorithmNotSupported = errors.New("algorithm not supported")
	ErrAlgorithmExists       = errors.New("algorithm already registered")
)

// RegisterAlgorithm adds a key type's proof-suite bindings to the registry.
// Called from crypto/keys package init so the registry reflects exactly
// the key types this build can generate.
func RegisterAlgorithm(info AlgorithmInfo) error {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if info.KeyType == "" {
		return errors.New("key type cannot be empty")
	}
	if _, exists := registry[info.KeyType]; exists {
		return ErrAlgorithmExists
	}

	registry[info.KeyType] = &info
	if info.JWSAlgorithm != "" {
		jwsAlgToKeyType[info.JWSAlgorithm] = info.KeyType
	}
	return nil
}

// GetAlgorithmInfo returns a copy of the registered info for keyType.
func GetAlgorithmInfo(keyType KeyType) (*AlgorithmInfo, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	info, exists := registry[keyType]
	if !exists {
		return nil, ErrAlgorithmNotSupported
	}
	infoCopy := *info
	return &infoCopy, nil
}

// ListSupportedAlgorithms returns every registered key type's info.
func ListSupportedAlgorithms() []AlgorithmInfo {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	result := make([]AlgorithmInfo, 0, len(registry))
	for _, info := range registry {
		result = append(result, *info)
	}
	return result
}

// ListJWSAlgorithms returns the golang-jwt "alg" names of every signing
// key type registered.
func ListJWSAlgorithms() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	result := make([]string, 0, len(jwsAlgToKeyType))
	for alg := range jwsAlgToKeyType {
		result = append(result, alg)
	}
	return result
}

// GetJWSAlgorithmName returns the JWS "alg" name a verification method of
// keyType signs with.
func GetJWSAlgorithmName(keyType KeyType) (string, error) {
	info, err := GetAlgorithmInfo(keyType)
	if err != nil {
		return "", err
	}
	if info.JWSAlgorithm == "" {
		return "", errors.New("key type does not sign a JWS")
	}
	return info.JWSAlgorithm, nil
}

// GetKeyTypeFromJWSAlgorithm reverses GetJWSAlgorithmName, used when
// verifying a mandate or bearer token whose header names the alg but the
// caller only has a DID-resolved public key to match against.
func GetKeyTypeFromJWSAlgorithm(alg string) (KeyType, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	keyType, exists := jwsAlgToKeyType[alg]
	if !exists {
		return "", ErrAlgorithmNotSupported
	}
	return keyType, nil
}

// SupportsJWS reports whether keyType can sign a JWS.
func SupportsJWS(keyType KeyType) bool {
	info, err := GetAlgorithmInfo(keyType)
	return err == nil && info.JWSAlgorithm != ""
}

// SupportsKeyGeneration reports whether this build can generate keyType.
func SupportsKeyGeneration(keyType KeyType) bool {
	info, err := GetAlgorithmInfo(keyType)
	return err == nil && info.SupportsKeyGeneration
}

// SupportsSignature reports whether keyType signs messages directly
// (crypto.KeyPair.Sign), as opposed to key-agreement-only types.
func SupportsSignature(keyType KeyType) bool {
	info, err := GetAlgorithmInfo(keyType)
	return err == nil && info.SupportsSignature
}

// IsAlgorithmSupported reports whether keyType is registered at all.
func IsAlgorithmSupported(keyType KeyType) bool {
	_, err := GetAlgorithmInfo(keyType)
	return err == nil
}

// GetKeyTypeFromPublicKey maps a stdlib public key value to its KeyType,
// used when a verification method's decoded key needs a registry lookup
// (e.g. to pick the matching Data-Integrity suite).
func GetKeyTypeFromPublicKey(publicKey interface{}) (KeyType, error) {
	switch publicKey.(type) {
	case ed25519.PublicKey:
		return KeyTypeEd25519, nil
	case *ecdsa.PublicKey:
		return KeyTypeSecp256k1, nil
	case *rsa.PublicKey:
		return KeyTypeRSA, nil
	default:
		return "", errors.New("unsupported public key type")
	}
}
