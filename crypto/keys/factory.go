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

package keys

import (
	sagecrypto "github.com/anp-network/anp-go/crypto"
)

// GenerateKeyPair dispatches to the concrete generator for keyType. It is
// the canonical entry point for KeyManager implementations and for callers
// that only know the desired algorithm at runtime.
func GenerateKeyPair(keyType sagecrypto.KeyType) (sagecrypto.KeyPair, error) {
	switch keyType {
	case sagecrypto.KeyTypeEd25519:
		return GenerateEd25519KeyPair()
	case sagecrypto.KeyTypeSecp256k1:
		return GenerateSecp256k1KeyPair()
	case sagecrypto.KeyTypeX25519:
		return GenerateX25519KeyPair()
	case sagecrypto.KeyTypeRSA:
		return GenerateRSAKeyPair()
	default:
		return nil, sagecrypto.ErrInvalidKeyType
	}
}
