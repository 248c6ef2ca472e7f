// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Sealed is the output of AEADSeal: ciphertext, the random IV used, and the
// authentication tag kept separate for callers that transmit them as
// distinct fields (as the E2EE wire framing does).
type Sealed struct {
	Ciphertext []byte
	IV         [12]byte
	Tag        [16]byte
}

// AEADSeal encrypts plaintext under key (32 bytes, AES-256-GCM) with a fresh
// random 12-byte IV, authenticating aad alongside the ciphertext.
func AEADSeal(key, plaintext, aad []byte) (*Sealed, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	var iv [12]byte
	if _, err := io.ReadFull(rand.Reader, iv[:]); err != nil {
		return nil, fmt.Errorf("crypto: generate iv: %w", err)
	}

	sealed := aead.Seal(nil, iv[:], plaintext, aad)
	ctLen := len(sealed) - aead.Overhead()

	out := &Sealed{Ciphertext: append([]byte(nil), sealed[:ctLen]...), IV: iv}
	copy(out.Tag[:], sealed[ctLen:])
	return out, nil
}

// AEADOpen decrypts a Sealed value. A failure always returns
// ErrAuthenticationFailed, regardless of whether the tag, ciphertext, or
// aad was the part that didn't match — this lets callers distinguish
// "decryption failed" from programmer errors (bad key length, etc).
func AEADOpen(key []byte, sealed *Sealed, aad []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	combined := make([]byte, 0, len(sealed.Ciphertext)+len(sealed.Tag))
	combined = append(combined, sealed.Ciphertext...)
	combined = append(combined, sealed.Tag[:]...)

	plaintext, err := aead.Open(nil, sealed.IV[:], combined, aad)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("crypto: aead key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: new aes cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// HKDF derives length bytes from secret using HKDF-SHA256 with the given
// salt and info. salt must be non-empty.
func HKDF(secret, salt, info []byte, length int) ([]byte, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("crypto: hkdf salt must be non-empty")
	}
	r := hkdf.New(sha256.New, secret, salt, info)
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("crypto: hkdf expand: %w", err)
	}
	return out, nil
}

// Base64URLEncode encodes data as unpadded base64url.
func Base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// Base64URLDecode decodes base64url input, accepting both padded and
// unpadded forms.
func Base64URLDecode(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}
