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

// This file stays minimal to avoid a circular dependency: the types and
// interfaces declared in types.go are consumed by the subpackages below,
// so none of their concrete code can live here.
// - crypto/keys: verification-method key pair generation and operations
// - crypto/storage: key storage implementations backing rotation
// - crypto/formats: JWK/PEM import and export
// - crypto/rotation: verification-method key rotation