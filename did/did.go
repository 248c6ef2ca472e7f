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


// Package did implements the did:wba identity method: identifier
// parse/build, .well-known document resolution with a positive/negative
// TTL cache, and verification-method lookup.
package did

// Version of the did package.
const Version = "0.1.0"

// ValidateDID checks that did is a syntactically well-formed did:wba
// identifier.
func ValidateDID(did string) error {
	_, _, _, err := Parse(AgentDID(did))
	return err
}