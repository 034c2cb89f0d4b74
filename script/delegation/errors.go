// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import "errors"

var (
	ErrBaseOnly          = errors.New("instruction only runs on the base domain")
	ErrEphemeralOnly     = errors.New("instruction only runs on the ephemeral domain")
	ErrUnauthorized      = errors.New("signer is not the delegation validator")
	ErrNotOwnedByProgram = errors.New("account is not owned by the delegating program")
	ErrAlreadyDelegated  = errors.New("account is already delegated")
	ErrNotDelegated      = errors.New("account is not delegated")
	ErrUnknownOpcode     = errors.New("unknown delegation opcode")
)
