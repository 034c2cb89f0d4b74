// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"errors"

	"github.com/meterio/outcry/meter"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotSigner         = errors.New("debited wallet is not the tx signer")
	ErrOwnerMismatch     = errors.New("account is not owned by the program")
	ErrAccountInUse      = errors.New("account already in use")
)

// ==================== account operation ===========================

// from signer wallet ==> to
func (env *ScriptEnv) TransferFromSigner(from, to meter.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if from != env.GetOrigin() {
		return ErrNotSigner
	}
	state := env.GetState()
	if !state.GetOwner(from).IsZero() {
		return ErrOwnerMismatch
	}
	return env.move(from, to, amount)
}

// from program owned account ==> to
func (env *ScriptEnv) TransferFromProgramAccount(program, from, to meter.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if env.GetState().GetOwner(from) != program {
		return ErrOwnerMismatch
	}
	return env.move(from, to, amount)
}

func (env *ScriptEnv) move(from, to meter.Address, amount uint64) error {
	state := env.GetState()
	if !state.SubLamports(from, amount) {
		return ErrInsufficientFunds
	}
	if err := state.AddLamports(to, amount); err != nil {
		return err
	}
	env.AddTransfer(from, to, amount)
	return nil
}

// CreateProgramAccount initialises a program owned account.
// It fails if the account already carries data or another owner.
func (env *ScriptEnv) CreateProgramAccount(program, addr meter.Address, data []byte) error {
	state := env.GetState()
	if len(state.GetData(addr)) > 0 || !state.GetOwner(addr).IsZero() {
		return ErrAccountInUse
	}
	state.SetOwner(addr, program)
	state.SetData(addr, data)
	return nil
}

// CloseProgramAccount moves remaining lamports to recipient and deletes the account.
func (env *ScriptEnv) CloseProgramAccount(program, addr, recipient meter.Address) error {
	state := env.GetState()
	if state.GetOwner(addr) != program {
		return ErrOwnerMismatch
	}
	if err := env.TransferFromProgramAccount(program, addr, recipient, state.GetLamports(addr)); err != nil {
		return err
	}
	state.Delete(addr)
	return nil
}
