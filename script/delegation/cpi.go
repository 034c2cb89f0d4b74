// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/outcry/meter"
	setypes "github.com/meterio/outcry/script/types"
)

// Delegate hands authority over account to the delegation program on the base
// domain. It must be invoked by the program currently owning the account.
// The returned snapshot is what the ephemeral domain has to install.
func Delegate(env *setypes.ScriptEnv, account, ownerProgram, authority meter.Address) (*Snapshot, error) {
	if !env.IsBase() {
		return nil, ErrBaseOnly
	}
	state := env.GetState()
	if state.GetOwner(account) != ownerProgram {
		if state.GetOwner(account) == meter.DelegationProgramID {
			return nil, ErrAlreadyDelegated
		}
		return nil, ErrNotOwnedByProgram
	}
	recAddr, bump, err := RecordAddress(account)
	if err != nil {
		return nil, err
	}

	rec := &DelegationRecord{
		Account:      account,
		Authority:    authority,
		OwnerProgram: ownerProgram,
		DelegatedAt:  env.Now(),
		Bump:         bump,
	}
	data, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return nil, err
	}
	if err := env.CreateProgramAccount(meter.DelegationProgramID, recAddr, data); err != nil {
		return nil, ErrAlreadyDelegated
	}
	state.SetOwner(account, meter.DelegationProgramID)

	env.AddEvent(meter.DelegationProgramID, []meter.Bytes32{AccountDelegatedEvent, setypes.AddressTopic(account)}, recAddr.Bytes())
	return &Snapshot{
		Account:      account,
		OwnerProgram: ownerProgram,
		Lamports:     state.GetLamports(account),
		Data:         append([]byte(nil), state.GetData(account)...),
	}, nil
}

// Snapshot captures the live ephemeral copy of account. When undelegate is set
// the copy is removed from the ephemeral domain.
func TakeSnapshot(env *setypes.ScriptEnv, account, ownerProgram meter.Address, undelegate bool) (*Snapshot, error) {
	if env.IsBase() {
		return nil, ErrEphemeralOnly
	}
	state := env.GetState()
	if state.GetOwner(account) != ownerProgram {
		return nil, ErrNotDelegated
	}
	snap := &Snapshot{
		Account:      account,
		OwnerProgram: ownerProgram,
		Lamports:     state.GetLamports(account),
		Data:         append([]byte(nil), state.GetData(account)...),
		Undelegate:   undelegate,
	}
	if undelegate {
		state.Delete(account)
	}
	return snap, nil
}

// IsDelegated reports whether account is currently delegated on the base domain.
func IsDelegated(env *setypes.ScriptEnv, account meter.Address) bool {
	return env.GetState().GetOwner(account) == meter.DelegationProgramID
}
